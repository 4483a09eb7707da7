// Package render rasterizes design vertex lists into RGBA frames.
package render

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"

	"github.com/phobz/visualizer-go/internal/config"
	"github.com/phobz/visualizer-go/internal/design"
)

// ErrRenderFailed indicates the renderer could not be constructed or a
// frame could not be produced. Render sessions abort on it.
var ErrRenderFailed = errors.New("render failed")

// Renderer draws vertex lists onto reusable RGBA frames. One renderer
// serves one render session; frames come from an internal pool.
type Renderer struct {
	width  int
	height int

	color       [4]uint8
	background  [4]uint8
	transparent bool

	bgImage  *image.RGBA
	fontFace font.Face
	title    string

	// Background bytes repeated for fast row fills.
	clearRow []byte

	pool sync.Pool
}

// New builds a renderer for the configured frame geometry, loading the
// background image and title font when set.
func New(cfg *config.Config) (*Renderer, error) {
	r := &Renderer{
		width:       cfg.Width,
		height:      cfg.Height,
		transparent: cfg.Transparent,
		title:       cfg.Title,
	}

	cr, cg, cb, ca := cfg.Color.RGBA8()
	r.color = [4]uint8{cr, cg, cb, ca}

	br, bg, bb, ba := cfg.Background.RGBA8()
	if cfg.Transparent {
		ba = 0
	}
	r.background = [4]uint8{br, bg, bb, ba}

	r.clearRow = make([]byte, cfg.Width*4)
	for x := 0; x < cfg.Width; x++ {
		copy(r.clearRow[x*4:], r.background[:])
	}

	if cfg.BackgroundImage != "" {
		img, err := LoadBackgroundImage(cfg.BackgroundImage, cfg.Width, cfg.Height)
		if err != nil {
			return nil, fmt.Errorf("%w: background image: %v", ErrRenderFailed, err)
		}
		r.bgImage = img
	}

	if cfg.Title != "" && cfg.FontPath != "" {
		face, err := LoadFont(cfg.FontPath, titleSize(cfg.Height))
		if err != nil {
			return nil, fmt.Errorf("%w: font: %v", ErrRenderFailed, err)
		}
		r.fontFace = face
	}

	w, h := cfg.Width, cfg.Height
	r.pool.New = func() interface{} {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	return r, nil
}

// titleSize scales the overlay font with the frame height.
func titleSize(height int) float64 {
	return float64(height) * 0.04
}

// RenderFrame rasterizes one vertex list into a pooled frame. The caller
// returns the frame with ReleaseFrame once encoded.
func (r *Renderer) RenderFrame(vertices []design.Vertex) *image.RGBA {
	img := r.pool.Get().(*image.RGBA)

	if r.bgImage != nil {
		copy(img.Pix, r.bgImage.Pix)
	} else {
		for y := 0; y < r.height; y++ {
			copy(img.Pix[y*img.Stride:], r.clearRow)
		}
	}

	for i := 0; i+2 < len(vertices); i += 3 {
		r.fillTriangle(img, &vertices[i], &vertices[i+1], &vertices[i+2])
	}

	if r.fontFace != nil && r.title != "" {
		drawTitle(img, r.fontFace, r.title, r.width, r.height)
	}

	return img
}

// ReleaseFrame returns a frame to the pool.
func (r *Renderer) ReleaseFrame(img *image.RGBA) {
	r.pool.Put(img)
}
