package render

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// LoadBackgroundImage loads an image file and scales it to the frame size
// with bilinear filtering.
func LoadBackgroundImage(filename string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	bounds := src.Bounds()

	if bounds.Dx() == width && bounds.Dy() == height {
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), src, bounds, draw.Src, nil)
	}
	return rgba, nil
}

// LoadFont loads a TrueType font at the given point size.
func LoadFont(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, err
	}

	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, err
	}

	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// drawTitle draws the title centered horizontally near the bottom edge.
func drawTitle(img *image.RGBA, face font.Face, title string, width, height int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
	}

	bounds, _ := d.BoundString(title)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()

	x := (width - textWidth) / 2
	y := height - height/12

	d.Dot = freetype.Pt(x, y)
	d.DrawString(title)
}
