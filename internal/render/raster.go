package render

import (
	"image"
	"math"

	"github.com/phobz/visualizer-go/internal/design"
)

// Glow skirt geometry matching the vertex expansion in internal/design:
// local coords inside the core quad have magnitude <= 1, the skirt extends
// to 1 + glowExpand.
const glowExtent = 1.3

// falloffSteps quantizes the skirt distance for the lookup table.
const falloffSteps = 256

var falloffTable = buildFalloffTable()

// buildFalloffTable precomputes the glow intensity over the skirt, from 1
// at the core edge down to 0 at the outer rim, with a quadratic rolloff.
func buildFalloffTable() [falloffSteps]float32 {
	var table [falloffSteps]float32
	for i := range table {
		t := float64(i) / float64(falloffSteps-1)
		f := 1 - t
		table[i] = float32(f * f)
	}
	return table
}

// coverage returns pixel intensity for a point in quad-local coordinates.
// The core renders at full strength, the skirt fades out as glow.
func coverage(lx, ly float32) float32 {
	ax := lx
	if ax < 0 {
		ax = -ax
	}
	ay := ly
	if ay < 0 {
		ay = -ay
	}
	m := ax
	if ay > m {
		m = ay
	}
	if m <= 1 {
		return 1
	}
	if m >= glowExtent {
		return 0
	}
	idx := int((m - 1) / (glowExtent - 1) * float32(falloffSteps-1))
	return falloffTable[idx] * 0.6
}

type screenVertex struct {
	x, y   float32
	lx, ly float32
	value  float32
}

// toScreen converts a design vertex from NDC to pixel coordinates.
func (r *Renderer) toScreen(v *design.Vertex) screenVertex {
	return screenVertex{
		x:     (v.Position[0] + 1) * 0.5 * float32(r.width),
		y:     (1 - v.Position[1]) * 0.5 * float32(r.height),
		lx:    v.Local[0],
		ly:    v.Local[1],
		value: v.Value,
	}
}

// fillTriangle rasterizes one triangle with barycentric interpolation of
// the local coordinates and bar value.
func (r *Renderer) fillTriangle(img *image.RGBA, a, b, c *design.Vertex) {
	v0 := r.toScreen(a)
	v1 := r.toScreen(b)
	v2 := r.toScreen(c)

	minX := int(math.Floor(float64(min3(v0.x, v1.x, v2.x))))
	maxX := int(math.Ceil(float64(max3(v0.x, v1.x, v2.x))))
	minY := int(math.Floor(float64(min3(v0.y, v1.y, v2.y))))
	maxY := int(math.Ceil(float64(max3(v0.y, v1.y, v2.y))))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > r.width-1 {
		maxX = r.width - 1
	}
	if maxY > r.height-1 {
		maxY = r.height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return
	}
	invArea := 1 / area

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		rowOffset := y * img.Stride
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5

			w0 := edge(v1, v2, px, py) * invArea
			w1 := edge(v2, v0, px, py) * invArea
			w2 := edge(v0, v1, px, py) * invArea
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			lx := w0*v0.lx + w1*v1.lx + w2*v2.lx
			ly := w0*v0.ly + w1*v1.ly + w2*v2.ly

			cov := coverage(lx, ly)
			if cov <= 0 {
				continue
			}

			value := w0*v0.value + w1*v1.value + w2*v2.value
			// Quiet bars stay visible, loud bars reach full brightness.
			brightness := 0.35 + 0.65*value
			if brightness > 1 {
				brightness = 1
			}

			alpha := cov * brightness * float32(r.color[3]) / 255
			r.blendPixel(img.Pix[rowOffset+x*4:rowOffset+x*4+4], alpha)
		}
	}
}

// blendPixel composites the bar color over the destination pixel with the
// given opacity. In transparent mode the alpha channel accumulates so
// uncovered pixels stay clear.
func (r *Renderer) blendPixel(dst []byte, alpha float32) {
	if alpha <= 0 {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	inv := 1 - alpha

	dst[0] = uint8(float32(r.color[0])*alpha + float32(dst[0])*inv)
	dst[1] = uint8(float32(r.color[1])*alpha + float32(dst[1])*inv)
	dst[2] = uint8(float32(r.color[2])*alpha + float32(dst[2])*inv)
	if r.transparent {
		a := alpha*255 + float32(dst[3])*inv
		if a > 255 {
			a = 255
		}
		dst[3] = uint8(a)
	} else {
		dst[3] = 255
	}
}

// edge is the signed area of the triangle (a, b, p) times two.
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
