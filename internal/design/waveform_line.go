package design

import "math"

// WaveformParams tune the waveform-line design.
type WaveformParams struct {
	// LineWidth is the line thickness in pixels.
	LineWidth float64
	// Smoothing applies a moving average, 0 disables it.
	Smoothing float64
	// Mirror oscillates the line around the vertical centre.
	Mirror bool
}

// DefaultWaveformParams returns a mirrored 4px line.
func DefaultWaveformParams() WaveformParams {
	return WaveformParams{LineWidth: 4, Smoothing: 0.3, Mirror: true}
}

type waveformDesign struct {
	params WaveformParams
}

func (d *waveformDesign) Type() Type     { return WaveformLine }
func (d *waveformDesign) Stateful() bool { return false }

func (d *waveformDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	pointCount := effectiveBars(spectrum, scene)
	if pointCount < 2 {
		return nil
	}

	g := newGeom(scene)
	p := d.params

	halfWidth := float32(p.LineWidth) * 0.5 * g.localExpand
	centerY := g.h * 0.5
	amplitude := g.h * 0.4 * g.beatScale

	points := spectrum[:pointCount]
	if p.Smoothing > 0 {
		points = smoothSpectrum(spectrum, pointCount, p.Smoothing)
	}

	vertices := make([]Vertex, 0, (pointCount-1)*6)

	for i := 0; i < pointCount-1; i++ {
		t1 := float32(i) / float32(pointCount-1)
		t2 := float32(i+1) / float32(pointCount-1)
		x1, x2 := t1*g.w, t2*g.w

		v1 := clamp01(points[i])
		v2 := clamp01(points[i+1])

		var y1, y2 float32
		if p.Mirror {
			y1 = centerY + (v1-0.5)*amplitude*2
			y2 = centerY + (v2-0.5)*amplitude*2
		} else {
			y1 = g.h - v1*amplitude - g.h*0.1
			y2 = g.h - v2*amplitude - g.h*0.1
		}

		vertices = g.pushSegment(vertices, x1, y1, x2, y2, halfWidth, (v1+v2)*0.5, float32(i))
	}

	return vertices
}

// pushSegment appends a thick line segment as a quad built from the
// segment's perpendicular.
func (g geom) pushSegment(dst []Vertex, x1, y1, x2, y2, halfWidth, value, index float32) []Vertex {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.001 {
		length = 0.001
	}
	nx := float32(-dy/length) * halfWidth
	ny := float32(dx/length) * halfWidth

	e := g.localExpand
	v0 := Vertex{Position: [2]float32{g.ndcX(x1 + nx), g.ndcY(y1 + ny)}, Local: [2]float32{-e, -e}, Value: value, Index: index}
	v1 := Vertex{Position: [2]float32{g.ndcX(x1 - nx), g.ndcY(y1 - ny)}, Local: [2]float32{-e, e}, Value: value, Index: index}
	v2 := Vertex{Position: [2]float32{g.ndcX(x2 + nx), g.ndcY(y2 + ny)}, Local: [2]float32{e, -e}, Value: value, Index: index}
	v3 := Vertex{Position: [2]float32{g.ndcX(x2 - nx), g.ndcY(y2 - ny)}, Local: [2]float32{e, e}, Value: value, Index: index}
	return append(dst, v0, v1, v2, v2, v1, v3)
}
