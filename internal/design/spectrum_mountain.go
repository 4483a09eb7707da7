package design

// MountainParams tune the spectrum-mountain design.
type MountainParams struct {
	// Baseline is the resting line position, 0 at the top of the frame
	// and 1 at the bottom.
	Baseline float64
	// Smoothing applies a moving average, 0 disables it.
	Smoothing float64
	// Mirror reflects the mountain below the baseline.
	Mirror bool
}

// DefaultMountainParams returns a mountain rising from the lower fifth.
func DefaultMountainParams() MountainParams {
	return MountainParams{Baseline: 0.8, Smoothing: 0.2}
}

type mountainDesign struct {
	params MountainParams
}

func (d *mountainDesign) Type() Type     { return SpectrumMountain }
func (d *mountainDesign) Stateful() bool { return false }

func (d *mountainDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	pointCount := effectiveBars(spectrum, scene)
	if pointCount < 2 {
		return nil
	}

	g := newGeom(scene)
	p := d.params

	baseline := g.h * float32(p.Baseline)
	maxHeight := g.h * float32(1-p.Baseline) * 0.9

	points := spectrum[:pointCount]
	if p.Smoothing > 0 {
		points = smoothSpectrum(spectrum, pointCount, p.Smoothing)
	}

	capacity := (pointCount - 1) * 6
	if p.Mirror {
		capacity *= 2
	}
	vertices := make([]Vertex, 0, capacity)

	for i := 0; i < pointCount-1; i++ {
		t1 := float32(i) / float32(pointCount-1)
		t2 := float32(i+1) / float32(pointCount-1)
		x1, x2 := t1*g.w, t2*g.w

		v1 := clamp01(points[i])
		v2 := clamp01(points[i+1])
		avg := (v1 + v2) * 0.5

		yTop1 := baseline - v1*maxHeight*g.beatScale
		yTop2 := baseline - v2*maxHeight*g.beatScale

		if p.Mirror {
			vertices = g.pushSlice(vertices, x1, x2, yTop1, yTop2, baseline, avg, float32(i))
			yBottom1 := baseline + v1*maxHeight*g.beatScale
			yBottom2 := baseline + v2*maxHeight*g.beatScale
			vertices = g.pushSlice(vertices, x1, x2, baseline, baseline, max32(yBottom1, yBottom2), avg, float32(i))
		} else {
			vertices = g.pushSlice(vertices, x1, x2, yTop1, yTop2, baseline, avg, float32(i))
		}
	}

	return vertices
}

// pushSlice appends a vertical slice from the baseline up to the spectrum
// surface, with an independently sloped top edge.
func (g geom) pushSlice(dst []Vertex, x1, x2, yTop1, yTop2, yBottom, value, index float32) []Vertex {
	e := g.localExpand
	tl := Vertex{Position: [2]float32{g.ndcX(x1), g.ndcY(yTop1)}, Local: [2]float32{-e, -e}, Value: value, Index: index}
	tr := Vertex{Position: [2]float32{g.ndcX(x2), g.ndcY(yTop2)}, Local: [2]float32{e, -e}, Value: value, Index: index}
	bl := Vertex{Position: [2]float32{g.ndcX(x1), g.ndcY(yBottom)}, Local: [2]float32{-e, e}, Value: value, Index: index}
	br := Vertex{Position: [2]float32{g.ndcX(x2), g.ndcY(yBottom)}, Local: [2]float32{e, e}, Value: value, Index: index}
	return append(dst, tl, bl, tr, tr, bl, br)
}
