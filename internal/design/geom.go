package design

// geom precomputes the per-frame values every design needs: pixel to NDC
// conversion, the beat pulse scale and the glow expansion factors.
type geom struct {
	w, h        float32
	beatScale   float32
	glowExpand  float32
	localExpand float32
}

func newGeom(s Scene) geom {
	var glow float32
	if s.Glow {
		glow = 0.3
	}
	return geom{
		w:           float32(s.Width),
		h:           float32(s.Height),
		beatScale:   1 + float32(s.BeatIntensity)*0.15,
		glowExpand:  glow,
		localExpand: 1 + glow,
	}
}

func (g geom) ndcX(x float32) float32 { return x/g.w*2 - 1 }
func (g geom) ndcY(y float32) float32 { return 1 - y/g.h*2 }

// pushRect appends an axis-aligned quad as two triangles. Coordinates are
// pixels with y down.
func (g geom) pushRect(dst []Vertex, left, top, right, bottom, value, index float32) []Vertex {
	e := g.localExpand
	tl := Vertex{Position: [2]float32{g.ndcX(left), g.ndcY(top)}, Local: [2]float32{-e, -e}, Value: value, Index: index}
	tr := Vertex{Position: [2]float32{g.ndcX(right), g.ndcY(top)}, Local: [2]float32{e, -e}, Value: value, Index: index}
	bl := Vertex{Position: [2]float32{g.ndcX(left), g.ndcY(bottom)}, Local: [2]float32{-e, e}, Value: value, Index: index}
	br := Vertex{Position: [2]float32{g.ndcX(right), g.ndcY(bottom)}, Local: [2]float32{e, e}, Value: value, Index: index}
	return append(dst, tl, bl, tr, tr, bl, br)
}

// pushArcQuad appends the four-corner quad used by the circular designs.
// The corners are given in pixel space as inner/outer left/right.
func (g geom) pushArcQuad(dst []Vertex, il, ir, ol, or [2]float32, value, index float32) []Vertex {
	e := g.localExpand
	vIL := Vertex{Position: [2]float32{g.ndcX(il[0]), g.ndcY(il[1])}, Local: [2]float32{-e, -e}, Value: value, Index: index}
	vIR := Vertex{Position: [2]float32{g.ndcX(ir[0]), g.ndcY(ir[1])}, Local: [2]float32{e, -e}, Value: value, Index: index}
	vOL := Vertex{Position: [2]float32{g.ndcX(ol[0]), g.ndcY(ol[1])}, Local: [2]float32{-e, e}, Value: value, Index: index}
	vOR := Vertex{Position: [2]float32{g.ndcX(or[0]), g.ndcY(or[1])}, Local: [2]float32{e, e}, Value: value, Index: index}
	return append(dst, vIL, vOL, vIR, vIR, vOL, vOR)
}

func clamp01(v float64) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return float32(v)
}

// effectiveBars caps the rendered bar count at both the scene's bar count
// and the available spectrum bins.
func effectiveBars(spectrum []float64, s Scene) int {
	n := len(spectrum)
	if s.BarCount < n {
		n = s.BarCount
	}
	if n < 0 {
		n = 0
	}
	return n
}

// smoothSpectrum applies a moving average over the first count values.
func smoothSpectrum(spectrum []float64, count int, smoothing float64) []float64 {
	window := int(smoothing * 5)
	if window < 1 {
		window = 1
	}
	if window > count/2 {
		window = count / 2
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		if i >= len(spectrum) {
			out[i] = 0
			continue
		}
		start := i - window
		if start < 0 {
			start = 0
		}
		end := i + window + 1
		if end > len(spectrum) {
			end = len(spectrum)
		}
		var sum float64
		for _, v := range spectrum[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
