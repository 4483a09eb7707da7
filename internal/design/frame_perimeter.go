package design

// EdgeDistribution selects which frame edges carry bars.
type EdgeDistribution int

const (
	// EdgesAll spreads bars around the whole perimeter.
	EdgesAll EdgeDistribution = iota
	// EdgesTopBottom splits bars between the top and bottom edges.
	EdgesTopBottom
	// EdgesLeftRight splits bars between the left and right edges.
	EdgesLeftRight
	// EdgesTopOnly places all bars along the top edge.
	EdgesTopOnly
	// EdgesBottomOnly places all bars along the bottom edge.
	EdgesBottomOnly
)

// PerimeterParams tune the frame-perimeter design.
type PerimeterParams struct {
	// Inset is the distance from the screen edge in pixels.
	Inset float64
	// Inward grows bars toward the screen centre.
	Inward       bool
	Distribution EdgeDistribution
}

// DefaultPerimeterParams returns inward bars on every edge.
func DefaultPerimeterParams() PerimeterParams {
	return PerimeterParams{Inset: 20, Inward: true}
}

type perimeterDesign struct {
	params PerimeterParams
}

type edge int

const (
	edgeTop edge = iota
	edgeRight
	edgeBottom
	edgeLeft
)

func (d *perimeterDesign) Type() Type     { return FramePerimeter }
func (d *perimeterDesign) Stateful() bool { return false }

func (d *perimeterDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)

	// Every bar gets the same slot length along the perimeter so widths
	// stay uniform across edges.
	perimeter := 2 * (g.w + g.h)
	barSlot := perimeter / float32(barCount)
	const gapRatio = 0.15
	barWidth := barSlot * (1 - gapRatio)

	maxLength := min32(g.w, g.h) * 0.2
	if maxLength < 50 {
		maxLength = 50
	}

	vertices := make([]Vertex, 0, barCount*6)

	switch d.params.Distribution {
	case EdgesAll:
		spacing := perimeter / float32(barCount)
		for i := 0; i < barCount; i++ {
			value := clamp01(spectrum[i])
			barLength := maxLength * value * g.beatScale
			pos := (float32(i) + 0.5) * spacing
			e, edgePos := perimeterToEdge(pos, g.w, g.h)
			vertices = d.pushBar(vertices, g, e, edgePos, barWidth, barLength, value, float32(i))
		}
	case EdgesTopBottom:
		half := barCount / 2
		vertices = d.edgeBars(vertices, g, spectrum, 0, half, edgeTop, g.w, barWidth, maxLength)
		vertices = d.edgeBars(vertices, g, spectrum, half, barCount-half, edgeBottom, g.w, barWidth, maxLength)
	case EdgesLeftRight:
		half := barCount / 2
		vertices = d.edgeBars(vertices, g, spectrum, 0, half, edgeLeft, g.h, barWidth, maxLength)
		vertices = d.edgeBars(vertices, g, spectrum, half, barCount-half, edgeRight, g.h, barWidth, maxLength)
	case EdgesTopOnly:
		vertices = d.edgeBars(vertices, g, spectrum, 0, barCount, edgeTop, g.w, barWidth, maxLength)
	case EdgesBottomOnly:
		vertices = d.edgeBars(vertices, g, spectrum, 0, barCount, edgeBottom, g.w, barWidth, maxLength)
	}

	return vertices
}

// perimeterToEdge converts a position along the perimeter into an edge and
// a position on that edge. The walk runs clockwise from the top-left
// corner; bottom and left run reversed so indices flow continuously.
func perimeterToEdge(pos, w, h float32) (edge, float32) {
	switch {
	case pos < w:
		return edgeTop, pos
	case pos < w+h:
		return edgeRight, pos - w
	case pos < 2*w+h:
		return edgeBottom, w - (pos - w - h)
	default:
		return edgeLeft, h - (pos - 2*w - h)
	}
}

func (d *perimeterDesign) edgeBars(dst []Vertex, g geom, spectrum []float64, start, count int, e edge, edgeLength, barWidth, maxLength float32) []Vertex {
	if count <= 0 {
		return dst
	}
	spacing := edgeLength / float32(count)
	for i := 0; i < count; i++ {
		idx := start + i
		if idx >= len(spectrum) {
			break
		}
		value := clamp01(spectrum[idx])
		barLength := maxLength * value * g.beatScale
		edgePos := (float32(i) + 0.5) * spacing
		dst = d.pushBar(dst, g, e, edgePos, barWidth, barLength, value, float32(idx))
	}
	return dst
}

func (d *perimeterDesign) pushBar(dst []Vertex, g geom, e edge, edgePos, barWidth, barLength, value, index float32) []Vertex {
	expandedWidth := barWidth * g.localExpand
	expandedLength := barLength * g.localExpand
	halfWidth := expandedWidth / 2
	inset := float32(d.params.Inset)

	var x1, y1, x2, y2 float32
	switch e {
	case edgeTop:
		cx := clamp32(edgePos, halfWidth, g.w-halfWidth)
		baseY := inset
		endY := max32(0, baseY-expandedLength)
		if d.params.Inward {
			endY = baseY + expandedLength
		}
		x1, y1 = cx-halfWidth, min32(baseY, endY)
		x2, y2 = cx+halfWidth, max32(baseY, endY)
	case edgeBottom:
		cx := clamp32(edgePos, halfWidth, g.w-halfWidth)
		baseY := g.h - inset
		endY := min32(g.h, baseY+expandedLength)
		if d.params.Inward {
			endY = baseY - expandedLength
		}
		x1, y1 = cx-halfWidth, min32(baseY, endY)
		x2, y2 = cx+halfWidth, max32(baseY, endY)
	case edgeLeft:
		cy := clamp32(edgePos, halfWidth, g.h-halfWidth)
		baseX := inset
		endX := max32(0, baseX-expandedLength)
		if d.params.Inward {
			endX = baseX + expandedLength
		}
		x1, y1 = min32(baseX, endX), cy-halfWidth
		x2, y2 = max32(baseX, endX), cy+halfWidth
	case edgeRight:
		cy := clamp32(edgePos, halfWidth, g.h-halfWidth)
		baseX := g.w - inset
		endX := min32(g.w, baseX+expandedLength)
		if d.params.Inward {
			endX = baseX - expandedLength
		}
		x1, y1 = min32(baseX, endX), cy-halfWidth
		x2, y2 = max32(baseX, endX), cy+halfWidth
	}

	return g.pushRect(dst, x1, y1, x2, y2, value, index)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
