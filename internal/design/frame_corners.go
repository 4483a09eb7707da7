package design

// CornersParams tune the frame-corners design.
type CornersParams struct {
	// Inset is the distance from the screen edge in pixels.
	Inset float64
	// CornerSize is the corner extent as a fraction of the minimum
	// dimension.
	CornerSize float64
	// Inward grows bars toward the screen centre.
	Inward bool
}

// DefaultCornersParams returns inward corner clusters.
func DefaultCornersParams() CornersParams {
	return CornersParams{Inset: 20, CornerSize: 0.25, Inward: true}
}

type cornersDesign struct {
	params CornersParams
}

func (d *cornersDesign) Type() Type     { return FrameCorners }
func (d *cornersDesign) Stateful() bool { return false }

// Vertices builds an L-shaped cluster at each corner. Every bar is drawn
// twice, once along the horizontal edge and once along the vertical edge,
// so each bar contributes two quads.
func (d *cornersDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)
	p := d.params
	inset := float32(p.Inset)

	minDim := min32(g.w, g.h)
	cornerExtent := minDim * float32(p.CornerSize)
	maxBarLength := cornerExtent * 0.6

	barsPerCorner := barCount / 4
	extraBars := barCount % 4

	vertices := make([]Vertex, 0, barCount*12)
	spectrumIdx := 0

	for corner := 0; corner < 4; corner++ {
		cornerBars := barsPerCorner
		if corner < extraBars {
			cornerBars++
		}
		if cornerBars == 0 {
			continue
		}

		barSpacing := cornerExtent / float32(cornerBars+1)
		barWidth := barSpacing * 0.6 * g.localExpand

		for i := 0; i < cornerBars; i++ {
			if spectrumIdx >= len(spectrum) {
				break
			}

			value := clamp01(spectrum[spectrumIdx])
			barLength := maxBarLength * value * g.beatScale * g.localExpand
			offset := barSpacing * float32(i+1)
			halfWidth := barWidth * 0.5
			index := float32(spectrumIdx)

			switch corner {
			case 0: // top-left
				hx, hy := inset+offset, inset
				hy1, hy2 := max32(hy-barLength, 0), hy
				if p.Inward {
					hy1, hy2 = hy, hy+barLength
				}
				vertices = g.pushRect(vertices, hx-halfWidth, hy1, hx+halfWidth, hy2, value, index)

				vx, vy := inset, inset+offset
				vx1, vx2 := max32(vx-barLength, 0), vx
				if p.Inward {
					vx1, vx2 = vx, vx+barLength
				}
				vertices = g.pushRect(vertices, vx1, vy-halfWidth, vx2, vy+halfWidth, value, index)

			case 1: // top-right
				hx, hy := g.w-inset-offset, inset
				hy1, hy2 := max32(hy-barLength, 0), hy
				if p.Inward {
					hy1, hy2 = hy, hy+barLength
				}
				vertices = g.pushRect(vertices, hx-halfWidth, hy1, hx+halfWidth, hy2, value, index)

				vx, vy := g.w-inset, inset+offset
				vx1, vx2 := vx, min32(vx+barLength, g.w)
				if p.Inward {
					vx1, vx2 = vx-barLength, vx
				}
				vertices = g.pushRect(vertices, vx1, vy-halfWidth, vx2, vy+halfWidth, value, index)

			case 2: // bottom-right
				hx, hy := g.w-inset-offset, g.h-inset
				hy1, hy2 := hy, min32(hy+barLength, g.h)
				if p.Inward {
					hy1, hy2 = hy-barLength, hy
				}
				vertices = g.pushRect(vertices, hx-halfWidth, hy1, hx+halfWidth, hy2, value, index)

				vx, vy := g.w-inset, g.h-inset-offset
				vx1, vx2 := vx, min32(vx+barLength, g.w)
				if p.Inward {
					vx1, vx2 = vx-barLength, vx
				}
				vertices = g.pushRect(vertices, vx1, vy-halfWidth, vx2, vy+halfWidth, value, index)

			case 3: // bottom-left
				hx, hy := inset+offset, g.h-inset
				hy1, hy2 := hy, min32(hy+barLength, g.h)
				if p.Inward {
					hy1, hy2 = hy-barLength, hy
				}
				vertices = g.pushRect(vertices, hx-halfWidth, hy1, hx+halfWidth, hy2, value, index)

				vx, vy := inset, g.h-inset-offset
				vx1, vx2 := max32(vx-barLength, 0), vx
				if p.Inward {
					vx1, vx2 = vx, vx+barLength
				}
				vertices = g.pushRect(vertices, vx1, vy-halfWidth, vx2, vy+halfWidth, value, index)
			}

			spectrumIdx++
		}
	}

	return vertices
}
