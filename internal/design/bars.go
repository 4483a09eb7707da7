package design

// BarsParams tune the classic bar design.
type BarsParams struct {
	// Mirror makes bars grow from the centre in both directions.
	Mirror bool
	// GapRatio is the gap between bars as a fraction of the bar slot.
	GapRatio float64
	// Vertical stacks bars top to bottom and grows them horizontally.
	Vertical bool
}

// DefaultBarsParams returns the standard bar layout.
func DefaultBarsParams() BarsParams {
	return BarsParams{GapRatio: 0.1}
}

type barsDesign struct {
	params BarsParams
}

func (d *barsDesign) Type() Type     { return Bars }
func (d *barsDesign) Stateful() bool { return false }

func (d *barsDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)
	vertices := make([]Vertex, 0, barCount*6)

	heightScale := float32(0.8)
	if d.params.Mirror {
		heightScale = 0.4
	}

	if d.params.Vertical {
		barSlot := g.h / float32(barCount)
		gap := barSlot * float32(d.params.GapRatio)
		actual := barSlot - gap
		expanded := actual * g.localExpand

		for i := 0; i < barCount; i++ {
			value := clamp01(spectrum[i])
			barY := g.h - float32(i+1)*barSlot + gap*0.5
			centerY := barY + actual*0.5

			scaledWidth := value * g.w * heightScale * g.beatScale
			halfWidth := scaledWidth * 0.5 * g.localExpand
			centerX := g.w * 0.5

			vertices = g.pushRect(vertices,
				centerX-halfWidth, centerY-expanded*0.5,
				centerX+halfWidth, centerY+expanded*0.5,
				value, float32(i))
		}
		return vertices
	}

	barSlot := g.w / float32(barCount)
	gap := barSlot * float32(d.params.GapRatio)
	actual := barSlot - gap
	expanded := actual * g.localExpand

	for i := 0; i < barCount; i++ {
		value := clamp01(spectrum[i])
		barX := float32(i)*barSlot + gap*0.5
		centerX := barX + actual*0.5

		scaledHeight := value * g.h * heightScale * g.beatScale
		halfHeight := scaledHeight * 0.5 * g.localExpand
		centerY := g.h * 0.5

		vertices = g.pushRect(vertices,
			centerX-expanded*0.5, centerY-halfHeight,
			centerX+expanded*0.5, centerY+halfHeight,
			value, float32(i))
	}
	return vertices
}
