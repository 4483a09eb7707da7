package design

// SpectrogramParams tune the scrolling spectrogram design.
type SpectrogramParams struct {
	// Margin from the frame edges as a fraction of the frame size.
	Margin float64
	// GapRatio is the gap between cells as a fraction of the cell size,
	// 0 for the continuous spectrogram look.
	GapRatio float64
	// TimeWindow is the number of history frames kept on screen. At
	// 30 fps, 150 frames is five seconds.
	TimeWindow int
}

// DefaultSpectrogramParams returns a five-second continuous spectrogram.
func DefaultSpectrogramParams() SpectrogramParams {
	return SpectrogramParams{Margin: 0.02, TimeWindow: 150}
}

// spectrogramDesign accumulates spectrum frames into a rolling history,
// newest on the right. The history makes it stateful: frames must arrive
// in order and each render session needs its own instance.
type spectrogramDesign struct {
	params  SpectrogramParams
	history [][]float32
}

func newSpectrogramDesign(params SpectrogramParams) *spectrogramDesign {
	return &spectrogramDesign{
		params:  params,
		history: make([][]float32, 0, params.TimeWindow),
	}
}

func (d *spectrogramDesign) Type() Type     { return Spectrogram }
func (d *spectrogramDesign) Stateful() bool { return true }

func (d *spectrogramDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	freqBins := effectiveBars(spectrum, scene)
	if freqBins == 0 {
		return nil
	}

	g := newGeom(scene)
	p := d.params

	frame := make([]float32, freqBins)
	for i := 0; i < freqBins; i++ {
		frame[i] = clamp01(spectrum[i])
	}
	d.history = append(d.history, frame)
	if excess := len(d.history) - p.TimeWindow; excess > 0 {
		d.history = d.history[excess:]
	}

	timeFrames := len(d.history)

	marginX := g.w * float32(p.Margin)
	marginY := g.h * float32(p.Margin)
	availableWidth := g.w - 2*marginX
	availableHeight := g.h - 2*marginY

	cellWidth := availableWidth / float32(p.TimeWindow)
	cellHeight := availableHeight / float32(freqBins)
	gapX := cellWidth * float32(p.GapRatio) * 0.5
	gapY := cellHeight * float32(p.GapRatio) * 0.5

	vertices := make([]Vertex, 0, timeFrames*freqBins*6)

	for timeIdx, hist := range d.history {
		// Newest frames sit on the right even while history fills up.
		timeOffset := p.TimeWindow - timeFrames + timeIdx
		xStart := marginX + float32(timeOffset)*cellWidth + gapX
		xEnd := xStart + cellWidth - 2*gapX

		for freqIdx, value := range hist {
			// Low frequencies at the bottom of the frame.
			reversed := len(hist) - 1 - freqIdx
			yStart := marginY + float32(reversed)*cellHeight + gapY
			yEnd := yStart + cellHeight - 2*gapY

			scaled := value * g.beatScale
			if scaled > 1 {
				scaled = 1
			}

			vertices = g.pushRect(vertices, xStart, yStart, xEnd, yEnd, scaled, float32(freqIdx))
		}
	}

	return vertices
}
