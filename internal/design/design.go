// Package design turns per-frame spectrum data into renderable geometry.
//
// Each design produces a triangle list in normalized device coordinates.
// Vertices carry a local position used by the rasterizer for the soft glow
// falloff, the bar's spectrum value and its index for colour ramping.
package design

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDesign is returned when a design name cannot be resolved.
var ErrUnknownDesign = errors.New("unknown design")

// Vertex is one corner of a rendered triangle. Position is in NDC with
// x and y in [-1, 1], y up. Local spans [-localExpand, localExpand] across
// the primitive, with the core shape inside [-1, 1] and the glow skirt
// outside it.
type Vertex struct {
	Position [2]float32
	Local    [2]float32
	Value    float32
	Index    float32
}

// Scene is the per-frame input shared by all designs.
type Scene struct {
	Width         int
	Height        int
	BarCount      int
	Glow          bool
	BeatIntensity float64
}

// Design generates geometry for one frame. Implementations with
// Stateful() == true carry per-render state and must be called in frame
// order from a single goroutine; stateless designs are pure and safe to
// call concurrently.
type Design interface {
	Type() Type
	Stateful() bool
	Vertices(spectrum []float64, scene Scene) []Vertex
}

// Type identifies a design variant.
type Type int

const (
	Bars Type = iota
	CircularRadial
	CircularRing
	FramePerimeter
	FrameCorners
	WaveformLine
	SpectrumMountain
	Particles
	Spectrogram
	numTypes
)

// Valid reports whether t is a known design type.
func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// String returns the canonical design name.
func (t Type) String() string {
	switch t {
	case Bars:
		return "bars"
	case CircularRadial:
		return "circular-radial"
	case CircularRing:
		return "circular-ring"
	case FramePerimeter:
		return "frame-perimeter"
	case FrameCorners:
		return "frame-corners"
	case WaveformLine:
		return "waveform-line"
	case SpectrumMountain:
		return "spectrum-mountain"
	case Particles:
		return "particles"
	case Spectrogram:
		return "spectrogram"
	}
	return fmt.Sprintf("design(%d)", int(t))
}

// Description returns a one-line human description.
func (t Type) Description() string {
	switch t {
	case Bars:
		return "Traditional vertical/horizontal bars"
	case CircularRadial:
		return "Bars emanating outward from center"
	case CircularRing:
		return "Bars arranged around a ring"
	case FramePerimeter:
		return "Bars along screen edges (overlay)"
	case FrameCorners:
		return "Bar clusters at the frame corners"
	case WaveformLine:
		return "Oscilloscope-style waveform line"
	case SpectrumMountain:
		return "Filled spectrum area chart"
	case Particles:
		return "Beat-reactive particle simulation"
	case Spectrogram:
		return "Scrolling time-frequency heatmap"
	}
	return ""
}

// Parse resolves a design name, accepting the short aliases used by the
// CLI. Matching is case-insensitive.
func Parse(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "bars":
		return Bars, nil
	case "circular-radial", "circularradial", "radial":
		return CircularRadial, nil
	case "circular-ring", "circularring", "ring":
		return CircularRing, nil
	case "frame-perimeter", "frameperimeter", "perimeter", "frame":
		return FramePerimeter, nil
	case "frame-corners", "framecorners", "corners":
		return FrameCorners, nil
	case "waveform-line", "waveformline", "waveform", "line":
		return WaveformLine, nil
	case "spectrum-mountain", "spectrummountain", "mountain":
		return SpectrumMountain, nil
	case "particles":
		return Particles, nil
	case "spectrogram":
		return Spectrogram, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDesign, s)
}

// All returns every design type in declaration order.
func All() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Info is one entry of the design catalog.
type Info struct {
	Name        string
	Description string
}

// List returns the design catalog in declaration order.
func List() []Info {
	out := make([]Info, 0, numTypes)
	for _, t := range All() {
		out = append(out, Info{Name: t.String(), Description: t.Description()})
	}
	return out
}

// Options carry the CLI-level knobs that alter a design's default
// parameters.
type Options struct {
	Mirror   bool
	Vertical bool
}

// New creates a fresh design instance. Stateful designs (particles,
// spectrogram) get their own state per call, so concurrent renders never
// interfere.
func New(t Type, opts Options) (Design, error) {
	switch t {
	case Bars:
		p := DefaultBarsParams()
		p.Mirror = opts.Mirror
		p.Vertical = opts.Vertical
		return &barsDesign{params: p}, nil
	case CircularRadial:
		return &radialDesign{params: DefaultRadialParams()}, nil
	case CircularRing:
		return &ringDesign{params: DefaultRingParams()}, nil
	case FramePerimeter:
		return &perimeterDesign{params: DefaultPerimeterParams()}, nil
	case FrameCorners:
		return &cornersDesign{params: DefaultCornersParams()}, nil
	case WaveformLine:
		p := DefaultWaveformParams()
		p.Mirror = opts.Mirror
		return &waveformDesign{params: p}, nil
	case SpectrumMountain:
		p := DefaultMountainParams()
		p.Mirror = opts.Mirror
		return &mountainDesign{params: p}, nil
	case Particles:
		return newParticlesDesign(DefaultParticlesParams()), nil
	case Spectrogram:
		return newSpectrogramDesign(DefaultSpectrogramParams()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownDesign, int(t))
}
