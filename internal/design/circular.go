package design

import "math"

// RadialParams tune the circular-radial design.
type RadialParams struct {
	// InnerRadius and OuterRadius are fractions of the minimum dimension.
	InnerRadius float64
	OuterRadius float64
	// StartAngle, ArcSpan and Rotation are radians. ArcSpan of 2*pi draws
	// a full circle.
	StartAngle float64
	ArcSpan    float64
	Rotation   float64
}

// DefaultRadialParams returns a full-circle radial layout.
func DefaultRadialParams() RadialParams {
	return RadialParams{
		InnerRadius: 0.15,
		OuterRadius: 0.45,
		ArcSpan:     2 * math.Pi,
	}
}

type radialDesign struct {
	params RadialParams
}

func (d *radialDesign) Type() Type     { return CircularRadial }
func (d *radialDesign) Stateful() bool { return false }

func (d *radialDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)
	p := d.params
	centerX := float64(g.w) * 0.5
	centerY := float64(g.h) * 0.5
	minDim := math.Min(float64(g.w), float64(g.h))

	innerR := p.InnerRadius * minDim * 0.5
	maxBarLength := (p.OuterRadius - p.InnerRadius) * minDim * 0.5
	angularWidth := p.ArcSpan / float64(barCount) * 0.8
	halfAngle := angularWidth * 0.5 * float64(g.localExpand)

	vertices := make([]Vertex, 0, barCount*6)

	for i := 0; i < barCount; i++ {
		value := clamp01(spectrum[i])
		angle := p.StartAngle + float64(i)/float64(barCount)*p.ArcSpan + p.Rotation

		barLength := maxBarLength * float64(value) * float64(g.beatScale)
		outerR := innerR + barLength

		innerGlow := innerR * float64(1-g.glowExpand*0.5)
		outerGlow := outerR * float64(1+g.glowExpand)

		cosL, sinL := math.Cos(angle-halfAngle), math.Sin(angle-halfAngle)
		cosR, sinR := math.Cos(angle+halfAngle), math.Sin(angle+halfAngle)

		il := [2]float32{float32(centerX + cosL*innerGlow), float32(centerY + sinL*innerGlow)}
		ir := [2]float32{float32(centerX + cosR*innerGlow), float32(centerY + sinR*innerGlow)}
		ol := [2]float32{float32(centerX + cosL*outerGlow), float32(centerY + sinL*outerGlow)}
		or := [2]float32{float32(centerX + cosR*outerGlow), float32(centerY + sinR*outerGlow)}

		vertices = g.pushArcQuad(vertices, il, ir, ol, or, value, float32(i))
	}
	return vertices
}

// RingParams tune the circular-ring design.
type RingParams struct {
	// Radius and BarLength are fractions of the minimum dimension.
	Radius    float64
	BarLength float64
	// Rotation is radians.
	Rotation float64
	// Inward points bars toward the centre instead of outward.
	Inward bool
}

// DefaultRingParams returns the standard outward-pointing ring.
func DefaultRingParams() RingParams {
	return RingParams{Radius: 0.35, BarLength: 0.15}
}

type ringDesign struct {
	params RingParams
}

func (d *ringDesign) Type() Type     { return CircularRing }
func (d *ringDesign) Stateful() bool { return false }

func (d *ringDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)
	p := d.params
	centerX := float64(g.w) * 0.5
	centerY := float64(g.h) * 0.5
	minDim := math.Min(float64(g.w), float64(g.h))

	ringRadius := p.Radius * minDim * 0.5
	maxBarLength := p.BarLength * minDim * 0.5
	angularWidth := 2 * math.Pi / float64(barCount) * 0.7
	halfAngle := angularWidth * 0.5 * float64(g.localExpand)

	vertices := make([]Vertex, 0, barCount*6)

	for i := 0; i < barCount; i++ {
		value := clamp01(spectrum[i])
		angle := float64(i)/float64(barCount)*2*math.Pi + p.Rotation

		barLength := maxBarLength * float64(value) * float64(g.beatScale)
		innerR, outerR := ringRadius, ringRadius+barLength
		if p.Inward {
			innerR, outerR = ringRadius-barLength, ringRadius
		}

		innerGlow := innerR * float64(1-g.glowExpand*0.3)
		outerGlow := outerR * float64(1+g.glowExpand*0.3)

		cosL, sinL := math.Cos(angle-halfAngle), math.Sin(angle-halfAngle)
		cosR, sinR := math.Cos(angle+halfAngle), math.Sin(angle+halfAngle)

		il := [2]float32{float32(centerX + cosL*innerGlow), float32(centerY + sinL*innerGlow)}
		ir := [2]float32{float32(centerX + cosR*innerGlow), float32(centerY + sinR*innerGlow)}
		ol := [2]float32{float32(centerX + cosL*outerGlow), float32(centerY + sinL*outerGlow)}
		or := [2]float32{float32(centerX + cosR*outerGlow), float32(centerY + sinR*outerGlow)}

		vertices = g.pushArcQuad(vertices, il, ir, ol, or, value, float32(i))
	}
	return vertices
}
