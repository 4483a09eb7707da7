package design

import "math"

// ParticlePattern selects where particles spawn and how they move.
type ParticlePattern int

const (
	// PatternRandom scatters particles across the centre region with a
	// slow drift.
	PatternRandom ParticlePattern = iota
	// PatternCenter emits particles outward from the centre.
	PatternCenter
	// PatternRing spawns particles on a ring that breathes with energy.
	PatternRing
	// PatternBurst fires particles outward on beats.
	PatternBurst
)

// ParticlesParams tune the particle simulation.
type ParticlesParams struct {
	// MaxParticles caps the number of live particles.
	MaxParticles int
	// SizeMin and SizeMax bound the spawn size in pixels.
	SizeMin float64
	SizeMax float64
	Pattern ParticlePattern
}

// DefaultParticlesParams returns the standard random-scatter simulation.
func DefaultParticlesParams() ParticlesParams {
	return ParticlesParams{MaxParticles: 200, SizeMin: 4, SizeMax: 20}
}

type particle struct {
	x, y     float32
	vx, vy   float32
	size     float32
	age      int
	lifetime int
	band     int
}

// particlesDesign is a forward-only simulation: particles spawn from
// spectrum energy and beats, drift with their velocity and age out. State
// belongs to the instance, so each render session owns its own simulation
// and frames must be generated in order.
type particlesDesign struct {
	params ParticlesParams
	rng    uint32
	alive  []particle
}

func newParticlesDesign(params ParticlesParams) *particlesDesign {
	return &particlesDesign{
		params: params,
		// Fixed seed keeps renders reproducible.
		rng:   0x9E3779B9,
		alive: make([]particle, 0, params.MaxParticles),
	}
}

func (d *particlesDesign) Type() Type     { return Particles }
func (d *particlesDesign) Stateful() bool { return true }

// next advances the xorshift32 generator and returns a value in [0, 1).
func (d *particlesDesign) next() float32 {
	d.rng ^= d.rng << 13
	d.rng ^= d.rng >> 17
	d.rng ^= d.rng << 5
	return float32(d.rng) / float32(math.MaxUint32)
}

func (d *particlesDesign) nextRange(min, max float64) float32 {
	return float32(min) + d.next()*float32(max-min)
}

func (d *particlesDesign) Vertices(spectrum []float64, scene Scene) []Vertex {
	barCount := effectiveBars(spectrum, scene)
	if barCount == 0 {
		return nil
	}

	g := newGeom(scene)

	var energy float32
	for i := 0; i < barCount; i++ {
		energy += clamp01(spectrum[i])
	}
	energy /= float32(barCount)

	d.step(g, energy, float32(scene.BeatIntensity), barCount)

	vertices := make([]Vertex, 0, len(d.alive)*6)
	for i := range d.alive {
		p := &d.alive[i]
		value := clamp01(spectrum[p.band%barCount])

		// Dim particles fade unless a beat is lighting everything up.
		if value < 0.1 && scene.BeatIntensity < 0.3 {
			continue
		}

		fade := 1 - float32(p.age)/float32(p.lifetime)
		size := p.size * (0.5 + value*0.5) * g.beatScale * g.localExpand
		half := size * 0.5
		vertices = g.pushRect(vertices,
			p.x-half, p.y-half, p.x+half, p.y+half,
			value*fade, float32(i))
	}
	return vertices
}

// step spawns, moves and retires particles for one frame.
func (d *particlesDesign) step(g geom, energy, beat float32, barCount int) {
	cx, cy := g.w*0.5, g.h*0.5

	// Age and move live particles, dropping expired or off-screen ones.
	kept := d.alive[:0]
	for _, p := range d.alive {
		p.age++
		p.x += p.vx
		p.y += p.vy
		p.vx *= 0.98
		p.vy *= 0.98
		if p.age >= p.lifetime || p.x < -50 || p.x > g.w+50 || p.y < -50 || p.y > g.h+50 {
			continue
		}
		kept = append(kept, p)
	}
	d.alive = kept

	// Emission follows the track energy, plus a burst on beats.
	spawn := int(energy * float32(d.params.MaxParticles) * 0.1)
	if beat > 0.3 {
		spawn += int(beat * float32(d.params.MaxParticles) * 0.25)
	}
	for i := 0; i < spawn && len(d.alive) < d.params.MaxParticles; i++ {
		d.alive = append(d.alive, d.spawn(g, cx, cy, energy, beat, barCount))
	}
}

func (d *particlesDesign) spawn(g geom, cx, cy, energy, beat float32, barCount int) particle {
	p := particle{
		size:     d.nextRange(d.params.SizeMin, d.params.SizeMax),
		lifetime: 30 + int(d.next()*60),
		band:     int(d.next() * float32(barCount)),
	}

	spreadX := g.w * 0.45
	spreadY := g.h * 0.45

	switch d.params.Pattern {
	case PatternRandom:
		p.x = cx + (d.next()*2-1)*spreadX
		p.y = cy + (d.next()*2-1)*spreadY
		p.vx = (d.next()*2 - 1) * 0.5
		p.vy = (d.next()*2 - 1) * 0.5

	case PatternCenter:
		angle := float64(d.next()) * 2 * math.Pi
		speed := (1 + energy*3) * g.w * 0.002
		p.x, p.y = cx, cy
		p.vx = float32(math.Cos(angle)) * speed
		p.vy = float32(math.Sin(angle)) * speed

	case PatternRing:
		angle := float64(d.next()) * 2 * math.Pi
		radius := g.w * 0.35 * 0.8 * (1 + energy*0.5)
		p.x = cx + float32(math.Cos(angle))*radius
		p.y = cy + float32(math.Sin(angle))*radius
		p.vx = float32(math.Cos(angle)) * energy
		p.vy = float32(math.Sin(angle)) * energy

	case PatternBurst:
		angle := float64(d.next()) * 2 * math.Pi
		speed := (0.5 + beat*4) * g.w * 0.003
		p.x, p.y = cx, cy
		p.vx = float32(math.Cos(angle)) * speed
		p.vy = float32(math.Sin(angle)) * speed
	}

	return p
}
