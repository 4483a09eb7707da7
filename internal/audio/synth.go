package audio

import "math"

// Test signal generators. These back the synthetic fixtures used in
// tests and the self-test render mode, so their output is deterministic.

// Sine generates a sine wave at the given frequency and amplitude.
func Sine(freq, amplitude float64, duration float64, sampleRate int) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		samples[i] = amplitude * math.Sin(2*math.Pi*freq*t)
	}
	return samples
}

// WhiteNoise generates uniform noise in [-amplitude, amplitude] from a
// 64-bit LCG so the same seed always yields the same signal.
func WhiteNoise(amplitude float64, duration float64, sampleRate int, seed uint64) []float64 {
	const (
		lcgMul = 6364136223846793005
		lcgInc = 1442695040888963407
	)
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)
	state := seed
	for i := range samples {
		state = state*lcgMul + lcgInc
		samples[i] = (float64(state)/float64(math.MaxUint64)*2 - 1) * amplitude
	}
	return samples
}

// ClickTrack generates short sine clicks at the given tempo.
func ClickTrack(bpm, clickFreq float64, duration float64, sampleRate int) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)

	samplesPerBeat := int(60 / bpm * float64(sampleRate))
	clickSamples := int(float64(sampleRate) * 0.01)

	for start := 0; start < n; start += samplesPerBeat {
		for i := 0; i < clickSamples && start+i < n; i++ {
			env := 1 - float64(i)/float64(clickSamples)
			env *= env
			t := float64(i) / float64(sampleRate)
			samples[start+i] = env * math.Sin(2*math.Pi*clickFreq*t)
		}
	}
	return samples
}

// Kick generates a single 150 ms kick drum with a falling pitch sweep.
func Kick(sampleRate int) []float64 {
	n := int(float64(sampleRate) * 0.15)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		freq := 50 + 100*math.Exp(-30*t)
		amp := math.Exp(-15 * t)
		samples[i] = amp * math.Sin(2*math.Pi*freq*t)
	}
	return samples
}

// TestBeat generates a simple kick plus hi-hat pattern at the given
// tempo, normalized to peak at 1.
func TestBeat(bpm float64, duration float64, sampleRate int) []float64 {
	n := int(duration * float64(sampleRate))
	samples := make([]float64, n)

	samplesPerBeat := int(60 / bpm * float64(sampleRate))
	samplesPer16th := samplesPerBeat / 4

	kick := Kick(sampleRate)
	hatSamples := int(float64(sampleRate) * 0.05)

	for pos, step := 0, 0; pos < n; pos, step = pos+samplesPer16th, step+1 {
		if step%8 == 0 || step%8 == 4 {
			for i := 0; i < len(kick) && pos+i < n; i++ {
				samples[pos+i] += kick[i] * 0.8
			}
		}
		if step%2 == 0 {
			for i := 0; i < hatSamples && pos+i < n; i++ {
				t := float64(i) / float64(sampleRate)
				amp := math.Exp(-50*t) * 0.3
				noise := math.Sin(float64(pos+i) * 12345.67)
				samples[pos+i] += amp * noise
			}
		}
	}

	var max float64
	for _, s := range samples {
		if a := math.Abs(s); a > max {
			max = a
		}
	}
	if max > 1 {
		for i := range samples {
			samples[i] /= max
		}
	}
	return samples
}
