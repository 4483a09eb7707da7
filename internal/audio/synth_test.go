package audio

import (
	"math"
	"testing"
)

func TestSine(t *testing.T) {
	samples := Sine(440, 0.5, 1.0, 44100)

	if len(samples) != 44100 {
		t.Fatalf("Length: got %d, want 44100", len(samples))
	}

	var max float64
	for _, s := range samples {
		if a := math.Abs(s); a > max {
			max = a
		}
	}
	if math.Abs(max-0.5) > 0.001 {
		t.Errorf("Peak amplitude: got %.4f, want 0.5", max)
	}
	if samples[0] != 0 {
		t.Errorf("Sine should start at zero, got %.6f", samples[0])
	}
}

func TestWhiteNoise(t *testing.T) {
	a := WhiteNoise(1.0, 0.5, 44100, 42)
	b := WhiteNoise(1.0, 0.5, 44100, 42)
	c := WhiteNoise(1.0, 0.5, 44100, 43)

	if len(a) != 22050 {
		t.Fatalf("Length: got %d, want 22050", len(a))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Same seed diverged at sample %d", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("Sample %d out of range: %.6f", i, a[i])
		}
	}

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Errorf("Different seeds produced identical noise")
	}

	var mean float64
	for _, s := range a {
		mean += s
	}
	mean /= float64(len(a))
	if math.Abs(mean) > 0.05 {
		t.Errorf("Noise mean %.4f too far from zero", mean)
	}
}

func TestClickTrack(t *testing.T) {
	const sampleRate = 44100

	samples := ClickTrack(120, 1000, 2.0, sampleRate)
	if len(samples) != 2*sampleRate {
		t.Fatalf("Length: got %d, want %d", len(samples), 2*sampleRate)
	}

	// Clicks occupy 10ms at each half-second boundary; the rest is silence.
	clickSamples := sampleRate / 100
	if samples[clickSamples+100] != 0 {
		t.Errorf("Expected silence after click, got %.6f", samples[clickSamples+100])
	}

	var clickEnergy float64
	for i := 0; i < clickSamples; i++ {
		clickEnergy += samples[i] * samples[i]
	}
	if clickEnergy == 0 {
		t.Errorf("First click carries no energy")
	}

	secondClick := sampleRate / 2
	var secondEnergy float64
	for i := secondClick; i < secondClick+clickSamples; i++ {
		secondEnergy += samples[i] * samples[i]
	}
	if secondEnergy == 0 {
		t.Errorf("No click at the half-second mark")
	}
}

func TestKick(t *testing.T) {
	const sampleRate = 44100

	samples := Kick(sampleRate)
	want := int(float64(sampleRate) * 0.15)
	if len(samples) != want {
		t.Fatalf("Length: got %d, want %d", len(samples), want)
	}

	// Amplitude envelope decays, so early energy dominates late energy.
	quarter := len(samples) / 4
	var early, late float64
	for i := 0; i < quarter; i++ {
		early += samples[i] * samples[i]
		late += samples[len(samples)-1-i] * samples[len(samples)-1-i]
	}
	if early <= late*10 {
		t.Errorf("Kick does not decay: early energy %.4f, late %.6f", early, late)
	}
}

func TestTestBeat(t *testing.T) {
	const sampleRate = 44100

	samples := TestBeat(120, 2.0, sampleRate)
	if len(samples) != 2*sampleRate {
		t.Fatalf("Length: got %d, want %d", len(samples), 2*sampleRate)
	}

	var max float64
	for _, s := range samples {
		if a := math.Abs(s); a > max {
			max = a
		}
	}
	if max > 1.0 {
		t.Errorf("Normalized output exceeds full scale: %.4f", max)
	}
	if max == 0 {
		t.Errorf("Pattern is silent")
	}
}
