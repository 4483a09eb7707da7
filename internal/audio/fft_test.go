package audio

import (
	"math"
	"testing"
)

// TestAnalyze_KnownSineWave verifies that Analyze places the energy of a
// 440 Hz sine wave in the expected FFT bin. This catches windowing,
// scaling, or bin ordering bugs that would make the spectrum unresponsive.
func TestAnalyze_KnownSineWave(t *testing.T) {
	const (
		sampleRate = 44100
		frequency  = 440.0
		fftSize    = 2048
	)

	analyzer := NewSpectrumAnalyzer(fftSize, sampleRate)
	sine := Sine(frequency, 1.0, 1.0, sampleRate)

	spectrum := analyzer.Analyze(sine[:fftSize])
	if len(spectrum) != fftSize/2 {
		t.Fatalf("Spectrum length: got %d, want %d", len(spectrum), fftSize/2)
	}

	maxBin := 0
	maxVal := 0.0
	for bin, val := range spectrum {
		if val > maxVal {
			maxVal = val
			maxBin = bin
		}
	}

	expectedBin := analyzer.FreqToBin(frequency)
	t.Logf("440 Hz sine: peak bin %d (%.1f Hz), expected bin %d, magnitude %.6f",
		maxBin, analyzer.BinToFreq(maxBin), expectedBin, maxVal)

	if maxVal <= 0 {
		t.Errorf("Expected non-zero peak magnitude, got %.6f", maxVal)
	}
	// Windowing spreads energy over a few bins; allow 1 bin of slack.
	if maxBin < expectedBin-1 || maxBin > expectedBin+1 {
		t.Errorf("Peak bin %d not near expected bin %d", maxBin, expectedBin)
	}
}

// TestAnalyze_ZeroPadsShortInput verifies that input shorter than the FFT
// size is accepted and zero padded rather than rejected.
func TestAnalyze_ZeroPadsShortInput(t *testing.T) {
	analyzer := NewSpectrumAnalyzer(2048, 44100)

	short := Sine(440, 1.0, 0.01, 44100) // 441 samples
	spectrum := analyzer.Analyze(short)

	if len(spectrum) != 1024 {
		t.Fatalf("Spectrum length: got %d, want 1024", len(spectrum))
	}

	var total float64
	for _, v := range spectrum {
		total += v
	}
	if total <= 0 {
		t.Errorf("Zero-padded input produced empty spectrum")
	}
}

// TestAnalyzeDB_Range verifies the decibel conversion floor and that loud
// content stays above it.
func TestAnalyzeDB_Range(t *testing.T) {
	analyzer := NewSpectrumAnalyzer(2048, 44100)

	silence := make([]float64, 2048)
	db := analyzer.AnalyzeDB(silence)
	for bin, v := range db {
		if v != -80 {
			t.Errorf("Silence bin %d: got %.2f dB, want -80 dB floor", bin, v)
			break
		}
	}

	sine := Sine(440, 1.0, 1.0, 44100)
	db = analyzer.AnalyzeDB(sine[:2048])
	maxDB := -80.0
	for _, v := range db {
		if v > maxDB {
			maxDB = v
		}
	}
	if maxDB <= -80 {
		t.Errorf("Loud sine never rose above the dB floor: max %.2f", maxDB)
	}
	t.Logf("Sine peak level: %.2f dB", maxDB)
}

// TestAnalyzeBands_Normalized verifies band count, value range, and that
// the loudest band is exactly 1 for non-silent input.
func TestAnalyzeBands_Normalized(t *testing.T) {
	const numBands = 32

	analyzer := NewSpectrumAnalyzer(2048, 44100)
	sine := Sine(440, 1.0, 1.0, 44100)

	bands := analyzer.AnalyzeBands(sine[:2048], numBands)
	if len(bands) != numBands {
		t.Fatalf("Band count: got %d, want %d", len(bands), numBands)
	}

	maxVal := 0.0
	for i, v := range bands {
		if v < 0 || v > 1 {
			t.Errorf("Band %d out of range: %.6f", i, v)
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-1) > 1e-9 {
		t.Errorf("Loudest band should normalize to 1, got %.6f", maxVal)
	}
}

// TestAnalyzeBands_Silence verifies silence yields all-zero bands without
// dividing by zero.
func TestAnalyzeBands_Silence(t *testing.T) {
	analyzer := NewSpectrumAnalyzer(2048, 44100)
	bands := analyzer.AnalyzeBands(make([]float64, 2048), 32)

	for i, v := range bands {
		if v != 0 {
			t.Errorf("Band %d: got %.6f for silence, want 0", i, v)
		}
	}
}

// TestBinFreqConversion verifies the bin/frequency mapping round trips and
// hits the Nyquist bin at the half sample rate.
func TestBinFreqConversion(t *testing.T) {
	analyzer := NewSpectrumAnalyzer(2048, 44100)

	if got := analyzer.BinToFreq(0); got != 0 {
		t.Errorf("Bin 0: got %.2f Hz, want 0", got)
	}
	if got := analyzer.FreqToBin(22050); got != 1024 {
		t.Errorf("Nyquist: got bin %d, want 1024", got)
	}

	for _, freq := range []float64{100, 440, 1000, 10000} {
		bin := analyzer.FreqToBin(freq)
		back := analyzer.BinToFreq(bin)
		binWidth := 44100.0 / 2048.0
		if math.Abs(back-freq) > binWidth {
			t.Errorf("Round trip %.0f Hz -> bin %d -> %.2f Hz exceeds bin width", freq, bin, back)
		}
	}
}
