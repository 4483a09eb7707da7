package audio

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumAnalyzer computes magnitude spectra and log-spaced frequency
// bands from windowed sample blocks.
type SpectrumAnalyzer struct {
	fftSize    int
	sampleRate int
	fft        *fourier.FFT
	window     []float64
	coeffs     []complex128
}

// NewSpectrumAnalyzer creates an analyzer. fftSize must be a power of two.
func NewSpectrumAnalyzer(fftSize, sampleRate int) *SpectrumAnalyzer {
	a := &SpectrumAnalyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(fftSize),
		window:     make([]float64, fftSize),
		coeffs:     make([]complex128, fftSize/2+1),
	}
	// Hann window
	n := float64(fftSize - 1)
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/n))
	}
	return a
}

// FFTSize returns the transform length.
func (a *SpectrumAnalyzer) FFTSize() int {
	return a.fftSize
}

// Analyze windows the samples and returns fftSize/2 normalized magnitudes.
// Input shorter than the FFT size is zero padded.
func (a *SpectrumAnalyzer) Analyze(samples []float64) []float64 {
	windowed := make([]float64, a.fftSize)
	n := len(samples)
	if n > a.fftSize {
		n = a.fftSize
	}
	for i := 0; i < n; i++ {
		windowed[i] = samples[i] * a.window[i]
	}

	a.coeffs = a.fft.Coefficients(a.coeffs, windowed)

	norm := math.Sqrt(float64(a.fftSize))
	magnitudes := make([]float64, a.fftSize/2)
	for i := range magnitudes {
		magnitudes[i] = cmplxAbs(a.coeffs[i]) / norm
	}
	return magnitudes
}

// AnalyzeDB returns the spectrum in decibels, floored at -80 dB.
func (a *SpectrumAnalyzer) AnalyzeDB(samples []float64) []float64 {
	magnitudes := a.Analyze(samples)
	for i, m := range magnitudes {
		if m < 1e-10 {
			m = 1e-10
		}
		db := 20 * math.Log10(m)
		if db < -80 {
			db = -80
		}
		magnitudes[i] = db
	}
	return magnitudes
}

// AnalyzeBands groups the spectrum into numBands logarithmically spaced
// bands from 20 Hz to Nyquist, normalized so the loudest band is 1.
func (a *SpectrumAnalyzer) AnalyzeBands(samples []float64, numBands int) []float64 {
	spectrum := a.Analyze(samples)
	numBins := len(spectrum)

	lnMin := math.Log(20.0)
	lnMax := math.Log(float64(a.sampleRate) / 2.0)
	lnRange := lnMax - lnMin

	bands := make([]float64, numBands)
	for i := 0; i < numBands; i++ {
		fLow := math.Exp(lnMin + float64(i)/float64(numBands)*lnRange)
		fHigh := math.Exp(lnMin + float64(i+1)/float64(numBands)*lnRange)

		binLow := a.FreqToBin(fLow)
		if binLow > numBins-1 {
			binLow = numBins - 1
		}
		binHigh := a.FreqToBin(fHigh)
		if binHigh > numBins {
			binHigh = numBins
		}

		if binHigh > binLow {
			var sum float64
			for b := binLow; b < binHigh; b++ {
				sum += spectrum[b]
			}
			bands[i] = sum / float64(binHigh-binLow)
		} else {
			bands[i] = spectrum[binLow]
		}
	}

	var max float64
	for _, b := range bands {
		if b > max {
			max = b
		}
	}
	if max > 0 {
		for i := range bands {
			bands[i] /= max
		}
	}
	return bands
}

// BinToFreq converts an FFT bin index to its center frequency in Hz.
func (a *SpectrumAnalyzer) BinToFreq(bin int) float64 {
	return float64(bin) * float64(a.sampleRate) / float64(a.fftSize)
}

// FreqToBin converts a frequency in Hz to the nearest FFT bin index.
func (a *SpectrumAnalyzer) FreqToBin(freq float64) int {
	return int(math.Round(freq * float64(a.fftSize) / float64(a.sampleRate)))
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
