package audio

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/argusdusty/gofft"
)

// Beat detection parameters. Onsets are found in the 20-200 Hz band with
// a 1024-point FFT advancing by half a window.
const (
	beatFFTSize    = 1024
	beatHopSize    = 512
	beatBassLowHz  = 20.0
	beatBassHighHz = 200.0
	beatMinSpacing = 0.2 // seconds between onsets
)

// DefaultSensitivity is the beat threshold used when none is given.
const DefaultSensitivity = 0.5

// Beat is a detected onset.
type Beat struct {
	Time     float64 // seconds from start
	Strength float64 // 0 to 1
}

// Analysis holds everything the renderer needs about a track: per-frame
// levels and spectra aligned to the output frame rate, plus beat timing.
type Analysis struct {
	Duration   float64
	BPM        float64
	Beats      []Beat
	RMS        []float64
	Spectrum   [][]float64
	SampleRate int
	FrameRate  int
}

// NumFrames returns the number of analyzed frames.
func (a *Analysis) NumFrames() int {
	return len(a.RMS)
}

// BeatIntensity returns the strength of the most recent beat at or before
// t, decayed exponentially over the given window. Zero when no beat is
// close enough.
func (a *Analysis) BeatIntensity(t, window float64) float64 {
	var intensity float64
	for _, b := range a.Beats {
		if b.Time > t {
			break
		}
		age := t - b.Time
		if age > window {
			continue
		}
		v := (0.3 + 0.7*b.Strength) * math.Exp(-5*age/window)
		if v > intensity {
			intensity = v
		}
	}
	return intensity
}

// Analyze runs the full offline analysis over mono samples. The track
// must hold at least one FFT window of audio.
func Analyze(samples []float64, sampleRate, frameRate, numBands, fftSize int) (*Analysis, error) {
	if len(samples) < fftSize {
		return nil, fmt.Errorf("%w: %d samples, need at least %d", ErrAnalysisFailed, len(samples), fftSize)
	}
	if sampleRate <= 0 || frameRate <= 0 {
		return nil, fmt.Errorf("%w: invalid rates %d/%d", ErrAnalysisFailed, sampleRate, frameRate)
	}

	analysis := &Analysis{
		Duration:   float64(len(samples)) / float64(sampleRate),
		SampleRate: sampleRate,
		FrameRate:  frameRate,
	}

	analysis.Beats = DetectBeats(samples, sampleRate, DefaultSensitivity)
	analysis.BPM = EstimateBPM(analysis.Beats)

	samplesPerFrame := sampleRate / frameRate
	numFrames := len(samples) / samplesPerFrame
	if numFrames < 1 {
		numFrames = 1
	}

	analyzer := NewSpectrumAnalyzer(fftSize, sampleRate)
	analysis.RMS = make([]float64, numFrames)
	analysis.Spectrum = make([][]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i * samplesPerFrame
		end := start + samplesPerFrame
		if end > len(samples) {
			end = len(samples)
		}

		var sumSquares float64
		for _, s := range samples[start:end] {
			sumSquares += s * s
		}
		analysis.RMS[i] = math.Sqrt(sumSquares / float64(end-start))

		// Bands use a full FFT window starting at the frame; Analyze
		// zero pads past end of track.
		fftEnd := start + fftSize
		if fftEnd > len(samples) {
			fftEnd = len(samples)
		}
		analysis.Spectrum[i] = analyzer.AnalyzeBands(samples[start:fftEnd], numBands)
	}

	return analysis, nil
}

// DetectBeats finds onsets by tracking bass band energy across hops and
// picking peaks that exceed the local average by 1+sensitivity.
func DetectBeats(samples []float64, sampleRate int, sensitivity float64) []Beat {
	if len(samples) < beatFFTSize {
		return nil
	}
	if err := gofft.Prepare(beatFFTSize); err != nil {
		return nil
	}

	// Hann window
	window := make([]float64, beatFFTSize)
	n := float64(beatFFTSize - 1)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/n))
	}

	binLow := int(math.Round(beatBassLowHz * beatFFTSize / float64(sampleRate)))
	binHigh := int(math.Round(beatBassHighHz * beatFFTSize / float64(sampleRate)))
	if binHigh > beatFFTSize/2 {
		binHigh = beatFFTSize / 2
	}

	numHops := (len(samples) - beatFFTSize) / beatHopSize
	bass := make([]float64, 0, numHops+1)
	buf := make([]complex128, beatFFTSize)

	for pos := 0; pos+beatFFTSize <= len(samples); pos += beatHopSize {
		for i := 0; i < beatFFTSize; i++ {
			buf[i] = complex(samples[pos+i]*window[i], 0)
		}
		if err := gofft.FFT(buf); err != nil {
			return nil
		}

		var energy float64
		for b := binLow; b < binHigh; b++ {
			m := cmplxAbs(buf[b])
			energy += m * m
		}
		bass = append(bass, energy)
	}

	var max float64
	for _, e := range bass {
		if e > max {
			max = e
		}
	}
	if max > 0 {
		for i := range bass {
			bass[i] /= max
		}
	}

	// Local average over a +-8 hop neighborhood.
	localAvg := make([]float64, len(bass))
	for i := range bass {
		lo := i - 8
		if lo < 0 {
			lo = 0
		}
		hi := i + 9
		if hi > len(bass) {
			hi = len(bass)
		}
		var sum float64
		for j := lo; j < hi; j++ {
			sum += bass[j]
		}
		localAvg[i] = sum / float64(hi-lo)
	}

	threshold := 1 + sensitivity
	minSpacing := int(float64(sampleRate) / beatHopSize * beatMinSpacing)
	lastBeat := -minSpacing

	var beats []Beat
	for i := 1; i < len(bass)-1; i++ {
		if bass[i] <= bass[i-1] || bass[i] <= bass[i+1] {
			continue
		}
		if bass[i] <= localAvg[i]*threshold {
			continue
		}
		if i-lastBeat < minSpacing {
			continue
		}

		ref := localAvg[i]
		if ref < 0.01 {
			ref = 0.01
		}
		strength := bass[i]/ref - 1
		if strength > 1 {
			strength = 1
		}

		beats = append(beats, Beat{
			Time:     float64(i*beatHopSize) / float64(sampleRate),
			Strength: strength,
		})
		lastBeat = i
	}
	return beats
}

// EstimateBPM derives tempo from the median interval between beats,
// folded into the 60-200 BPM range. Returns 0 when there are too few
// beats to estimate.
func EstimateBPM(beats []Beat) float64 {
	if len(beats) < 2 {
		return 0
	}

	intervals := make([]float64, 0, len(beats)-1)
	for i := 1; i < len(beats); i++ {
		iv := beats[i].Time - beats[i-1].Time
		if iv > 0.2 && iv < 2.0 {
			intervals = append(intervals, iv)
		}
	}
	if len(intervals) == 0 {
		return 0
	}

	// Median by insertion sort, intervals are few.
	for i := 1; i < len(intervals); i++ {
		for j := i; j > 0 && intervals[j] < intervals[j-1]; j-- {
			intervals[j], intervals[j-1] = intervals[j-1], intervals[j]
		}
	}
	median := intervals[len(intervals)/2]

	bpm := 60 / median
	if bpm < 60 {
		bpm *= 2
	} else if bpm > 200 {
		bpm /= 2
	}
	return bpm
}

// Report is the JSON shape emitted by the analyze command.
type Report struct {
	Duration      float64   `json:"duration"`
	BPM           float64   `json:"bpm"`
	Beats         []float64 `json:"beats"`
	BeatStrengths []float64 `json:"beat_strengths"`
	RMS           []float64 `json:"rms"`
	NumBands      int       `json:"num_bands"`
	FrameRate     int       `json:"frame_rate"`
	SampleRate    int       `json:"sample_rate"`
}

// MarshalReport renders an analysis as indented JSON.
func MarshalReport(a *Analysis) ([]byte, error) {
	report := Report{
		Duration:      a.Duration,
		BPM:           a.BPM,
		Beats:         make([]float64, len(a.Beats)),
		BeatStrengths: make([]float64, len(a.Beats)),
		RMS:           a.RMS,
		FrameRate:     a.FrameRate,
		SampleRate:    a.SampleRate,
	}
	if len(a.Spectrum) > 0 {
		report.NumBands = len(a.Spectrum[0])
	}
	for i, b := range a.Beats {
		report.Beats[i] = b.Time
		report.BeatStrengths[i] = b.Strength
	}
	return json.MarshalIndent(report, "", "  ")
}
