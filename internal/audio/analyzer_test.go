package audio

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// TestAnalyze_SineRMS verifies the per-frame RMS of a full-scale sine wave
// is close to the theoretical 1/sqrt(2).
func TestAnalyze_SineRMS(t *testing.T) {
	const sampleRate = 44100

	sine := Sine(440, 1.0, 2.0, sampleRate)
	analysis, err := Analyze(sine, sampleRate, 30, 32, 2048)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	expected := 1 / math.Sqrt2
	for i, rms := range analysis.RMS {
		if math.Abs(rms-expected) > 0.02 {
			t.Errorf("Frame %d RMS: got %.4f, want ~%.4f", i, rms, expected)
			break
		}
	}
	t.Logf("Analyzed %d frames, duration %.2fs", analysis.NumFrames(), analysis.Duration)
}

// TestAnalyze_FrameCount verifies frame alignment with the output frame
// rate.
func TestAnalyze_FrameCount(t *testing.T) {
	const sampleRate = 44100

	sine := Sine(440, 0.5, 2.0, sampleRate)
	analysis, err := Analyze(sine, sampleRate, 30, 32, 2048)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := len(sine) / (sampleRate / 30)
	if analysis.NumFrames() != want {
		t.Errorf("Frame count: got %d, want %d", analysis.NumFrames(), want)
	}
	if len(analysis.Spectrum) != analysis.NumFrames() {
		t.Errorf("Spectrum frames %d != RMS frames %d", len(analysis.Spectrum), analysis.NumFrames())
	}
	for i, bands := range analysis.Spectrum {
		if len(bands) != 32 {
			t.Fatalf("Frame %d: got %d bands, want 32", i, len(bands))
		}
	}
}

// TestAnalyze_Silence verifies silence analyzes without error: zero beats,
// zero BPM, zero levels.
func TestAnalyze_Silence(t *testing.T) {
	silence := make([]float64, 44100)
	analysis, err := Analyze(silence, 44100, 30, 32, 2048)
	if err != nil {
		t.Fatalf("Analyze of silence failed: %v", err)
	}

	if len(analysis.Beats) != 0 {
		t.Errorf("Silence produced %d beats, want 0", len(analysis.Beats))
	}
	if analysis.BPM != 0 {
		t.Errorf("Silence BPM: got %.2f, want 0", analysis.BPM)
	}
	for i, rms := range analysis.RMS {
		if rms != 0 {
			t.Errorf("Frame %d RMS: got %.6f for silence", i, rms)
			break
		}
	}
}

// TestAnalyze_TooShort verifies input shorter than one FFT window is
// rejected with ErrAnalysisFailed.
func TestAnalyze_TooShort(t *testing.T) {
	_, err := Analyze(make([]float64, 100), 44100, 30, 32, 2048)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Errorf("Got %v, want ErrAnalysisFailed", err)
	}
}

// TestDetectBeats_ClickTrack verifies the detector finds regular onsets in
// a bare click track and spaces them by the click interval.
func TestDetectBeats_ClickTrack(t *testing.T) {
	const (
		sampleRate = 44100
		bpm        = 120.0
		duration   = 5.0
	)

	clicks := ClickTrack(bpm, 100, duration, sampleRate)
	beats := DetectBeats(clicks, sampleRate, DefaultSensitivity)

	wantBeats := int(duration * bpm / 60)
	if len(beats) < wantBeats-1 || len(beats) > wantBeats+1 {
		t.Fatalf("Expected %d±1 beats in %vs at %v BPM, got %d", wantBeats, duration, bpm, len(beats))
	}

	// Clicks land every half second at 120 BPM.
	for i := 1; i < len(beats); i++ {
		interval := beats[i].Time - beats[i-1].Time
		nearest := math.Round(interval*2) / 2
		if nearest == 0 || math.Abs(interval-nearest) > 0.1 {
			t.Errorf("Beat interval %d: %.3fs not near a multiple of 0.5s", i, interval)
		}
	}

	for i, b := range beats {
		if b.Strength < 0 || b.Strength > 1 {
			t.Errorf("Beat %d strength out of range: %.3f", i, b.Strength)
		}
	}
	t.Logf("Detected %d beats, first at %.3fs", len(beats), beats[0].Time)
}

// TestDetectBeats_Deterministic verifies repeated runs over the same
// samples produce identical results.
func TestDetectBeats_Deterministic(t *testing.T) {
	clicks := TestBeat(128, 4.0, 44100)

	a := DetectBeats(clicks, 44100, DefaultSensitivity)
	b := DetectBeats(clicks, 44100, DefaultSensitivity)

	if len(a) != len(b) {
		t.Fatalf("Run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Beat %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestDetectBeats_ShortInput verifies input below one analysis window
// yields no beats rather than a panic.
func TestDetectBeats_ShortInput(t *testing.T) {
	beats := DetectBeats(make([]float64, 100), 44100, DefaultSensitivity)
	if len(beats) != 0 {
		t.Errorf("Got %d beats from 100 samples, want 0", len(beats))
	}
}

// TestEstimateBPM verifies tempo estimation from synthetic beat lists.
func TestEstimateBPM(t *testing.T) {
	makeBeats := func(interval float64, count int) []Beat {
		beats := make([]Beat, count)
		for i := range beats {
			beats[i] = Beat{Time: float64(i) * interval, Strength: 1}
		}
		return beats
	}

	tests := []struct {
		name  string
		beats []Beat
		want  float64
	}{
		{"120 BPM", makeBeats(0.5, 10), 120},
		{"90 BPM", makeBeats(60.0/90, 10), 90},
		{"too slow doubles", makeBeats(1.5, 10), 80},
		{"no beats", nil, 0},
		{"single beat", makeBeats(0.5, 1), 0},
		{"all intervals out of range", makeBeats(3.0, 5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateBPM(tt.beats)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("EstimateBPM: got %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

// TestEstimateBPM_FromClickTrack verifies the end to end tempo estimate on
// a bare 120 BPM click track: 100 Hz clicks sit squarely in the bass band
// with nothing else competing for onset energy.
func TestEstimateBPM_FromClickTrack(t *testing.T) {
	const (
		sampleRate = 44100
		bpm        = 120.0
		duration   = 5.0
	)

	clicks := ClickTrack(bpm, 100, duration, sampleRate)
	beats := DetectBeats(clicks, sampleRate, DefaultSensitivity)

	// 10 clicks land in 5 seconds at 120 BPM. The first, at t=0, sits on
	// the edge of the analysis window and may be missed.
	wantBeats := int(duration * bpm / 60)
	if len(beats) < wantBeats-1 || len(beats) > wantBeats+1 {
		t.Errorf("Detected %d beats, want %d±1", len(beats), wantBeats)
	}

	got := EstimateBPM(beats)
	if math.Abs(got-bpm) > 2 {
		t.Errorf("Estimated %.2f BPM from a %v BPM click track", got, bpm)
	}
	t.Logf("Estimated tempo: %.2f BPM from %d beats", got, len(beats))
}

// TestBeatIntensity verifies the envelope decays from beat time and
// ignores beats outside the window.
func TestBeatIntensity(t *testing.T) {
	a := &Analysis{Beats: []Beat{{Time: 1.0, Strength: 1.0}}}

	atBeat := a.BeatIntensity(1.0, 0.3)
	if math.Abs(atBeat-1.0) > 1e-9 {
		t.Errorf("Intensity at beat time: got %.4f, want 1.0", atBeat)
	}

	mid := a.BeatIntensity(1.15, 0.3)
	if mid <= 0 || mid >= atBeat {
		t.Errorf("Mid-window intensity %.4f should decay from %.4f but stay positive", mid, atBeat)
	}

	if got := a.BeatIntensity(1.5, 0.3); got != 0 {
		t.Errorf("Intensity past window: got %.4f, want 0", got)
	}
	if got := a.BeatIntensity(0.5, 0.3); got != 0 {
		t.Errorf("Intensity before first beat: got %.4f, want 0", got)
	}
}

// TestMarshalReport verifies the JSON report shape.
func TestMarshalReport(t *testing.T) {
	a := &Analysis{
		Duration:   4.5,
		BPM:        120,
		Beats:      []Beat{{Time: 0.5, Strength: 1}, {Time: 1.0, Strength: 0.8}},
		RMS:        []float64{0.1, 0.2},
		Spectrum:   [][]float64{{0, 1}, {1, 0}},
		SampleRate: 44100,
		FrameRate:  30,
	}

	data, err := MarshalReport(a)
	if err != nil {
		t.Fatalf("MarshalReport failed: %v", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if report.Duration != 4.5 || report.BPM != 120 {
		t.Errorf("Report header: got %+v", report)
	}
	if len(report.Beats) != 2 || report.Beats[0] != 0.5 || report.Beats[1] != 1.0 {
		t.Errorf("Report beats: got %v, want [0.5 1]", report.Beats)
	}
	if len(report.BeatStrengths) != 2 || report.BeatStrengths[1] != 0.8 {
		t.Errorf("Report beat strengths: got %v, want [1 0.8]", report.BeatStrengths)
	}
	if report.NumBands != 2 || report.FrameRate != 30 || report.SampleRate != 44100 {
		t.Errorf("Report metadata: got %+v", report)
	}
}
