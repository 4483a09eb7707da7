// Package pipeline ties decoding, analysis, rendering, and encoding into
// complete render and analyze operations.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/phobz/visualizer-go/internal/audio"
	"github.com/phobz/visualizer-go/internal/config"
	"github.com/phobz/visualizer-go/internal/design"
	"github.com/phobz/visualizer-go/internal/encoder"
	"github.com/phobz/visualizer-go/internal/render"
)

// beatWindow is how long a beat keeps driving the pulse envelope.
const beatWindow = 0.3

// Analyze decodes an audio file and runs the offline analysis with
// default frame alignment.
func Analyze(path string) (*audio.Analysis, error) {
	cfg := config.NewConfig()

	pcm, err := audio.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return audio.Analyze(pcm.Samples, pcm.SampleRate, cfg.FPS, cfg.BarCount, cfg.FFTSize)
}

// AnalyzeJSON analyzes an audio file and returns the JSON report.
func AnalyzeJSON(path string) ([]byte, error) {
	analysis, err := Analyze(path)
	if err != nil {
		return nil, err
	}
	return audio.MarshalReport(analysis)
}

// Stats summarizes a completed render.
type Stats struct {
	Duration    time.Duration
	TotalFrames int
}

// ProgressFunc receives the completed fraction, non-decreasing in (0, 1],
// after each encoded frame, plus the spectrum of the frame just encoded
// (nil on the final call).
type ProgressFunc func(fraction float64, spectrum []float64)

// Render produces the full visualization video for one audio file.
// progress may be nil.
func Render(ctx context.Context, audioPath, outputPath string, cfg *config.Config, progress ProgressFunc) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pcm, err := audio.ReadAll(audioPath)
	if err != nil {
		return nil, err
	}

	samples := pcm.Samples
	if cfg.MaxDuration > 0 {
		limit := int(cfg.MaxDuration.Seconds() * float64(pcm.SampleRate))
		if limit < len(samples) {
			samples = samples[:limit]
		}
	}

	analysis, err := audio.Analyze(samples, pcm.SampleRate, cfg.FPS, cfg.BarCount, cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	d, err := design.New(cfg.Design, design.Options{
		Mirror:   cfg.Mirror,
		Vertical: cfg.Vertical(),
	})
	if err != nil {
		return nil, err
	}

	renderer, err := render.New(cfg)
	if err != nil {
		return nil, err
	}

	enc, err := encoder.Open(encoder.Config{
		OutputPath: outputPath,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Framerate:  cfg.FPS,
		Bitrate:    cfg.Bitrate,
		Codec:      cfg.Codec,
		AudioPath:  audioPath,
	})
	if err != nil {
		return nil, err
	}

	totalFrames := int(math.Ceil(analysis.Duration * float64(cfg.FPS)))
	if totalFrames < 1 {
		totalFrames = 1
	}

	session := &renderSession{
		cfg:         cfg,
		analysis:    analysis,
		design:      d,
		renderer:    renderer,
		encoder:     enc,
		totalFrames: totalFrames,
		progress:    progress,
	}

	if d.Stateful() {
		err = session.renderSequential(ctx)
	} else {
		err = session.renderParallel(ctx)
	}
	if err != nil {
		enc.Abort()
		return nil, err
	}

	if err := enc.EncodeAudio(); err != nil {
		enc.Abort()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if progress != nil {
		progress(1.0, nil)
	}
	return &Stats{
		Duration:    time.Duration(analysis.Duration * float64(time.Second)),
		TotalFrames: totalFrames,
	}, nil
}

type renderSession struct {
	cfg         *config.Config
	analysis    *audio.Analysis
	design      design.Design
	renderer    *render.Renderer
	encoder     *encoder.Encoder
	totalFrames int
	progress    ProgressFunc
}

// scene builds the per-frame scene for a frame index.
func (s *renderSession) scene(frame int) design.Scene {
	t := float64(frame) / float64(s.cfg.FPS)
	return design.Scene{
		Width:         s.cfg.Width,
		Height:        s.cfg.Height,
		BarCount:      s.cfg.BarCount,
		Glow:          s.cfg.Glow,
		BeatIntensity: s.analysis.BeatIntensity(t, beatWindow),
	}
}

// spectrumAt interpolates the analysis spectra at a fractional frame
// position so frame counts that outrun the analysis stay smooth.
func (s *renderSession) spectrumAt(frame int) []float64 {
	frames := s.analysis.Spectrum
	if len(frames) == 0 {
		return nil
	}

	t := float64(frame) / float64(s.cfg.FPS)
	pos := t / s.analysis.Duration * float64(len(frames)-1)
	if len(frames) == 1 || pos <= 0 {
		return frames[0]
	}
	if pos >= float64(len(frames)-1) {
		return frames[len(frames)-1]
	}

	lo := int(pos)
	frac := pos - float64(lo)
	if frac == 0 {
		return frames[lo]
	}

	a, b := frames[lo], frames[lo+1]
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*frac
	}
	return out
}

// encodeFrame rasterizes and encodes one frame, then reports progress.
func (s *renderSession) encodeFrame(frame int) error {
	spectrum := s.spectrumAt(frame)
	verts := s.design.Vertices(spectrum, s.scene(frame))
	img := s.renderer.RenderFrame(verts)
	err := s.encoder.WriteFrameRGBA(img.Pix)
	s.renderer.ReleaseFrame(img)
	if err != nil {
		return err
	}
	s.reportProgress(frame, spectrum)
	return nil
}

func (s *renderSession) reportProgress(frame int, spectrum []float64) {
	if s.progress != nil {
		s.progress(float64(frame+1)/float64(s.totalFrames+1), spectrum)
	}
}

// renderSequential frames in order. Stateful designs step their
// simulation once per Vertices call, so order is load-bearing here.
func (s *renderSession) renderSequential(ctx context.Context) error {
	for frame := 0; frame < s.totalFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.encodeFrame(frame); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	return nil
}
