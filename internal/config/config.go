// Package config holds the render configuration, colour parsing and the
// platform presets shared by the CLI and the pipeline.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/phobz/visualizer-go/internal/design"
	"github.com/phobz/visualizer-go/internal/encoder"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Default render parameters, applied by NewConfig.
const (
	DefaultWidth    = 1920
	DefaultHeight   = 1080
	DefaultFPS      = 30
	DefaultBarCount = 64
	DefaultBitrate  = 8_000_000
	DefaultFFTSize  = 2048
)

// Config describes a single render job. Zero values are not usable,
// construct via NewConfig and override fields before calling Validate.
type Config struct {
	Width    int
	Height   int
	FPS      int
	BarCount int
	Bitrate  int64
	FFTSize  int

	Design design.Type
	Mirror bool
	Glow   bool

	Color      Color
	Background Color

	Codec       encoder.Codec
	Transparent bool

	// Optional overlays.
	Title           string
	FontPath        string
	BackgroundImage string

	// MaxDuration truncates the output when positive.
	MaxDuration time.Duration
}

// NewConfig returns a config with the standard defaults: 1080p at 30 fps,
// 64 bars, H.264, green bars on a black background, glow enabled.
func NewConfig() Config {
	return Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FPS:        DefaultFPS,
		BarCount:   DefaultBarCount,
		Bitrate:    DefaultBitrate,
		FFTSize:    DefaultFFTSize,
		Design:     design.Bars,
		Glow:       true,
		Color:      Color{R: 0, G: 1, B: 0.53, A: 1},
		Background: Color{R: 0, G: 0, B: 0, A: 1},
		Codec:      encoder.CodecH264,
	}
}

// Vertical reports whether bar designs should grow horizontally, which is
// the case for portrait outputs.
func (c Config) Vertical() bool {
	return c.Height > c.Width
}

// Validate checks every field and reports the first problem found. It is
// called before any decoding or encoding work starts so bad settings fail
// immediately.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be even for video encoding", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d must be positive", ErrInvalidConfig, c.FPS)
	}
	if c.BarCount <= 0 {
		return fmt.Errorf("%w: bar count %d must be positive", ErrInvalidConfig, c.BarCount)
	}
	if c.Bitrate <= 0 {
		return fmt.Errorf("%w: bitrate %d must be positive", ErrInvalidConfig, c.Bitrate)
	}
	if c.FFTSize <= 0 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: fft size %d must be a power of two", ErrInvalidConfig, c.FFTSize)
	}
	if !c.Design.Valid() {
		return fmt.Errorf("%w: unknown design %d", ErrInvalidConfig, c.Design)
	}
	if !c.Codec.Valid() {
		return fmt.Errorf("%w: unknown codec %d", ErrInvalidConfig, c.Codec)
	}
	if c.Transparent && !c.Codec.SupportsAlpha() {
		return fmt.Errorf("%w: codec %s has no alpha channel, use prores4444 or vp9",
			encoder.ErrUnsupportedCodec, c.Codec)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("%w: max duration must not be negative", ErrInvalidConfig)
	}
	if c.FontPath != "" {
		if _, err := os.Stat(c.FontPath); err != nil {
			return fmt.Errorf("%w: font file %s: %v", ErrInvalidConfig, c.FontPath, err)
		}
	}
	if c.BackgroundImage != "" {
		if _, err := os.Stat(c.BackgroundImage); err != nil {
			return fmt.Errorf("%w: background image %s: %v", ErrInvalidConfig, c.BackgroundImage, err)
		}
	}
	return nil
}
