package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/phobz/visualizer-go/internal/cli"
	"github.com/phobz/visualizer-go/internal/config"
	"github.com/phobz/visualizer-go/internal/design"
	"github.com/phobz/visualizer-go/internal/encoder"
	"github.com/phobz/visualizer-go/internal/pipeline"
	"github.com/phobz/visualizer-go/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "v0.1.0")
var version = "dev"

var CLI struct {
	Render    RenderCmd    `cmd:"" default:"withargs" help:"Render a visualization video from an audio file."`
	Analyze   AnalyzeCmd   `cmd:"" help:"Analyze an audio file and print the results."`
	Designs   DesignsCmd   `cmd:"" help:"List the available visualization designs."`
	Platforms PlatformsCmd `cmd:"" help:"List the platform presets."`

	Version kong.VersionFlag `help:"Show version information."`
}

type RenderCmd struct {
	Input  string `arg:"" name:"input" help:"Input audio file (wav, mp3, flac, ogg, m4a)." type:"existingfile"`
	Output string `arg:"" name:"output" optional:"" help:"Output video file. Defaults to the input name with the codec's extension."`

	Platform        string        `help:"Platform preset (see the platforms command)." placeholder:"NAME"`
	Width           int           `help:"Output width in pixels." placeholder:"PX"`
	Height          int           `help:"Output height in pixels." placeholder:"PX"`
	FPS             int           `help:"Output frame rate." placeholder:"N"`
	Format          string        `help:"Output codec: h264, prores4444 or vp9." placeholder:"CODEC"`
	Transparent     bool          `help:"Render with a transparent background (prores4444 and vp9 only)."`
	Color           string        `help:"Bar color as hex, e.g. #00ff88." placeholder:"HEX"`
	Background      string        `help:"Background color as hex." placeholder:"HEX"`
	Bars            int           `help:"Number of frequency bars." placeholder:"N"`
	Mirror          bool          `help:"Mirror the bars around the center."`
	Glow            bool          `default:"true" negatable:"" help:"Draw the glow skirt around bars."`
	Design          string        `help:"Visualization design (see the designs command)." placeholder:"NAME"`
	Title           string        `help:"Title text drawn near the bottom of the frame."`
	Font            string        `help:"TTF font file for the title." placeholder:"FILE"`
	BackgroundImage string        `help:"Image drawn behind the visualization." placeholder:"FILE"`
	Bitrate         int64         `help:"Video bitrate in bits per second." placeholder:"BPS"`
	Duration        time.Duration `help:"Truncate the output to this duration." placeholder:"30s"`
	NoUI            bool          `help:"Disable the interactive progress display."`
}

func (r *RenderCmd) Run() error {
	cfg, err := r.buildConfig()
	if err != nil {
		return err
	}

	output := r.Output
	if output == "" {
		base := strings.TrimSuffix(r.Input, filepath.Ext(r.Input))
		output = base + cfg.Codec.Extension()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if r.NoUI {
		return r.renderPlain(ctx, output, &cfg)
	}
	return r.renderWithUI(ctx, stop, output, &cfg)
}

// buildConfig layers the CLI flags over the defaults. The platform preset
// applies first so explicit dimension flags win.
func (r *RenderCmd) buildConfig() (config.Config, error) {
	cfg := config.NewConfig()

	if r.Platform != "" {
		p, err := config.LookupPlatform(r.Platform)
		if err != nil {
			return cfg, err
		}
		p.Apply(&cfg)
	}

	if r.Width > 0 {
		cfg.Width = r.Width
	}
	if r.Height > 0 {
		cfg.Height = r.Height
	}
	if r.FPS > 0 {
		cfg.FPS = r.FPS
	}
	if r.Bars > 0 {
		cfg.BarCount = r.Bars
	}
	if r.Bitrate > 0 {
		cfg.Bitrate = r.Bitrate
	}
	if r.Duration > 0 && (cfg.MaxDuration == 0 || r.Duration < cfg.MaxDuration) {
		cfg.MaxDuration = r.Duration
	}

	if r.Format != "" {
		codec, err := encoder.ParseCodec(r.Format)
		if err != nil {
			return cfg, err
		}
		cfg.Codec = codec
	}
	if r.Design != "" {
		d, err := design.Parse(r.Design)
		if err != nil {
			return cfg, err
		}
		cfg.Design = d
	}
	if r.Color != "" {
		c, err := config.ParseHexColor(r.Color)
		if err != nil {
			return cfg, err
		}
		cfg.Color = c
	}
	if r.Background != "" {
		c, err := config.ParseHexColor(r.Background)
		if err != nil {
			return cfg, err
		}
		cfg.Background = c
	}

	cfg.Transparent = r.Transparent
	cfg.Mirror = r.Mirror
	cfg.Glow = r.Glow
	cfg.Title = r.Title
	cfg.FontPath = r.Font
	cfg.BackgroundImage = r.BackgroundImage

	return cfg, cfg.Validate()
}

func (r *RenderCmd) renderPlain(ctx context.Context, output string, cfg *config.Config) error {
	start := time.Now()
	stats, err := pipeline.Render(ctx, r.Input, output, cfg, nil)
	if err != nil {
		return err
	}

	var size int64
	if info, statErr := os.Stat(output); statErr == nil {
		size = info.Size()
	}
	cli.PrintSuccess(fmt.Sprintf("Wrote %s (%d frames, %s audio, %s) in %s",
		output, stats.TotalFrames,
		cli.FormatDuration(stats.Duration),
		cli.FormatBytes(size),
		cli.FormatDuration(time.Since(start))))
	return nil
}

func (r *RenderCmd) renderWithUI(ctx context.Context, cancel func(), output string, cfg *config.Config) error {
	model := ui.NewModel(fmt.Sprintf("Rendering %s", filepath.Base(r.Input)), cancel)
	p := tea.NewProgram(model)

	var renderErr error
	go func() {
		stats, err := pipeline.Render(ctx, r.Input, output, cfg, func(fraction float64, spectrum []float64) {
			p.Send(ui.RenderProgress{Fraction: fraction, Spectrum: spectrum})
		})
		if err != nil {
			renderErr = err
			p.Send(ui.RenderError{Err: err})
			return
		}

		var size int64
		if info, statErr := os.Stat(output); statErr == nil {
			size = info.Size()
		}
		p.Send(ui.RenderComplete{
			OutputFile:  output,
			TotalFrames: stats.TotalFrames,
			Duration:    stats.Duration,
			FileSize:    size,
		})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	if renderErr != nil {
		if errors.Is(renderErr, context.Canceled) {
			return errors.New("render cancelled")
		}
		return renderErr
	}
	return nil
}

type AnalyzeCmd struct {
	Input  string `arg:"" name:"input" help:"Input audio file." type:"existingfile"`
	Output string `help:"Write the full report as JSON to this file instead of printing a summary." placeholder:"FILE"`
}

func (a *AnalyzeCmd) Run() error {
	if a.Output != "" {
		report, err := pipeline.AnalyzeJSON(a.Input)
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Output, report, 0o644); err != nil {
			return err
		}
		cli.PrintSuccess(fmt.Sprintf("Wrote analysis to %s", a.Output))
		return nil
	}

	analysis, err := pipeline.Analyze(a.Input)
	if err != nil {
		return err
	}

	cli.PrintAnalysisSummary(
		fmt.Sprintf("%.1fs", analysis.Duration),
		fmt.Sprintf("%.1f", analysis.BPM),
		fmt.Sprintf("%d", len(analysis.Beats)),
		fmt.Sprintf("%d", analysis.NumFrames()),
	)
	return nil
}

type DesignsCmd struct{}

func (DesignsCmd) Run() error {
	cli.PrintSection("Designs")
	for _, d := range design.List() {
		cli.PrintInfo(fmt.Sprintf("%-18s", d.Name), d.Description)
	}
	return nil
}

type PlatformsCmd struct{}

func (PlatformsCmd) Run() error {
	cli.PrintSection("Platforms")
	for _, p := range config.Platforms() {
		limit := "no limit"
		if p.MaxDuration > 0 {
			limit = fmt.Sprintf("max %s", cli.FormatDuration(p.MaxDuration))
		}
		cli.PrintInfo(fmt.Sprintf("%-19s", p.Name),
			fmt.Sprintf("%dx%d @ %d fps, %s", p.Width, p.Height, p.FPS, limit))
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("phobzviz"),
		kong.Description("Render audio-reactive visualization videos from music files."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
