// Package ui provides the terminal progress display for render jobs.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Neon palette matching the default visualization color.
var (
	neonGreen = lipgloss.Color("#00ff88")
	neonTeal  = lipgloss.Color("#00d0a0")
	coolGray  = lipgloss.Color("#5f6f68")
)

// RenderProgress carries the completed fraction of the render.
type RenderProgress struct {
	Fraction float64
	Spectrum []float64
}

// RenderComplete signals that the output file is finished.
type RenderComplete struct {
	OutputFile  string
	TotalFrames int
	Duration    time.Duration
	FileSize    int64
}

// RenderError signals a failed render; the UI quits after displaying it.
type RenderError struct {
	Err error
}

// Cancelled is sent by the model when the user interrupts the render.
type Cancelled struct{}

// progressQuitMsg fires after the completion screen has been shown.
type progressQuitMsg struct{}

// Model is the bubbletea model for one render job.
type Model struct {
	progressBar progress.Model

	label    string
	fraction float64
	spectrum []float64

	complete *RenderComplete
	err      error

	startTime       time.Time
	completionDelay time.Duration
	width           int
	cancelled       bool

	// Notified once when the user requests cancellation.
	onCancel func()
}

// NewModel creates a progress model. onCancel runs once when the user
// hits ctrl+c; it may be nil.
func NewModel(label string, onCancel func()) *Model {
	bar := progress.New(
		progress.WithGradient(string(neonTeal), string(neonGreen)),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return &Model{
		progressBar:     bar,
		label:           label,
		startTime:       time.Now(),
		completionDelay: time.Second,
		onCancel:        onCancel,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = clampInt(msg.Width-20, 10, 50)
		return m, nil

	case RenderProgress:
		if msg.Fraction > m.fraction {
			m.fraction = msg.Fraction
		}
		if msg.Spectrum != nil {
			m.spectrum = msg.Spectrum
		}
		return m, nil

	case RenderComplete:
		m.complete = &msg
		m.fraction = 1
		return m, tea.Tick(m.completionDelay, func(time.Time) tea.Msg {
			return progressQuitMsg{}
		})

	case RenderError:
		m.err = msg.Err
		return m, tea.Quit

	case progressQuitMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			if m.onCancel != nil {
				m.onCancel()
				m.onCancel = nil
			}
			return m, nil
		}
	}

	return m, nil
}

func (m *Model) View() string {
	if m.err != nil {
		return ""
	}
	if m.complete != nil {
		return m.renderComplete()
	}

	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(neonGreen).Render(m.label))
	s.WriteString("\n\n")

	s.WriteString(m.progressBar.ViewAs(m.fraction))
	s.WriteString(fmt.Sprintf("  %3d%%", int(m.fraction*100)))
	s.WriteString("\n")

	elapsed := time.Since(m.startTime)
	timing := fmt.Sprintf("Elapsed: %s", formatDuration(elapsed))
	if m.fraction > 0.01 {
		eta := time.Duration(float64(elapsed)/m.fraction) - elapsed
		timing += fmt.Sprintf("  │  ETA: %s", formatDuration(eta))
	}
	if m.cancelled {
		timing += "  │  cancelling..."
	}
	s.WriteString(lipgloss.NewStyle().Foreground(coolGray).Render(timing))

	if len(m.spectrum) > 0 {
		s.WriteString("\n\n")
		s.WriteString(renderSpectrum(m.spectrum, clampInt(m.width-8, 16, 64)))
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(neonTeal).
		Padding(1, 2).
		Render(s.String()) + "\n"
}

func (m *Model) renderComplete() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(neonGreen).Render("✓ Render complete"))
	s.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(coolGray)
	s.WriteString(fmt.Sprintf("%s%s\n", label.Render("Output:   "), m.complete.OutputFile))
	s.WriteString(fmt.Sprintf("%s%d frames, %.1fs video\n",
		label.Render("Video:    "), m.complete.TotalFrames, m.complete.Duration.Seconds()))
	if m.complete.FileSize > 0 {
		s.WriteString(fmt.Sprintf("%s%s\n", label.Render("Size:     "), formatBytes(m.complete.FileSize)))
	}
	s.WriteString(fmt.Sprintf("%s%s", label.Render("Took:     "), formatDuration(time.Since(m.startTime))))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(neonGreen).
		Padding(1, 2).
		Render(s.String()) + "\n"
}

// renderSpectrum draws one row of block characters, green-shaded by level.
func renderSpectrum(spectrum []float64, width int) string {
	if len(spectrum) == 0 || width <= 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	shades := []lipgloss.Color{
		lipgloss.Color("#005f3f"),
		lipgloss.Color("#008855"),
		lipgloss.Color("#00b06e"),
		neonTeal,
		neonGreen,
	}

	stride := len(spectrum) / width
	if stride == 0 {
		stride = 1
	}

	var result strings.Builder
	for i := 0; i < len(spectrum) && i/stride < width; i += stride {
		v := spectrum[i]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}

		blockIdx := int(v * float64(len(blocks)-1))
		colorIdx := int(v * float64(len(shades)-1))
		result.WriteString(lipgloss.NewStyle().
			Foreground(shades[colorIdx]).
			Render(string(blocks[blockIdx])))
	}
	return result.String()
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), units[exp])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
