package cli

import "github.com/charmbracelet/lipgloss"

// Shared neon theme colours for consistent branding across CLI and TUI
var (
	// Core accent colours (dim to bright)
	NeonGreen = lipgloss.Color("#00FF88") // Signature green
	NeonTeal  = lipgloss.Color("#00D0A0") // Teal accent
	DeepGreen = lipgloss.Color("#008855") // Dim green

	// Accent colours
	CoolGray = lipgloss.Color("#5F6F68") // Muted gray for subtle text
)
