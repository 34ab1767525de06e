package tui

import "github.com/charmbracelet/lipgloss"

// Color palette for the setup wizard and command output
var (
	ColorPrimary   = lipgloss.Color("#2563EB") // Blue - main accent
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan - secondary accent

	ColorSuccess = lipgloss.Color("#22C55E") // Green
	ColorError   = lipgloss.Color("#EF4444") // Red
	ColorWarning = lipgloss.Color("#F59E0B") // Amber

	ColorText   = lipgloss.Color("#F8FAFC") // Bright white
	ColorMuted  = lipgloss.Color("#94A3B8") // Slate gray
	ColorSubtle = lipgloss.Color("#64748B") // Darker gray
)
