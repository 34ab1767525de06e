package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleQuestion = lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true)

	StyleAnswer = lipgloss.NewStyle().
			Foreground(ColorText)
)

const logoASCII = `
 _       _                  _                 _ _       _
(_)_ __ | |_ ___ _ ____   _(_) _____      __ (_) | ___ | |_
| | '_ \| __/ _ \ '__\ \ / / |/ _ \ \ /\ / / | | |/ _ \| __|
| | | | | ||  __/ |   \ V /| |  __/\ V  V /  | | | (_) | |_
|_|_| |_|\__\___|_|    \_/ |_|\___| \_/\_/   |_|_|\___/ \__|`

// Logo returns the styled ASCII banner.
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
