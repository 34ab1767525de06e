// Package tui implements the interactive setup wizard.
package tui

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/astori/interviewpilot/internal/config"
)

// ConfigureResult carries the wizard outcome back to the CLI.
type ConfigureResult struct {
	Config    *config.Config
	Cancelled bool
}

// AllProviders lists every provider the wizard can store a key for.
var AllProviders = []string{"gemini", "openai", "deepgram"}

var providerDisplayNames = map[string]string{
	"gemini":   "Google Gemini",
	"openai":   "OpenAI",
	"deepgram": "Deepgram",
}

type configSection string

const (
	sectionProviders   configSection = "providers"
	sectionCapture     configSection = "capture"
	sectionSession     configSection = "session"
	sectionSaveExit    configSection = "save_exit"
	sectionDiscardExit configSection = "discard_exit"
)

// Run starts the setup wizard. A fresh install walks through every section
// in order; an existing config gets the section menu.
func Run(existingConfig *config.Config) (*ConfigureResult, error) {
	cfg := existingConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]config.ProviderConfig)
	}

	if !hasUserChanges(cfg) {
		return runFreshInstall(cfg)
	}
	return runEditExisting(cfg)
}

func hasUserChanges(cfg *config.Config) bool {
	return len(cfg.Providers) > 0 || cfg.Session.Resume != ""
}

func runFreshInstall(cfg *config.Config) (*ConfigureResult, error) {
	clearScreen()
	fmt.Println(Logo())
	fmt.Println()

	if err := editProviders(cfg); err != nil {
		return &ConfigureResult{Cancelled: true}, nil
	}
	if err := editCapture(cfg); err != nil {
		return &ConfigureResult{Cancelled: true}, nil
	}
	if err := editSession(cfg); err != nil {
		return &ConfigureResult{Cancelled: true}, nil
	}

	confirmed, err := showSummary(cfg)
	if err != nil || !confirmed {
		return &ConfigureResult{Cancelled: true}, nil
	}
	return &ConfigureResult{Config: cfg}, nil
}

func runEditExisting(cfg *config.Config) (*ConfigureResult, error) {
	for {
		clearScreen()
		fmt.Println(Logo())
		fmt.Println()

		section, err := selectSection(cfg)
		if err != nil {
			return &ConfigureResult{Cancelled: true}, nil
		}

		switch section {
		case sectionSaveExit:
			confirmed, err := showSummary(cfg)
			if err != nil {
				return &ConfigureResult{Cancelled: true}, nil
			}
			if confirmed {
				return &ConfigureResult{Config: cfg}, nil
			}

		case sectionDiscardExit:
			return &ConfigureResult{Cancelled: true}, nil

		case sectionProviders:
			if err := editProviders(cfg); err != nil {
				continue
			}

		case sectionCapture:
			if err := editCapture(cfg); err != nil {
				continue
			}

		case sectionSession:
			if err := editSession(cfg); err != nil {
				continue
			}
		}
	}
}

func selectSection(cfg *config.Config) (configSection, error) {
	options := []huh.Option[configSection]{
		huh.NewOption(formatProvidersLabel(cfg), sectionProviders),
		huh.NewOption(fmt.Sprintf("Capture (%s)", cfg.Capture.Backend), sectionCapture),
		huh.NewOption(fmt.Sprintf("Interview (%s, %s answers)", cfg.Session.Category, cfg.Session.AnswerStyle), sectionSession),
		huh.NewOption("Save & Exit", sectionSaveExit),
		huh.NewOption("Discard & Exit", sectionDiscardExit),
	}

	var selected configSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[configSection]().
				Title("Configuration Menu").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func formatProvidersLabel(cfg *config.Config) string {
	configured := configuredProviders(cfg)
	if len(configured) == 0 {
		return "Providers (none configured)"
	}
	return fmt.Sprintf("Providers (%s)", strings.Join(configured, ", "))
}

func configuredProviders(cfg *config.Config) []string {
	providers := make([]string, 0, len(cfg.Providers))
	for name, pc := range cfg.Providers {
		if pc.APIKey != "" {
			providers = append(providers, name)
		}
	}
	sort.Strings(providers)
	return providers
}

func clearScreen() {
	termenv.NewOutput(os.Stdout).ClearScreen()
}

func getTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Focused.Base = lipgloss.NewStyle().BorderForeground(ColorPrimary)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(ColorSecondary)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(ColorText)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(ColorMuted)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(ColorSubtle)

	return t
}
