package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/astori/interviewpilot/internal/config"
)

func providerDisplayName(name string) string {
	if display, ok := providerDisplayNames[name]; ok {
		return display
	}
	return name
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// editProviders runs the provider key submenu until the user backs out.
func editProviders(cfg *config.Config) error {
	defaultToExit := false

	for {
		var options []huh.Option[string]
		for _, name := range AllProviders {
			options = append(options, huh.NewOption(formatProviderOption(cfg, name), name))
		}
		options = append(options, huh.NewOption("Done", "back"))

		selected := ""
		if defaultToExit {
			selected = "back"
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Provider Settings").
					Description("Select a provider to configure its API key").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}
		if selected == "back" {
			return nil
		}

		apiKey, err := configureSingleProvider(cfg, selected)
		if err != nil {
			continue
		}
		if apiKey != "" {
			cfg.Providers[selected] = config.ProviderConfig{APIKey: apiKey}
			defaultToExit = true
		}
	}
}

func formatProviderOption(cfg *config.Config, name string) string {
	status := "(not configured)"
	if pc, exists := cfg.Providers[name]; exists && pc.APIKey != "" {
		status = "(configured)"
	}

	switch name {
	case "gemini":
		return fmt.Sprintf("Google Gemini - primary answer generation %s", status)
	case "openai":
		return fmt.Sprintf("OpenAI - fallback answer generation %s", status)
	case "deepgram":
		return fmt.Sprintf("Deepgram - streaming speech recognition %s", status)
	default:
		return fmt.Sprintf("%s %s", name, status)
	}
}

// configureSingleProvider confirms before replacing an existing key, then
// prompts for the new one. Returns empty when the current key is kept.
func configureSingleProvider(cfg *config.Config, providerName string) (string, error) {
	var existingKey string
	if pc, exists := cfg.Providers[providerName]; exists && pc.APIKey != "" {
		existingKey = pc.APIKey
	}

	if existingKey != "" {
		displayName := providerDisplayName(providerName)

		var update bool
		confirmForm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s API Key", displayName)).
					Description(fmt.Sprintf("Current: %s", maskAPIKey(existingKey))).
					Affirmative("Update key").
					Negative("Keep current").
					Value(&update),
			),
		).WithTheme(getTheme())

		if err := confirmForm.Run(); err != nil {
			return "", err
		}
		if !update {
			return "", nil
		}
	}

	return inputAPIKey(providerName)
}

func inputAPIKey(providerName string) (string, error) {
	displayName := providerDisplayName(providerName)

	var apiKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s API Key", displayName)).
				Description(fmt.Sprintf("Enter your %s API key", displayName)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("API key is required")
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return apiKey, nil
}
