package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/astori/interviewpilot/internal/config"
	"github.com/astori/interviewpilot/internal/deps"
	"github.com/astori/interviewpilot/internal/models/whisper"
)

// editCapture configures the speech recognition backend.
func editCapture(cfg *config.Config) error {
	whisperDesc := "Local whisper.cpp, no API key needed"
	if !deps.CheckWhisperCli().Installed {
		whisperDesc += " (whisper-cli not found on PATH)"
	}

	backend := cfg.Capture.Backend
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Capture Backend").
				Description("How interviewer questions are transcribed").
				Options(
					huh.NewOption("whisper-cpp - "+whisperDesc, "whisper-cpp"),
					huh.NewOption("deepgram - Streaming cloud recognition (API key required)", "deepgram"),
				).
				Value(&backend),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}
	cfg.Capture.Backend = backend

	switch backend {
	case "whisper-cpp":
		return inputModelPath(cfg)
	case "deepgram":
		if _, ok := cfg.Providers["deepgram"]; !ok {
			apiKey, err := inputAPIKey("deepgram")
			if err != nil {
				return err
			}
			cfg.Providers["deepgram"] = config.ProviderConfig{APIKey: apiKey}
		}
	}
	return nil
}

func inputModelPath(cfg *config.Config) error {
	modelPath := cfg.Capture.ModelPath
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Whisper Model").
				Description("Path to a ggml model file, or a model id like base.en (download with: interviewpilot model download base.en)").
				Value(&modelPath).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("model is required for whisper-cpp")
					}
					if _, err := resolveModel(s); err != nil {
						return err
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	resolved, err := resolveModel(modelPath)
	if err != nil {
		return err
	}
	cfg.Capture.ModelPath = resolved
	return nil
}

// resolveModel accepts either a ggml file path or an installed model id.
func resolveModel(s string) (string, error) {
	if _, err := os.Stat(s); err == nil {
		return s, nil
	}
	if path, err := whisper.InstalledPath(s); err == nil {
		return path, nil
	}
	if whisper.Get(s) != nil {
		return "", fmt.Errorf("model %s is not downloaded (run: interviewpilot model download %s)", s, s)
	}
	return "", fmt.Errorf("cannot read %s", s)
}
