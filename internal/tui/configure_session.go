package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/astori/interviewpilot/internal/config"
)

// editSession configures the interview category, answer style and resume.
func editSession(cfg *config.Config) error {
	category := cfg.Session.Category
	style := cfg.Session.AnswerStyle
	resumePath := cfg.Session.Resume

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Interview Category").
				Options(
					huh.NewOption("Technical - engineering and system design questions", "technical"),
					huh.NewOption("HR - behavioral and culture-fit questions", "hr"),
				).
				Value(&category),
			huh.NewSelect[string]().
				Title("Answer Style").
				Options(
					huh.NewOption("Short - 3-4 sentences", "short"),
					huh.NewOption("Medium - about 120 words", "medium"),
					huh.NewOption("Detailed - structured, about 250 words", "detailed"),
				).
				Value(&style),
			huh.NewInput().
				Title("Resume").
				Description("Path to your resume (.pdf, .docx, .txt or .md), optional here, required to run").
				Value(&resumePath).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := os.Stat(s); err != nil {
						return fmt.Errorf("cannot read %s", s)
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.Category = category
	cfg.Session.AnswerStyle = style
	cfg.Session.Resume = resumePath
	return nil
}

func showSummary(cfg *config.Config) (bool, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Capture:   %s\n", cfg.Capture.Backend))
	b.WriteString(fmt.Sprintf("Providers: %s\n", strings.Join(configuredProviders(cfg), ", ")))
	b.WriteString(fmt.Sprintf("Interview: %s, %s answers\n", cfg.Session.Category, cfg.Session.AnswerStyle))
	if cfg.Session.Resume != "" {
		b.WriteString(fmt.Sprintf("Resume:    %s\n", cfg.Session.Resume))
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Description(b.String()).
				Affirmative("Save").
				Negative("Back").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}
