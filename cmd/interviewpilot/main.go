package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/astori/interviewpilot/internal/config"
	"github.com/astori/interviewpilot/internal/deps"
	"github.com/astori/interviewpilot/internal/generation"
	"github.com/astori/interviewpilot/internal/models/whisper"
	"github.com/astori/interviewpilot/internal/recording"
	"github.com/astori/interviewpilot/internal/resume"
	"github.com/astori/interviewpilot/internal/session"
	"github.com/astori/interviewpilot/internal/transcriber"
	"github.com/astori/interviewpilot/internal/tui"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "interviewpilot",
	Short:         "AI-powered interview copilot",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(
		listenCmd(),
		askCmd(),
		answerCmd(),
		followupCmd(),
		doctorCmd(),
		configureCmd(),
		modelCmd(),
		versionCmd(),
	)
}

func listenCmd() *cobra.Command {
	var resumeFlag, styleFlag string
	var followupFlag bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Capture interviewer questions from the microphone and answer them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListen(resumeFlag, styleFlag, followupFlag)
		},
	}

	cmd.Flags().StringVar(&resumeFlag, "resume", "", "path to your resume (overrides session.resume)")
	cmd.Flags().StringVar(&styleFlag, "style", "", "answer style: short, medium, detailed")
	cmd.Flags().BoolVar(&followupFlag, "followup", false, "append a likely follow-up question to each answer")

	return cmd
}

func runListen(resumeFlag, styleFlag string, followupFlag bool) error {
	manager, err := config.NewManager()
	if err != nil {
		return reportError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := manager.StartWatching(ctx); err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	defer manager.Stop()

	cfg := manager.GetConfig()
	sess, err := newSession(ctx, cfg, resumeFlag)
	if err != nil {
		return reportError(err)
	}
	opts, err := answerOptions(cfg, styleFlag, followupFlag)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(tui.StyleMuted.Render("Listening for questions. Ctrl+C to stop."))

	for ctx.Err() == nil {
		cfg = manager.GetConfig()

		question, err := captureQuestion(ctx, cfg)
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			fmt.Println(tui.StyleWarning.Render(fmt.Sprintf("capture failed: %v", err)))
			continue
		}
		if question == "" {
			fmt.Println(tui.StyleMuted.Render("(no speech detected)"))
			continue
		}

		fmt.Println()
		fmt.Println(tui.StyleQuestion.Render("Q: " + question))
		streamAnswer(ctx, sess, question, opts)
	}

	fmt.Println()
	return nil
}

func captureQuestion(ctx context.Context, cfg *config.Config) (string, error) {
	recognizer, err := transcriber.NewRecognizer(cfg.ToRecognizerConfig())
	if err != nil {
		return "", err
	}
	recorder := recording.NewRecorder(cfg.ToRecordingConfig())

	t := transcriber.New(recognizer, recorder)
	return t.ListenOnce(ctx, cfg.ToCaptureOptions())
}

func askCmd() *cobra.Command {
	var resumeFlag, styleFlag string
	var questionOnly bool

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Simulate an interviewer question and answer it (practice mode)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), resumeFlag, styleFlag, questionOnly)
		},
	}

	cmd.Flags().StringVar(&resumeFlag, "resume", "", "path to your resume (overrides session.resume)")
	cmd.Flags().StringVar(&styleFlag, "style", "", "answer style: short, medium, detailed")
	cmd.Flags().BoolVar(&questionOnly, "question-only", false, "print the question without answering it")

	return cmd
}

func runAsk(ctx context.Context, resumeFlag, styleFlag string, questionOnly bool) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return reportError(err)
	}
	sess, err := newSession(ctx, cfg, resumeFlag)
	if err != nil {
		return reportError(err)
	}

	question, err := sess.AskQuestion(ctx)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(tui.StyleQuestion.Render("Q: " + question))
	if questionOnly {
		return nil
	}

	opts, err := answerOptions(cfg, styleFlag, false)
	if err != nil {
		return reportError(err)
	}
	streamAnswer(ctx, sess, question, opts)
	return nil
}

func answerCmd() *cobra.Command {
	var resumeFlag, styleFlag string
	var followupFlag bool

	cmd := &cobra.Command{
		Use:   "answer <question>",
		Short: "Generate an answer for a question you type in",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnswer(cmd.Context(), strings.Join(args, " "), resumeFlag, styleFlag, followupFlag)
		},
	}

	cmd.Flags().StringVar(&resumeFlag, "resume", "", "path to your resume (overrides session.resume)")
	cmd.Flags().StringVar(&styleFlag, "style", "", "answer style: short, medium, detailed")
	cmd.Flags().BoolVar(&followupFlag, "followup", false, "append a likely follow-up question to the answer")

	return cmd
}

func runAnswer(ctx context.Context, question, resumeFlag, styleFlag string, followupFlag bool) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return reportError(err)
	}
	sess, err := newSession(ctx, cfg, resumeFlag)
	if err != nil {
		return reportError(err)
	}
	opts, err := answerOptions(cfg, styleFlag, followupFlag)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(tui.StyleQuestion.Render("Q: " + question))
	streamAnswer(ctx, sess, question, opts)
	return nil
}

func followupCmd() *cobra.Command {
	var resumeFlag string

	cmd := &cobra.Command{
		Use:   "followup <question> <answer>",
		Short: "Suggest the interviewer's likely next question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollowup(cmd.Context(), args[0], args[1], resumeFlag)
		},
	}

	cmd.Flags().StringVar(&resumeFlag, "resume", "", "path to your resume (overrides session.resume)")

	return cmd
}

func runFollowup(ctx context.Context, question, answer, resumeFlag string) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return reportError(err)
	}
	sess, err := newSession(ctx, cfg, resumeFlag)
	if err != nil {
		return reportError(err)
	}

	followup, err := sess.SuggestFollowUp(ctx, question, answer)
	if err != nil {
		return reportError(err)
	}

	fmt.Println(tui.StyleQuestion.Render("Next: " + followup))
	return nil
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor()
		},
	}
}

func runDoctor() error {
	fmt.Println("External tools:")
	for _, tool := range deps.Tools() {
		status := tool.Check()
		switch {
		case status.Installed && status.Version != "":
			fmt.Printf("  %s %-12s %s (%s)\n", tui.StyleSuccess.Render("[x]"), tool.Name, tool.Purpose, status.Version)
		case status.Installed:
			fmt.Printf("  %s %-12s %s\n", tui.StyleSuccess.Render("[x]"), tool.Name, tool.Purpose)
		case tool.Optional:
			fmt.Printf("  %s %-12s %s (not found, optional)\n", tui.StyleWarning.Render("[ ]"), tool.Name, tool.Purpose)
		default:
			fmt.Printf("  %s %-12s %s (not found)\n", tui.StyleError.Render("[ ]"), tool.Name, tool.Purpose)
		}
	}

	fmt.Println()
	cfg, err := loadValidConfig()
	if err != nil {
		fmt.Printf("Configuration: %s\n", tui.StyleError.Render(err.Error()))
		return nil
	}
	fmt.Printf("Configuration: %s\n", tui.StyleSuccess.Render("ok"))

	if ok, reason := transcriber.Availability(cfg.ToRecognizerConfig()); !ok {
		fmt.Printf("Capture (%s): %s\n", cfg.Capture.Backend, tui.StyleWarning.Render(reason))
	} else {
		fmt.Printf("Capture (%s): %s\n", cfg.Capture.Backend, tui.StyleSuccess.Render("ok"))
	}

	fmt.Printf("Generation: %s\n", strings.Join(cfg.GenerationProviders(), " -> "))
	return nil
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard.
This will guide you through setting up:
- Provider API keys (Gemini, OpenAI, Deepgram)
- Speech capture backend
- Interview category, answer style and resume`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = config.DefaultConfig()
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved."))
	fmt.Printf("Config file location: %s\n", configPath)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Check your setup: interviewpilot doctor")
	fmt.Println("  2. Practice a question: interviewpilot ask")
	fmt.Println("  3. Go live: interviewpilot listen")
	return nil
}

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage local whisper models",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List available whisper models",
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, m := range whisper.List() {
					mark := "[ ]"
					if whisper.IsInstalled(m.ID) {
						mark = "[x]"
					}
					line := fmt.Sprintf("  %s %-10s %s", mark, m.ID, m.Size)
					if m.Multilingual {
						line += " (multilingual)"
					}
					fmt.Println(line)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "download <model>",
			Short: "Download a whisper model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runModelDownload(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "remove <model>",
			Short: "Remove a downloaded whisper model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := whisper.Remove(args[0]); err != nil {
					return err
				}
				fmt.Printf("model %s removed\n", args[0])
				return nil
			},
		},
	)

	return cmd
}

func runModelDownload(ctx context.Context, modelID string) error {
	if whisper.IsInstalled(modelID) {
		fmt.Printf("model %s is already installed at %s\n", modelID, whisper.Path(modelID))
		return nil
	}

	info := whisper.Get(modelID)
	if info == nil {
		return fmt.Errorf("unknown model: %s", modelID)
	}
	fmt.Printf("downloading %s (%s)...\n", modelID, info.Size)

	var lastPercent int
	err := whisper.Download(ctx, modelID, func(downloaded, total int64) {
		if total > 0 {
			percent := int(downloaded * 100 / total)
			if percent >= lastPercent+10 {
				fmt.Printf("%d%% ", percent)
				lastPercent = percent
			}
		}
	})
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Printf("\ndownload complete: %s\n", whisper.Path(modelID))
	fmt.Printf("set capture.model_path = %q or re-run interviewpilot configure\n", whisper.Path(modelID))
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("interviewpilot %s\n", version)
			return nil
		},
	}
}

func loadValidConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSession wires resume extraction, the generator chain and the ledger
// store into a fresh session.
func newSession(ctx context.Context, cfg *config.Config, resumeFlag string) (*session.Session, error) {
	resumePath := resumeFlag
	if resumePath == "" {
		resumePath = cfg.Session.Resume
	}
	if resumePath == "" {
		return nil, fmt.Errorf("resume required: pass --resume or set session.resume in the config")
	}

	resumeContext, err := resume.Load(ctx, resumePath)
	if err != nil {
		return nil, err
	}

	category, err := session.ParseCategory(cfg.Session.Category)
	if err != nil {
		return nil, err
	}

	generator, err := buildGenerator(cfg)
	if err != nil {
		return nil, err
	}

	ledgerPath := cfg.Session.Ledger
	if ledgerPath == "" {
		ledgerPath, err = config.DefaultLedgerPath()
		if err != nil {
			return nil, err
		}
	}

	return session.New(generator, session.NewFileStore(ledgerPath), resumeContext, category), nil
}

func buildGenerator(cfg *config.Config) (*generation.Resilient, error) {
	var backends []generation.Backend
	for _, provider := range cfg.GenerationProviders() {
		switch provider {
		case "gemini":
			backend, err := generation.NewGeminiBackend(cfg.APIKey("gemini"), cfg.Generation.GeminiModel)
			if err != nil {
				return nil, err
			}
			backends = append(backends, backend)
		case "openai":
			backend, err := generation.NewOpenAIBackend(cfg.APIKey("openai"), cfg.Generation.OpenAIModel)
			if err != nil {
				return nil, err
			}
			backends = append(backends, backend)
		default:
			return nil, fmt.Errorf("unknown generation provider: %s", provider)
		}
	}
	return generation.NewResilient(cfg.ToRetryPolicy(), backends...)
}

func answerOptions(cfg *config.Config, styleFlag string, followupFlag bool) (session.AnswerOptions, error) {
	raw := styleFlag
	if raw == "" {
		raw = cfg.Session.AnswerStyle
	}
	style, err := session.ParseStyle(raw)
	if err != nil {
		return session.AnswerOptions{}, err
	}
	return session.AnswerOptions{Style: style, IncludeFollowUp: followupFlag}, nil
}

// streamAnswer prints the answer as it arrives. Generator failures are
// reported but never abort the command.
func streamAnswer(ctx context.Context, sess *session.Session, question string, opts session.AnswerOptions) {
	ch, err := sess.StreamAnswer(ctx, question, opts)
	if err != nil {
		printGenerationFailure(err)
		return
	}

	wrote := false
	for chunk := range ch {
		if chunk.Err != nil {
			if wrote {
				fmt.Println()
			}
			printGenerationFailure(chunk.Err)
			return
		}
		fmt.Print(tui.StyleAnswer.Render(chunk.Text))
		wrote = true
	}
	fmt.Println()
}

func printGenerationFailure(err error) {
	if generation.IsConfigError(err) {
		fmt.Println(tui.StyleError.Render("configuration error: " + generation.Remediation(err)))
		return
	}
	fmt.Println(tui.StyleWarning.Render("service busy, try again"))
}

// reportError prints a friendly message and hands the error back for the
// exit code; cobra is silenced so nothing prints twice.
func reportError(err error) error {
	if err == nil {
		return nil
	}
	if generation.IsConfigError(err) {
		fmt.Println(tui.StyleError.Render("configuration error: " + generation.Remediation(err)))
	} else {
		fmt.Println(tui.StyleError.Render(err.Error()))
	}
	return err
}
