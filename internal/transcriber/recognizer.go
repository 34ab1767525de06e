package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Result is a single recognizer output. Partial results may be revised by
// later results; final results will not change within the current utterance.
type Result struct {
	Text  string
	Final bool
	Err   error
}

// Recognizer is a speech-to-text backend for one utterance. Accept feeds raw
// PCM (s16le mono 16 kHz); recognized text comes back on Results. Finalize
// flushes pending audio and commits the remaining results before Close.
type Recognizer interface {
	Start(ctx context.Context) error
	Accept(pcm []byte) error
	Results() <-chan Result
	Finalize(ctx context.Context) error
	Close() error
}

// Backend identifies a recognizer variant. The set is closed: adding a
// backend means adding a case to NewRecognizer and Availability.
type Backend string

const (
	// BackendWhisperCpp runs a local whisper.cpp model via whisper-cli.
	BackendWhisperCpp Backend = "whisper-cpp"
	// BackendDeepgram streams audio to Deepgram over a websocket.
	BackendDeepgram Backend = "deepgram"
)

type Config struct {
	Backend  Backend
	Language string

	// whisper-cpp
	ModelPath string
	Threads   int

	// deepgram
	APIKey string
	Model  string
}

// NewRecognizer builds a recognizer for the configured backend. Missing
// prerequisites fail here, before any audio hardware is touched.
func NewRecognizer(cfg Config) (Recognizer, error) {
	if ok, reason := Availability(cfg); !ok {
		return nil, fmt.Errorf("speech capture unavailable: %s", reason)
	}

	switch cfg.Backend {
	case BackendWhisperCpp:
		return newWhisperCppRecognizer(cfg.ModelPath, cfg.Language, cfg.Threads), nil
	case BackendDeepgram:
		return newDeepgramRecognizer(cfg.APIKey, cfg.Model, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unsupported capture backend: %q", cfg.Backend)
	}
}

// Availability reports whether the configured backend's prerequisites are
// satisfied, with a human-readable reason when they are not. Callers use this
// to gate the listen affordance instead of failing mid-utterance.
func Availability(cfg Config) (bool, string) {
	switch cfg.Backend {
	case BackendWhisperCpp:
		if _, err := exec.LookPath("whisper-cli"); err != nil {
			return false, "whisper-cli not found: install whisper.cpp"
		}
		if cfg.ModelPath == "" {
			return false, "no local model configured: set capture.model_path"
		}
		if _, err := os.Stat(cfg.ModelPath); err != nil {
			return false, fmt.Sprintf("model file not found: %s", cfg.ModelPath)
		}
		return true, ""
	case BackendDeepgram:
		if cfg.APIKey == "" {
			return false, "missing Deepgram API key: set DEEPGRAM_API_KEY"
		}
		return true, ""
	default:
		return false, fmt.Sprintf("unsupported capture backend: %q", cfg.Backend)
	}
}
