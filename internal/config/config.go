package config

import (
	"os"
	"strings"
	"time"

	"github.com/astori/interviewpilot/internal/generation"
	"github.com/astori/interviewpilot/internal/recording"
	"github.com/astori/interviewpilot/internal/transcriber"
)

type Config struct {
	Recording  RecordingConfig           `toml:"recording"`
	Capture    CaptureConfig             `toml:"capture"`
	Generation GenerationConfig          `toml:"generation"`
	Session    SessionConfig             `toml:"session"`
	Providers  map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds the API key for one provider. Keys may also come
// from the environment; see APIKey.
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type RecordingConfig struct {
	Device            string `toml:"device"`
	ChannelBufferSize int    `toml:"channel_buffer_size"`
}

type CaptureConfig struct {
	Backend        string        `toml:"backend"` // "whisper-cpp" or "deepgram"
	Language       string        `toml:"language"`
	ModelPath      string        `toml:"model_path"` // whisper-cpp ggml model file
	Model          string        `toml:"model"`      // deepgram model name
	Threads        int           `toml:"threads"`    // 0 = auto
	SilenceTimeout time.Duration `toml:"silence_timeout"`
	MaxDuration    time.Duration `toml:"max_duration"`
}

type GenerationConfig struct {
	Primary     string        `toml:"primary"`
	Fallback    string        `toml:"fallback"`
	GeminiModel string        `toml:"gemini_model"`
	OpenAIModel string        `toml:"openai_model"`
	MaxRetries  int           `toml:"max_retries"`
	BackoffBase time.Duration `toml:"backoff_base"`
}

type SessionConfig struct {
	Category    string `toml:"category"`
	Resume      string `toml:"resume"`       // path to the resume file
	Ledger      string `toml:"ledger"`       // path to sessions.json, empty = config dir
	AnswerStyle string `toml:"answer_style"` // short, medium, detailed
}

// envKeys maps provider names to the environment variable that may carry
// their API key. Environment wins over the config file.
var envKeys = map[string]string{
	"gemini":   "GEMINI_API_KEY",
	"openai":   "OPENAI_API_KEY",
	"deepgram": "DEEPGRAM_API_KEY",
}

// APIKey resolves the key for a provider, environment first, then the
// providers table. Empty means not configured.
func (c *Config) APIKey(provider string) string {
	if env, ok := envKeys[strings.ToLower(provider)]; ok {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	if p, ok := c.Providers[strings.ToLower(provider)]; ok {
		return p.APIKey
	}
	return ""
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
	}
}

func (c *Config) ToRecognizerConfig() transcriber.Config {
	return transcriber.Config{
		Backend:   transcriber.Backend(c.Capture.Backend),
		Language:  c.Capture.Language,
		ModelPath: c.Capture.ModelPath,
		Threads:   c.Capture.Threads,
		APIKey:    c.APIKey("deepgram"),
		Model:     c.Capture.Model,
	}
}

func (c *Config) ToCaptureOptions() transcriber.Options {
	return transcriber.Options{
		SilenceTimeout: c.Capture.SilenceTimeout,
		MaxDuration:    c.Capture.MaxDuration,
	}
}

func (c *Config) ToRetryPolicy() generation.RetryPolicy {
	return generation.RetryPolicy{
		MaxRetries:  c.Generation.MaxRetries,
		BackoffBase: c.Generation.BackoffBase,
	}
}
