package config

import "time"

// DefaultConfig returns the initial configuration written by the setup
// wizard.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingConfig{
			Device:            "",
			ChannelBufferSize: 30,
		},
		Capture: CaptureConfig{
			Backend:        "whisper-cpp",
			Language:       "en",
			ModelPath:      "",
			Model:          "nova-3",
			Threads:        0,
			SilenceTimeout: 1200 * time.Millisecond,
			MaxDuration:    30 * time.Second,
		},
		Generation: GenerationConfig{
			Primary:     "gemini",
			Fallback:    "openai",
			GeminiModel: "gemini-1.5-flash",
			OpenAIModel: "gpt-4o-mini",
			MaxRetries:  2,
			BackoffBase: 1500 * time.Millisecond,
		},
		Session: SessionConfig{
			Category:    "technical",
			AnswerStyle: "medium",
		},
		Providers: make(map[string]ProviderConfig),
	}
}
