package config

import "fmt"

var validProviders = map[string]bool{"gemini": true, "openai": true}

func (c *Config) Validate() error {
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}

	switch c.Capture.Backend {
	case "whisper-cpp":
		if c.Capture.ModelPath == "" {
			return fmt.Errorf("capture.model_path required for whisper-cpp (path to a ggml model file)")
		}
	case "deepgram":
		if c.APIKey("deepgram") == "" {
			return fmt.Errorf("Deepgram API key required: not found in config (providers.deepgram.api_key) or environment variable (DEEPGRAM_API_KEY)")
		}
	default:
		return fmt.Errorf("unsupported capture.backend: %s (must be whisper-cpp or deepgram)", c.Capture.Backend)
	}
	if c.Capture.SilenceTimeout <= 0 {
		return fmt.Errorf("invalid capture.silence_timeout: %v", c.Capture.SilenceTimeout)
	}
	if c.Capture.MaxDuration <= c.Capture.SilenceTimeout {
		return fmt.Errorf("capture.max_duration (%v) must exceed capture.silence_timeout (%v)", c.Capture.MaxDuration, c.Capture.SilenceTimeout)
	}

	if !validProviders[c.Generation.Primary] {
		return fmt.Errorf("invalid generation.primary: %s (must be gemini or openai)", c.Generation.Primary)
	}
	if c.Generation.Fallback != "none" {
		if !validProviders[c.Generation.Fallback] {
			return fmt.Errorf("invalid generation.fallback: %s (must be gemini, openai, or none)", c.Generation.Fallback)
		}
		if c.Generation.Fallback == c.Generation.Primary {
			return fmt.Errorf("generation.fallback must differ from generation.primary (%s)", c.Generation.Primary)
		}
	}
	if c.Generation.MaxRetries < 0 {
		return fmt.Errorf("invalid generation.max_retries: %d", c.Generation.MaxRetries)
	}
	if c.Generation.BackoffBase <= 0 {
		return fmt.Errorf("invalid generation.backoff_base: %v", c.Generation.BackoffBase)
	}

	for _, provider := range c.GenerationProviders() {
		if c.APIKey(provider) == "" {
			return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
				provider, provider, envKeys[provider])
		}
	}

	validCategories := map[string]bool{"technical": true, "hr": true}
	if !validCategories[c.Session.Category] {
		return fmt.Errorf("invalid session.category: %s (must be technical or hr)", c.Session.Category)
	}
	validStyles := map[string]bool{"short": true, "medium": true, "detailed": true}
	if !validStyles[c.Session.AnswerStyle] {
		return fmt.Errorf("invalid session.answer_style: %s (must be short, medium, or detailed)", c.Session.AnswerStyle)
	}

	return nil
}

// GenerationProviders lists the providers the generator will actually use,
// primary first.
func (c *Config) GenerationProviders() []string {
	providers := []string{c.Generation.Primary}
	if c.Generation.Fallback != "none" && c.Generation.Fallback != c.Generation.Primary {
		providers = append(providers, c.Generation.Fallback)
	}
	return providers
}
