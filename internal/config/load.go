package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

var ErrConfigNotFound = errors.New("config not found")

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "interviewpilot")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// DefaultLedgerPath is where the session ledger lives when session.ledger
// is not set.
func DefaultLedgerPath() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), "sessions.json"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

func LoadFile(configPath string) (*Config, error) {
	// a local .env may carry provider keys; absence is not an error
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: run interviewpilot configure", ErrConfigNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Recording.ChannelBufferSize == 0 {
		c.Recording.ChannelBufferSize = def.Recording.ChannelBufferSize
	}
	if c.Capture.Backend == "" {
		c.Capture.Backend = def.Capture.Backend
	}
	if c.Capture.Model == "" {
		c.Capture.Model = def.Capture.Model
	}
	if c.Capture.SilenceTimeout == 0 {
		c.Capture.SilenceTimeout = def.Capture.SilenceTimeout
	}
	if c.Capture.MaxDuration == 0 {
		c.Capture.MaxDuration = def.Capture.MaxDuration
	}
	if c.Capture.Threads == 0 {
		threads := runtime.NumCPU() - 1
		if threads < 1 {
			threads = 1
		}
		c.Capture.Threads = threads
	}
	if c.Generation.Primary == "" {
		c.Generation.Primary = def.Generation.Primary
	}
	if c.Generation.Fallback == "" {
		c.Generation.Fallback = def.Generation.Fallback
	}
	if c.Generation.GeminiModel == "" {
		c.Generation.GeminiModel = def.Generation.GeminiModel
	}
	if c.Generation.OpenAIModel == "" {
		c.Generation.OpenAIModel = def.Generation.OpenAIModel
	}
	if c.Generation.MaxRetries == 0 {
		c.Generation.MaxRetries = def.Generation.MaxRetries
	}
	if c.Generation.BackoffBase == 0 {
		c.Generation.BackoffBase = def.Generation.BackoffBase
	}
	if c.Session.Category == "" {
		c.Session.Category = def.Session.Category
	}
	if c.Session.AnswerStyle == "" {
		c.Session.AnswerStyle = def.Session.AnswerStyle
	}
}
