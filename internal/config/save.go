package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Save writes the configuration to the default path, replacing whatever is
// there.
func Save(c *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(fileHeader); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}
	if err := toml.NewEncoder(file).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

const fileHeader = `# interviewpilot configuration
# Edit values as needed. Provider API keys may also come from the
# environment: GEMINI_API_KEY, OPENAI_API_KEY, DEEPGRAM_API_KEY.

`
