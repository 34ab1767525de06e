package tui

import (
	"strings"
	"testing"

	"github.com/astori/interviewpilot/internal/config"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", "***"},
		{"short", "***"},
		{"sk-abcdefghijklmnop", "sk-abcd...mnop"},
	}
	for _, tt := range tests {
		if got := maskAPIKey(tt.key); got != tt.want {
			t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestConfiguredProvidersSorted(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers["openai"] = config.ProviderConfig{APIKey: "o"}
	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "g"}
	cfg.Providers["deepgram"] = config.ProviderConfig{APIKey: ""}

	got := configuredProviders(cfg)
	if len(got) != 2 || got[0] != "gemini" || got[1] != "openai" {
		t.Errorf("configuredProviders() = %v", got)
	}
}

func TestFormatProviderOption(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "g"}

	if got := formatProviderOption(cfg, "gemini"); !strings.Contains(got, "(configured)") {
		t.Errorf("gemini option = %q", got)
	}
	if got := formatProviderOption(cfg, "openai"); !strings.Contains(got, "(not configured)") {
		t.Errorf("openai option = %q", got)
	}
}

func TestHasUserChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	if hasUserChanges(cfg) {
		t.Error("default config should count as fresh install")
	}
	cfg.Providers["gemini"] = config.ProviderConfig{APIKey: "g"}
	if !hasUserChanges(cfg) {
		t.Error("configured provider should count as user changes")
	}
}
