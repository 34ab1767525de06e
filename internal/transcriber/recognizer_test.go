package transcriber

import (
	"strings"
	"testing"
)

func TestAvailability(t *testing.T) {
	tests := []struct {
		name       string
		config     Config
		wantOK     bool
		wantReason string
	}{
		{
			name:       "deepgram with key",
			config:     Config{Backend: BackendDeepgram, APIKey: "dg-test-key"},
			wantOK:     true,
			wantReason: "",
		},
		{
			name:       "deepgram without key",
			config:     Config{Backend: BackendDeepgram},
			wantOK:     false,
			wantReason: "DEEPGRAM_API_KEY",
		},
		{
			name:       "whisper-cpp without model path",
			config:     Config{Backend: BackendWhisperCpp},
			wantOK:     false,
			wantReason: "",
		},
		{
			name:       "unknown backend",
			config:     Config{Backend: "azure"},
			wantOK:     false,
			wantReason: "unsupported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Availability(tt.config)
			if ok != tt.wantOK {
				t.Errorf("Availability() ok = %v, want %v (reason %q)", ok, tt.wantOK, reason)
			}
			if !ok && reason == "" {
				t.Error("unavailable backend must explain why")
			}
			if tt.wantReason != "" && !strings.Contains(reason, tt.wantReason) {
				t.Errorf("reason = %q, want it to mention %q", reason, tt.wantReason)
			}
		})
	}
}

func TestNewRecognizerFailsFast(t *testing.T) {
	// no prerequisites satisfied: must fail before touching audio hardware
	if _, err := NewRecognizer(Config{Backend: BackendDeepgram}); err == nil {
		t.Error("NewRecognizer() should fail without a Deepgram key")
	}
	if _, err := NewRecognizer(Config{Backend: "vosk"}); err == nil {
		t.Error("NewRecognizer() should reject unknown backends")
	}
}

func TestNewRecognizerDeepgram(t *testing.T) {
	rec, err := NewRecognizer(Config{Backend: BackendDeepgram, APIKey: "dg-test-key"})
	if err != nil {
		t.Fatalf("NewRecognizer() error = %v", err)
	}
	if _, ok := rec.(*deepgramRecognizer); !ok {
		t.Errorf("expected deepgram recognizer, got %T", rec)
	}
}

func TestPCMToWAVHeader(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	wav := pcmToWAV(pcm)

	if got := string(wav[0:4]); got != "RIFF" {
		t.Errorf("magic = %q, want RIFF", got)
	}
	if got := string(wav[8:12]); got != "WAVE" {
		t.Errorf("format = %q, want WAVE", got)
	}
	if len(wav) != 44+len(pcm) {
		t.Errorf("len = %d, want %d", len(wav), 44+len(pcm))
	}
	if got := string(wav[36:40]); got != "data" {
		t.Errorf("data chunk id = %q, want data", got)
	}
}
