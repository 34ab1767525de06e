package generation

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNewOpenAIBackend(t *testing.T) {
	b, err := NewOpenAIBackend("sk-test", "")
	if err != nil {
		t.Fatalf("NewOpenAIBackend() error = %v", err)
	}
	if b.model != defaultOpenAIModel {
		t.Errorf("model = %q, want default %q", b.model, defaultOpenAIModel)
	}
	if b.CredentialFingerprint() != "sk-test" {
		t.Errorf("fingerprint = %q, want the credential", b.CredentialFingerprint())
	}

	if _, err := NewOpenAIBackend("", "gpt-4o"); !IsConfigError(err) {
		t.Errorf("missing key should be a config error, got %v", err)
	}
}

func TestExtractOpenAIText(t *testing.T) {
	tests := []struct {
		name    string
		resp    openai.ChatCompletionResponse
		want    string
		wantErr bool
	}{
		{
			name: "direct content field",
			resp: openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Content: "  the answer  "}},
				},
			},
			want: "the answer",
		},
		{
			name: "multi content parts",
			resp: openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{
						MultiContent: []openai.ChatMessagePart{
							{Type: openai.ChatMessagePartTypeText, Text: "part one"},
							{Type: openai.ChatMessagePartTypeText, Text: " part two"},
						},
					}},
				},
			},
			want: "part one part two",
		},
		{
			name:    "no choices",
			resp:    openai.ChatCompletionResponse{},
			wantErr: true,
		},
		{
			name: "empty content",
			resp: openai.ChatCompletionResponse{
				Choices: []openai.ChatCompletionChoice{
					{Message: openai.ChatCompletionMessage{Content: "   "}},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractOpenAIText(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractOpenAIText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsTransient(err) {
					t.Errorf("no-content should classify as transient, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("extractOpenAIText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyOpenAIError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantConfig    bool
		wantTransient bool
	}{
		{
			name:          "rate limited",
			err:           &openai.APIError{HTTPStatusCode: 429},
			wantTransient: true,
		},
		{
			name:          "service unavailable",
			err:           &openai.APIError{HTTPStatusCode: 503},
			wantTransient: true,
		},
		{
			name:       "bad credential",
			err:        &openai.APIError{HTTPStatusCode: 401},
			wantConfig: true,
		},
		{
			name:       "request error forbidden",
			err:        &openai.RequestError{HTTPStatusCode: 403, Err: errors.New("forbidden")},
			wantConfig: true,
		},
		{
			name: "unknown error stays terminal",
			err:  errors.New("dns failure"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyOpenAIError(tt.err)
			if IsConfigError(got) != tt.wantConfig {
				t.Errorf("IsConfigError = %v, want %v", IsConfigError(got), tt.wantConfig)
			}
			if IsTransient(got) != tt.wantTransient {
				t.Errorf("IsTransient = %v, want %v", IsTransient(got), tt.wantTransient)
			}
		})
	}
}
