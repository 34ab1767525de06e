package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

var (
	openaiMu      sync.Mutex
	openaiClients = make(map[string]*openai.Client)
)

func openaiClient(apiKey string) *openai.Client {
	openaiMu.Lock()
	defer openaiMu.Unlock()

	if c, ok := openaiClients[apiKey]; ok {
		return c
	}
	c := openai.NewClient(apiKey)
	openaiClients[apiKey] = c
	return c
}

// OpenAIBackend generates text through the OpenAI chat completions API.
type OpenAIBackend struct {
	apiKey string
	model  string
}

func NewOpenAIBackend(apiKey, model string) (*OpenAIBackend, error) {
	if apiKey == "" {
		return nil, NewConfigError("missing OpenAI API key: set OPENAI_API_KEY or providers.openai.api_key", nil)
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIBackend{apiKey: apiKey, model: model}, nil
}

func (b *OpenAIBackend) Name() string { return "openai" }

func (b *OpenAIBackend) CredentialFingerprint() string { return b.apiKey }

func (b *OpenAIBackend) Available() (bool, string) {
	if b.apiKey == "" {
		return false, "missing OpenAI API key: set OPENAI_API_KEY"
	}
	return true, ""
}

func (b *OpenAIBackend) request(prompt string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Stream: stream,
	}
}

func (b *OpenAIBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := openaiClient(b.apiKey).CreateChatCompletion(ctx, b.request(prompt, false))
	if err != nil {
		log.Printf("openai: completion failed after %v: %v", time.Since(start), err)
		return "", classifyOpenAIError(err)
	}

	text, err := extractOpenAIText(resp)
	if err != nil {
		return "", err
	}
	log.Printf("openai: generated %d chars in %v", len(text), time.Since(start))
	return text, nil
}

func (b *OpenAIBackend) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	stream, err := openaiClient(b.apiKey).CreateChatCompletionStream(ctx, b.request(prompt, true))
	if err != nil {
		return nil, classifyOpenAIError(err)
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				select {
				case ch <- Chunk{Err: classifyOpenAIError(err)}:
				case <-ctx.Done():
				}
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case ch <- Chunk{Text: delta}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// extractOpenAIText normalizes the two places a completion can carry its
// answer: the plain content field, or a list of typed content parts.
func extractOpenAIText(resp openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", NewTransientError(fmt.Errorf("openai: no response choices"))
	}

	msg := resp.Choices[0].Message
	text := strings.TrimSpace(msg.Content)
	if text == "" && len(msg.MultiContent) > 0 {
		var b strings.Builder
		for _, part := range msg.MultiContent {
			if part.Type == openai.ChatMessagePartTypeText {
				b.WriteString(part.Text)
			}
		}
		text = strings.TrimSpace(b.String())
	}

	if text == "" {
		return "", NewTransientError(fmt.Errorf("openai: no text content in response"))
	}
	return text, nil
}

func classifyOpenAIError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 429, 500, 502, 503, 504:
		return NewTransientError(fmt.Errorf("openai: service overloaded: %w", err))
	case 400, 401, 403:
		return NewConfigError("OpenAI rejected the request, check OPENAI_API_KEY and model access", err)
	}
	return fmt.Errorf("openai: %w", err)
}
