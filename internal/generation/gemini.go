package generation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-1.5-flash"

// geminiClients caches one live client per API key so repeated calls reuse
// the connection instead of redialing.
var (
	geminiMu      sync.Mutex
	geminiClients = make(map[string]*genai.Client)
)

func geminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	geminiMu.Lock()
	defer geminiMu.Unlock()

	if c, ok := geminiClients[apiKey]; ok {
		return c, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, NewConfigError("could not initialize Gemini client, check GEMINI_API_KEY", err)
	}
	geminiClients[apiKey] = c
	return c, nil
}

// GeminiBackend generates text through the Gemini API.
type GeminiBackend struct {
	apiKey string
	model  string
}

func NewGeminiBackend(apiKey, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, NewConfigError("missing Gemini API key: set GEMINI_API_KEY or providers.gemini.api_key", nil)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiBackend{apiKey: apiKey, model: model}, nil
}

func (b *GeminiBackend) Name() string { return "gemini" }

func (b *GeminiBackend) CredentialFingerprint() string { return b.apiKey }

func (b *GeminiBackend) Available() (bool, string) {
	if b.apiKey == "" {
		return false, "missing Gemini API key: set GEMINI_API_KEY"
	}
	return true, ""
}

func (b *GeminiBackend) Invoke(ctx context.Context, prompt string) (string, error) {
	client, err := geminiClient(ctx, b.apiKey)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := client.GenerativeModel(b.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("gemini: generate failed after %v: %v", time.Since(start), err)
		return "", classifyGeminiError(err)
	}

	text, err := extractGeminiText(resp)
	if err != nil {
		return "", err
	}
	log.Printf("gemini: generated %d chars in %v", len(text), time.Since(start))
	return text, nil
}

func (b *GeminiBackend) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	client, err := geminiClient(ctx, b.apiKey)
	if err != nil {
		return nil, err
	}

	iter := client.GenerativeModel(b.model).GenerateContentStream(ctx, genai.Text(prompt))

	// The SDK surfaces connection problems on the first Next; pull it
	// eagerly so stream-construction failures are returned, not streamed.
	first, err := iter.Next()
	if err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, NewTransientError(fmt.Errorf("gemini: empty stream"))
		}
		return nil, classifyGeminiError(err)
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)

		emit := func(resp *genai.GenerateContentResponse) bool {
			text, err := extractGeminiText(resp)
			if err != nil {
				// interleaved empty responses are normal mid-stream
				return true
			}
			select {
			case ch <- Chunk{Text: text}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(first) {
			return
		}
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				select {
				case ch <- Chunk{Err: classifyGeminiError(err)}:
				case <-ctx.Done():
				}
				return
			}
			if !emit(resp) {
				return
			}
		}
	}()
	return ch, nil
}

// extractGeminiText normalizes the response shapes Gemini replies with: the
// answer may arrive as one text part or as a list of content fragments.
// Non-text parts are skipped; no extractable text is an error.
func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", NewTransientError(fmt.Errorf("gemini: nil response"))
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			break // first candidate with content wins
		}
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", NewTransientError(fmt.Errorf("gemini: no text content in response"))
	}
	return text, nil
}

// classifyGeminiError partitions provider failures into the generic
// taxonomy: overload/rate-limit is transient, credential and request errors
// are configuration-class, anything else is terminal as-is.
func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return NewTransientError(fmt.Errorf("gemini: service overloaded: %w", err))
		case 400, 401, 403:
			return NewConfigError("Gemini rejected the request, check GEMINI_API_KEY and model access", err)
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
