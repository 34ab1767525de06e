package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/astori/interviewpilot/internal/generation"
	"github.com/astori/interviewpilot/internal/prompt"
)

// Category selects the interview prompt family. The set is closed.
type Category string

const (
	Technical Category = "technical"
	HR        Category = "hr"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case Technical:
		return Technical, nil
	case HR:
		return HR, nil
	default:
		return "", fmt.Errorf("unknown interview category %q (want technical or hr)", s)
	}
}

// Style controls how long the generated answer should be.
type Style string

const (
	StyleShort    Style = "short"
	StyleMedium   Style = "medium"
	StyleDetailed Style = "detailed"
)

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case StyleShort:
		return StyleShort, nil
	case StyleMedium, "":
		return StyleMedium, nil
	case StyleDetailed:
		return StyleDetailed, nil
	default:
		return "", fmt.Errorf("unknown answer style %q (want short, medium or detailed)", s)
	}
}

func (s Style) instruction() string {
	switch s {
	case StyleShort:
		return "short (3-4 sentences)"
	case StyleDetailed:
		return "detailed, structured (about 250 words)"
	default:
		return "medium-length (about 120 words)"
	}
}

// Turn is one question/answer exchange in the ledger.
type Turn struct {
	Index     int       `json:"turn"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Generator is the slice of the resilient generator the session needs.
type Generator interface {
	Invoke(ctx context.Context, prompt string) (string, error)
	Stream(ctx context.Context, prompt string) (<-chan generation.Chunk, error)
}

// AnswerOptions style the generated answer.
type AnswerOptions struct {
	Style           Style
	IncludeFollowUp bool
}

// Session is the stateful conversation ledger for one resume + category
// pair. Turn indices are assigned once, monotonically, and never reused.
type Session struct {
	ID            string
	category      Category
	resumeContext string

	generator Generator
	store     Store

	mu        sync.Mutex
	turns     []Turn
	nextIndex int

	now func() time.Time
}

// New creates a session. store may be nil to skip persistence.
func New(generator Generator, store Store, resumeContext string, category Category) *Session {
	return &Session{
		ID:            uuid.NewString(),
		category:      category,
		resumeContext: resumeContext,
		generator:     generator,
		store:         store,
		now:           time.Now,
	}
}

// Turns returns a copy of the ledger.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// AskQuestion generates the next interviewer question (simulation mode) and
// appends a new turn for it.
func (s *Session) AskQuestion(ctx context.Context) (string, error) {
	p, err := prompt.Render(prompt.Interviewer, map[string]string{
		"interview_type": string(s.category),
		"resume_context": s.resumeContext,
	})
	if err != nil {
		return "", err
	}

	question, err := s.generator.Invoke(ctx, p)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.turns = append(s.turns, Turn{
		Index:     s.nextIndex,
		Question:  question,
		Timestamp: s.now().UTC(),
	})
	s.nextIndex++
	s.mu.Unlock()

	s.persist()
	return question, nil
}

// GenerateAnswer produces an answer for the question and records it on the
// last turn, or on a fresh turn when the question came from outside the
// session (copilot mode, live capture).
func (s *Session) GenerateAnswer(ctx context.Context, question string, opts AnswerOptions) (string, error) {
	p, err := s.answerPrompt(question, opts)
	if err != nil {
		return "", err
	}

	answer, err := s.generator.Invoke(ctx, p)
	if err != nil {
		return "", err
	}

	s.recordAnswer(question, answer)
	s.persist()
	return answer, nil
}

// StreamAnswer is GenerateAnswer with incremental output. The ledger is
// updated only once the stream completes cleanly; a broken stream records
// nothing, so a partial answer is never persisted as if complete.
func (s *Session) StreamAnswer(ctx context.Context, question string, opts AnswerOptions) (<-chan generation.Chunk, error) {
	p, err := s.answerPrompt(question, opts)
	if err != nil {
		return nil, err
	}

	in, err := s.generator.Stream(ctx, p)
	if err != nil {
		return nil, err
	}

	return s.forwardStream(ctx, question, in), nil
}

func (s *Session) forwardStream(ctx context.Context, question string, in <-chan generation.Chunk) <-chan generation.Chunk {
	out := make(chan generation.Chunk)
	go func() {
		defer close(out)
		var b strings.Builder
		broken := false
		for chunk := range in {
			if chunk.Err != nil {
				broken = true
			} else if !broken {
				b.WriteString(chunk.Text)
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				// consumer has gone away; keep draining the provider but
				// stop forwarding and do not record a partial answer
				broken = true
			}
		}
		if !broken {
			s.recordAnswer(question, strings.TrimSpace(b.String()))
			s.persist()
		}
	}()
	return out
}

// SuggestFollowUp proposes the interviewer's likely next question. It does
// not touch the ledger.
func (s *Session) SuggestFollowUp(ctx context.Context, question, answer string) (string, error) {
	p, err := prompt.Render(prompt.FollowupGenerator, map[string]string{
		"interview_type": string(s.category),
		"resume_context": s.resumeContext,
		"question":       question,
		"answer":         answer,
	})
	if err != nil {
		return "", err
	}
	return s.generator.Invoke(ctx, p)
}

func (s *Session) answerPrompt(question string, opts AnswerOptions) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("empty question")
	}
	followup := ""
	if opts.IncludeFollowUp {
		followup = "End with one likely follow-up question the interviewer may ask next."
	}
	style := opts.Style
	if style == "" {
		style = StyleMedium
	}
	return prompt.Render(prompt.AnswerGenerator, map[string]string{
		"resume_context":       s.resumeContext,
		"question":             question,
		"answer_style":         style.instruction(),
		"followup_instruction": followup,
	})
}

// recordAnswer writes the answer onto the last turn, or synthesizes a new
// turn when the ledger is empty. Indices stay monotonic either way.
func (s *Session) recordAnswer(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.turns) > 0 {
		s.turns[len(s.turns)-1].Answer = answer
		return
	}
	s.turns = append(s.turns, Turn{
		Index:     s.nextIndex,
		Question:  question,
		Answer:    answer,
		Timestamp: s.now().UTC(),
	})
	s.nextIndex++
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.Turns()); err != nil {
		log.Printf("session: persist failed: %v", err)
	}
}
