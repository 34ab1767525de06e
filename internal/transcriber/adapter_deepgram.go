package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/astori/interviewpilot/internal/recording"
)

const deepgramEndpoint = "wss://api.deepgram.com/v1/listen"

// deepgramRecognizer streams audio to Deepgram over a persistent websocket
// and funnels recognizing/recognized events onto the results channel. Stream
// failures surface as Result errors; the capture loop treats them as silence.
type deepgramRecognizer struct {
	apiKey   string
	model    string
	language string

	mu      sync.Mutex
	conn    *websocket.Conn
	started bool

	resultsCh chan Result
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	finalizeDone chan struct{}
}

type deepgramCloseStream struct {
	Type string `json:"type"`
}

type deepgramResponse struct {
	Type        string           `json:"type"`
	Channel     *deepgramChannel `json:"channel,omitempty"`
	Error       *deepgramError   `json:"error,omitempty"`
	IsFinal     bool             `json:"is_final,omitempty"`
	SpeechFinal bool             `json:"speech_final,omitempty"`
}

type deepgramChannel struct {
	Alternatives []deepgramAlternative `json:"alternatives,omitempty"`
}

type deepgramAlternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type deepgramError struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func newDeepgramRecognizer(apiKey, model, language string) *deepgramRecognizer {
	if model == "" {
		model = "nova-3"
	}
	return &deepgramRecognizer{
		apiKey:       apiKey,
		model:        model,
		language:     language,
		resultsCh:    make(chan Result, 100),
		finalizeDone: make(chan struct{}, 1),
	}
}

func (r *deepgramRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recognizer already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	wsURL, err := r.buildURL()
	if err != nil {
		return fmt.Errorf("build websocket url: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.apiKey)

	conn, resp, err := websocket.DefaultDialer.DialContext(r.ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			log.Printf("deepgram: dial failed with status %d", resp.StatusCode)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}
	r.conn = conn
	r.started = true

	r.wg.Add(1)
	go r.readLoop()

	log.Printf("deepgram: connected, model=%s, language=%s", r.model, r.language)
	return nil
}

func (r *deepgramRecognizer) buildURL() (string, error) {
	u, err := url.Parse(deepgramEndpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", r.model)
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(recording.SampleRate))
	q.Set("channels", strconv.Itoa(recording.Channels))
	q.Set("interim_results", "true")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if r.language != "" {
		q.Set("language", r.language)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (r *deepgramRecognizer) readLoop() {
	defer r.wg.Done()
	defer close(r.resultsCh)

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		r.mu.Lock()
		conn := r.conn
		r.mu.Unlock()
		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-r.ctx.Done(): // normal shutdown
			default:
				r.resultsCh <- Result{Err: fmt.Errorf("websocket read: %w", err)}
			}
			return
		}

		var resp deepgramResponse
		if err := json.Unmarshal(message, &resp); err != nil {
			log.Printf("deepgram: parse error: %v", err)
			continue
		}

		switch resp.Type {
		case "Results":
			if resp.Channel == nil || len(resp.Channel.Alternatives) == 0 {
				continue
			}
			transcript := resp.Channel.Alternatives[0].Transcript
			if transcript == "" {
				continue
			}
			final := resp.IsFinal || resp.SpeechFinal
			if final {
				select {
				case r.finalizeDone <- struct{}{}:
				default:
				}
			}
			r.resultsCh <- Result{Text: transcript, Final: final}

		case "Error":
			if resp.Error != nil {
				msg := resp.Error.Message
				if resp.Error.Description != "" {
					msg = fmt.Sprintf("%s: %s", msg, resp.Error.Description)
				}
				r.resultsCh <- Result{Err: fmt.Errorf("deepgram: %s", msg)}
			}

		case "UtteranceEnd", "SpeechStarted", "Metadata":
			// informational only
		}
	}
}

func (r *deepgramRecognizer) Accept(pcm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.conn == nil {
		return fmt.Errorf("recognizer not started")
	}
	select {
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
	}

	if err := r.conn.WriteMessage(websocket.BinaryMessage, pcm); err != nil {
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (r *deepgramRecognizer) Results() <-chan Result {
	return r.resultsCh
}

// Finalize tells Deepgram the audio is over and waits for the last committed
// transcript (or the ctx deadline).
func (r *deepgramRecognizer) Finalize(ctx context.Context) error {
	r.mu.Lock()
	if !r.started || r.conn == nil {
		r.mu.Unlock()
		return nil
	}

	// drain stale signals
	select {
	case <-r.finalizeDone:
	default:
	}

	err := r.conn.WriteJSON(deepgramCloseStream{Type: "CloseStream"})
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("finalize write: %w", err)
	}

	select {
	case <-r.finalizeDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return r.ctx.Err()
	}
}

func (r *deepgramRecognizer) Close() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	if r.cancel != nil {
		r.cancel()
	}
	conn := r.conn
	r.mu.Unlock()

	// close the websocket outside the lock; the read loop may be blocked
	if conn != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}

	r.wg.Wait()
	log.Printf("deepgram: closed")
	return nil
}
