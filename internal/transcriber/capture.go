package transcriber

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/astori/interviewpilot/internal/recording"
)

// Hypothesis is one element of the transcript stream. Partial hypotheses may
// be revised; final ones will not change. The last element of the stream is
// the authoritative finalized text for the utterance.
type Hypothesis struct {
	Text  string
	Final bool
}

// Options bounds one capture session.
type Options struct {
	// SilenceTimeout ends the utterance when no new text has been
	// recognized for this long.
	SilenceTimeout time.Duration
	// MaxDuration ends the utterance unconditionally.
	MaxDuration time.Duration
	// PollInterval is how long the consumer loop waits for the next audio
	// frame before rechecking the silence clock.
	PollInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		SilenceTimeout: 1200 * time.Millisecond,
		MaxDuration:    30 * time.Second,
		PollInterval:   100 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SilenceTimeout <= 0 {
		o.SilenceTimeout = def.SilenceTimeout
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = def.MaxDuration
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	return o
}

// FrameSource produces audio frames for one capture session. *recording.Recorder
// is the production implementation.
type FrameSource interface {
	Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error)
	Stop() error
}

// Transcriber turns live audio into an endpointed transcript stream: frames
// flow from the source into the recognizer, recognized text accumulates, and
// the utterance ends on silence or the duration cap.
type Transcriber struct {
	recognizer Recognizer
	source     FrameSource
}

func New(recognizer Recognizer, source FrameSource) *Transcriber {
	return &Transcriber{recognizer: recognizer, source: source}
}

// Capture starts a fresh utterance and returns its hypothesis stream. The
// stream is finite: it closes once the utterance ends, after the terminal
// hypothesis (if any text was recognized). A new call starts a new utterance.
func (t *Transcriber) Capture(ctx context.Context, opts Options) (<-chan Hypothesis, error) {
	opts = opts.withDefaults()

	if err := t.recognizer.Start(ctx); err != nil {
		return nil, err
	}

	frameCh, sourceErrCh, err := t.source.Start(ctx)
	if err != nil {
		_ = t.recognizer.Close()
		return nil, err
	}

	hypCh := make(chan Hypothesis, 32)
	go t.run(ctx, opts, frameCh, sourceErrCh, hypCh)
	return hypCh, nil
}

// ListenOnce captures one utterance and returns its finalized text. Empty
// string means nothing was recognized.
func (t *Transcriber) ListenOnce(ctx context.Context, opts Options) (string, error) {
	hypCh, err := t.Capture(ctx, opts)
	if err != nil {
		return "", err
	}
	var last string
	for h := range hypCh {
		last = h.Text
	}
	return strings.TrimSpace(last), nil
}

func (t *Transcriber) run(ctx context.Context, opts Options, frameCh <-chan recording.AudioFrame, sourceErrCh <-chan error, hypCh chan<- Hypothesis) {
	defer close(hypCh)

	start := time.Now()
	lastText := start
	var finals []string

	accumulated := func() string {
		return strings.Join(finals, " ")
	}

	// Intermediate hypotheses are best-effort: the caller observes only the
	// latest, and an abandoned consumer must never block capture.
	emit := func(h Hypothesis) {
		select {
		case hypCh <- h:
		default:
		}
	}

	// Drain recognizer output without blocking; returns false when the
	// utterance should end (recognizer stream failed or closed).
	drainResults := func() bool {
		for {
			select {
			case res, ok := <-t.recognizer.Results():
				if !ok {
					return false
				}
				if res.Err != nil {
					// degrade to silence: keep what we have
					log.Printf("transcriber: recognizer error: %v", res.Err)
					return false
				}
				text := strings.TrimSpace(res.Text)
				if text == "" {
					continue
				}
				lastText = time.Now()
				if res.Final {
					finals = append(finals, text)
					emit(Hypothesis{Text: accumulated(), Final: true})
				} else {
					emit(Hypothesis{Text: strings.TrimSpace(accumulated() + " " + text)})
				}
			default:
				return true
			}
		}
	}

	poll := time.NewTimer(opts.PollInterval)
	defer poll.Stop()

capture:
	for {
		if time.Since(start) > opts.MaxDuration {
			break
		}
		if !drainResults() {
			break
		}

		if !poll.Stop() {
			select {
			case <-poll.C:
			default:
			}
		}
		poll.Reset(opts.PollInterval)

		select {
		case frame, ok := <-frameCh:
			if !ok {
				// audio source ended; finalize with what we have
				break capture
			}
			if err := t.recognizer.Accept(frame.Data); err != nil {
				log.Printf("transcriber: accept frame: %v", err)
				break capture
			}
		case err := <-sourceErrCh:
			if err != nil {
				// hardware errors degrade to silence
				log.Printf("transcriber: audio source error: %v", err)
				break capture
			}
		case <-poll.C:
			if time.Since(lastText) > opts.SilenceTimeout {
				break capture
			}
		case <-ctx.Done():
			break capture
		}
	}

	_ = t.source.Stop()

	// Commit whatever the recognizer still holds, bounded so shutdown can
	// never hang on a dead backend.
	if ctx.Err() == nil {
		finalizeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := t.recognizer.Finalize(finalizeCtx); err != nil {
			log.Printf("transcriber: finalize: %v", err)
		}
		cancel()
	}
	t.collectRemaining(&finals, hypCh)
	_ = t.recognizer.Close()

	if text := strings.TrimSpace(accumulated()); text != "" {
		select {
		case hypCh <- Hypothesis{Text: text, Final: true}:
		case <-time.After(time.Second):
		}
	}
}

// collectRemaining folds any post-finalize finals into the accumulator.
func (t *Transcriber) collectRemaining(finals *[]string, hypCh chan<- Hypothesis) {
	for {
		select {
		case res, ok := <-t.recognizer.Results():
			if !ok {
				return
			}
			if res.Err != nil || !res.Final {
				continue
			}
			if text := strings.TrimSpace(res.Text); text != "" {
				*finals = append(*finals, text)
				select {
				case hypCh <- Hypothesis{Text: strings.Join(*finals, " "), Final: true}:
				default:
				}
			}
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}
