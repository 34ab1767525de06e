package transcriber

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/astori/interviewpilot/internal/recording"
)

// mockRecognizer scripts recognizer output for capture tests.
type mockRecognizer struct {
	resultsCh chan Result

	StartFunc    func(ctx context.Context) error
	AcceptFunc   func(pcm []byte) error
	FinalizeFunc func(ctx context.Context) error

	closed bool
}

func newMockRecognizer() *mockRecognizer {
	return &mockRecognizer{resultsCh: make(chan Result, 32)}
}

func (m *mockRecognizer) Start(ctx context.Context) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return nil
}

func (m *mockRecognizer) Accept(pcm []byte) error {
	if m.AcceptFunc != nil {
		return m.AcceptFunc(pcm)
	}
	return nil
}

func (m *mockRecognizer) Results() <-chan Result { return m.resultsCh }

func (m *mockRecognizer) Finalize(ctx context.Context) error {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc(ctx)
	}
	return nil
}

func (m *mockRecognizer) Close() error {
	if !m.closed {
		m.closed = true
		close(m.resultsCh)
	}
	return nil
}

func (m *mockRecognizer) send(r Result) { m.resultsCh <- r }

// mockSource feeds scripted frames on a fixed cadence.
type mockSource struct {
	frameCh chan recording.AudioFrame
	errCh   chan error

	StartErr error
	stopped  bool
}

func newMockSource() *mockSource {
	return &mockSource{
		frameCh: make(chan recording.AudioFrame, 64),
		errCh:   make(chan error, 1),
	}
}

func (m *mockSource) Start(ctx context.Context) (<-chan recording.AudioFrame, <-chan error, error) {
	if m.StartErr != nil {
		return nil, nil, m.StartErr
	}
	return m.frameCh, m.errCh, nil
}

func (m *mockSource) Stop() error {
	m.stopped = true
	return nil
}

func shortOptions() Options {
	return Options{
		SilenceTimeout: 300 * time.Millisecond,
		MaxDuration:    5 * time.Second,
		PollInterval:   20 * time.Millisecond,
	}
}

func collect(t *testing.T, hypCh <-chan Hypothesis, timeout time.Duration) []Hypothesis {
	t.Helper()
	var out []Hypothesis
	deadline := time.After(timeout)
	for {
		select {
		case h, ok := <-hypCh:
			if !ok {
				return out
			}
			out = append(out, h)
		case <-deadline:
			t.Fatal("timeout collecting hypotheses")
		}
	}
}

func TestCaptureTerminalEqualsJoinedFinals(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	rec.send(Result{Text: "tell me about", Final: true})
	rec.send(Result{Text: "your experience", Final: true})
	// then silence: no more results, no frames

	hyps := collect(t, hypCh, 3*time.Second)
	if len(hyps) == 0 {
		t.Fatal("no hypotheses emitted")
	}

	terminal := hyps[len(hyps)-1]
	want := "tell me about your experience"
	if terminal.Text != want {
		t.Errorf("terminal = %q, want %q", terminal.Text, want)
	}
	if !terminal.Final {
		t.Error("terminal hypothesis should be final")
	}
	if !src.stopped {
		t.Error("source was not stopped")
	}
}

func TestCaptureSilenceTimeout(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	opts := shortOptions()
	start := time.Now()

	hypCh, err := tr.Capture(context.Background(), opts)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	rec.send(Result{Text: "hello", Final: true})

	hyps := collect(t, hypCh, 3*time.Second)
	elapsed := time.Since(start)

	// should end within a few poll intervals of the silence timeout, far
	// before MaxDuration
	if elapsed > opts.SilenceTimeout+10*opts.PollInterval+time.Second {
		t.Errorf("capture took %v, expected termination near silence timeout %v", elapsed, opts.SilenceTimeout)
	}

	terminal := hyps[len(hyps)-1]
	if terminal.Text != "hello" {
		t.Errorf("terminal = %q, want %q", terminal.Text, "hello")
	}

	// "hello" must appear as an intermediate as well as the terminal element
	if len(hyps) < 2 {
		t.Fatalf("expected intermediate + terminal, got %d hypotheses", len(hyps))
	}
	if hyps[0].Text != "hello" || !hyps[0].Final {
		t.Errorf("intermediate = %+v, want final %q", hyps[0], "hello")
	}
}

func TestCaptureMaxDuration(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	opts := Options{
		SilenceTimeout: 10 * time.Second, // never triggers
		MaxDuration:    400 * time.Millisecond,
		PollInterval:   20 * time.Millisecond,
	}

	// continuous non-silent input: keep frames flowing
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case src.frameCh <- recording.AudioFrame{Data: []byte{1, 2}, Timestamp: time.Now()}:
			default:
			}
			select {
			case <-time.After(30 * time.Millisecond):
			case <-stop:
				return
			}
		}
	}()

	start := time.Now()
	hypCh, err := tr.Capture(context.Background(), opts)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	for range hypCh {
	}
	elapsed := time.Since(start)
	close(stop)

	if elapsed > opts.MaxDuration+2*time.Second {
		t.Errorf("capture took %v under continuous input, want ~%v", elapsed, opts.MaxDuration)
	}
}

func TestCapturePartialsNotPersisted(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	rec.send(Result{Text: "tell me", Final: true})
	rec.send(Result{Text: "about yourself"}) // partial, must not persist

	hyps := collect(t, hypCh, 3*time.Second)

	var sawCombined bool
	for _, h := range hyps {
		if h.Text == "tell me about yourself" && !h.Final {
			sawCombined = true
		}
	}
	if !sawCombined {
		t.Error("partial was not reported as accumulated + partial")
	}

	terminal := hyps[len(hyps)-1]
	if terminal.Text != "tell me" {
		t.Errorf("terminal = %q, want %q (partial text must not persist)", terminal.Text, "tell me")
	}
}

func TestCaptureSourceErrorDegradesToSilence(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	rec.send(Result{Text: "what is your", Final: true})
	time.Sleep(100 * time.Millisecond)
	src.errCh <- fmt.Errorf("device disappeared")

	hyps := collect(t, hypCh, 3*time.Second)
	if len(hyps) == 0 {
		t.Fatal("expected accumulated text despite hardware error")
	}
	if got := hyps[len(hyps)-1].Text; got != "what is your" {
		t.Errorf("terminal = %q, want %q", got, "what is your")
	}
}

func TestCaptureRecognizerErrorEndsUtterance(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	rec.send(Result{Text: "greatest strength", Final: true})
	rec.send(Result{Err: fmt.Errorf("stream reset")})

	hyps := collect(t, hypCh, 3*time.Second)
	if got := hyps[len(hyps)-1].Text; got != "greatest strength" {
		t.Errorf("terminal = %q, want %q", got, "greatest strength")
	}
}

func TestCaptureNoSpeechYieldsEmptyStream(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	hyps := collect(t, hypCh, 3*time.Second)
	if len(hyps) != 0 {
		t.Errorf("expected no hypotheses for silent utterance, got %v", hyps)
	}
}

func TestCaptureSourceStartError(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	src.StartErr = fmt.Errorf("no microphone")
	tr := New(rec, src)

	if _, err := tr.Capture(context.Background(), shortOptions()); err == nil {
		t.Error("Capture() should fail when the audio source cannot start")
	}
}

func TestListenOnceReturnsTerminalText(t *testing.T) {
	rec := newMockRecognizer()
	src := newMockSource()
	tr := New(rec, src)

	go func() {
		time.Sleep(50 * time.Millisecond)
		rec.send(Result{Text: "walk me through", Final: true})
		rec.send(Result{Text: "your resume", Final: true})
	}()

	text, err := tr.ListenOnce(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("ListenOnce() error = %v", err)
	}
	if text != "walk me through your resume" {
		t.Errorf("ListenOnce() = %q, want %q", text, "walk me through your resume")
	}
}

func TestCaptureFramesReachRecognizer(t *testing.T) {
	rec := newMockRecognizer()
	var accepted [][]byte
	rec.AcceptFunc = func(pcm []byte) error {
		data := make([]byte, len(pcm))
		copy(data, pcm)
		accepted = append(accepted, data)
		return nil
	}
	src := newMockSource()
	tr := New(rec, src)

	hypCh, err := tr.Capture(context.Background(), shortOptions())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	src.frameCh <- recording.AudioFrame{Data: []byte{1, 2, 3, 4}, Timestamp: time.Now()}
	src.frameCh <- recording.AudioFrame{Data: []byte{5, 6, 7, 8}, Timestamp: time.Now()}

	collect(t, hypCh, 3*time.Second)

	if len(accepted) != 2 {
		t.Errorf("recognizer received %d frames, want 2", len(accepted))
	}
}
