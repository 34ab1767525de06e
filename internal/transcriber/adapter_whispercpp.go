package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/astori/interviewpilot/internal/recording"
)

// decodeInterval limits how often the interim decoder reruns the model.
const decodeInterval = 1500 * time.Millisecond

// minDecodeBytes is one second of audio; shorter buffers aren't worth a run.
const minDecodeBytes = recording.SampleRate * 2

// whisperCppRecognizer transcribes locally with whisper-cli. It is stateful
// per utterance: accepted PCM accumulates in a buffer, an interim decoder
// periodically transcribes the whole buffer and reports the text as a partial
// hypothesis, and Finalize commits one final decode of everything heard.
type whisperCppRecognizer struct {
	modelPath string
	language  string
	threads   int

	mu       sync.Mutex
	buf      []byte
	lastSize int

	resultsCh chan Result
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
}

func newWhisperCppRecognizer(modelPath, language string, threads int) *whisperCppRecognizer {
	return &whisperCppRecognizer{
		modelPath: modelPath,
		language:  language,
		threads:   threads,
		resultsCh: make(chan Result, 16),
	}
}

func (r *whisperCppRecognizer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("recognizer already started")
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.started = true

	r.wg.Add(1)
	go r.decodeLoop()
	return nil
}

func (r *whisperCppRecognizer) Accept(pcm []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return fmt.Errorf("recognizer not started")
	}
	r.buf = append(r.buf, pcm...)
	return nil
}

func (r *whisperCppRecognizer) Results() <-chan Result {
	return r.resultsCh
}

// decodeLoop emits interim hypotheses while audio accumulates. Each pass
// transcribes the full buffer, so every partial supersedes the previous one.
func (r *whisperCppRecognizer) decodeLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(decodeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		grown := len(r.buf) >= minDecodeBytes && len(r.buf) > r.lastSize
		snapshot := append([]byte(nil), r.buf...)
		r.mu.Unlock()

		if !grown {
			continue
		}

		text, err := r.transcribe(r.ctx, snapshot)
		if err != nil {
			if r.ctx.Err() != nil {
				return
			}
			log.Printf("whisper-cpp: interim decode failed: %v", err)
			continue
		}

		r.mu.Lock()
		r.lastSize = len(snapshot)
		r.mu.Unlock()

		if text != "" {
			select {
			case r.resultsCh <- Result{Text: text, Final: false}:
			case <-r.ctx.Done():
				return
			}
		}
	}
}

// Finalize decodes everything heard and emits it as the final result.
func (r *whisperCppRecognizer) Finalize(ctx context.Context) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	snapshot := append([]byte(nil), r.buf...)
	r.mu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	text, err := r.transcribe(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("final decode: %w", err)
	}
	if text != "" {
		select {
		case r.resultsCh <- Result{Text: text, Final: true}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *whisperCppRecognizer) Close() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
	close(r.resultsCh)
	return nil
}

func (r *whisperCppRecognizer) transcribe(ctx context.Context, pcm []byte) (string, error) {
	whisperPath, err := exec.LookPath("whisper-cli")
	if err != nil {
		return "", fmt.Errorf("whisper-cli not found: install whisper.cpp")
	}

	tmpFile := filepath.Join(os.TempDir(), fmt.Sprintf("interviewpilot-%d.wav", time.Now().UnixNano()))
	if err := os.WriteFile(tmpFile, pcmToWAV(pcm), 0600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	defer os.Remove(tmpFile)

	lang := r.language
	if lang == "" {
		lang = "auto"
	}

	args := []string{
		"-m", r.modelPath,
		"-l", lang,
		"-nt", // no timestamps
		"-np", // no progress
		"-f", tmpFile,
	}
	if r.threads > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", r.threads))
	}

	cmd := exec.CommandContext(ctx, whisperPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("whisper-cpp: decode failed after %v: %v\nstderr: %s", time.Since(start), err, stderr.String())
		return "", fmt.Errorf("whisper-cli failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}
