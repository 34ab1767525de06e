package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Audio contract shared with the transcriber backends: signed 16-bit
// little-endian mono PCM at 16 kHz, delivered in half-second blocks.
const (
	SampleRate = 16000
	Channels   = 1
	Format     = "s16le"

	// BlockSamples is the number of samples per frame (0.5s at 16 kHz).
	BlockSamples = 8000
	BlockBytes   = BlockSamples * 2
)

// AudioFrame is one block of captured audio. The data is owned by the
// receiver once delivered; the recorder never touches it again.
type AudioFrame struct {
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	Device            string // pw-record --target, empty for default source
	ChannelBufferSize int    // frames buffered before backpressure drops
}

func DefaultConfig() Config {
	return Config{ChannelBufferSize: 20}
}

// Recorder captures microphone audio via pw-record and pushes fixed-size
// frames onto a bounded channel. One capture session at a time.
type Recorder struct {
	config    Config
	recording atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	if config.ChannelBufferSize <= 0 {
		config.ChannelBufferSize = DefaultConfig().ChannelBufferSize
	}
	return &Recorder{config: config}
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Available reports whether microphone capture can run on this host.
func Available() (bool, string) {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return false, "pw-record not found: install pipewire-tools"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "pw-cli", "info").Run(); err != nil {
		return false, "PipeWire not running or accessible"
	}
	return true, ""
}

func (r *Recorder) Start(ctx context.Context) (<-chan AudioFrame, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, fmt.Errorf("already recording")
	}

	if ok, reason := Available(); !ok {
		return nil, nil, fmt.Errorf("audio capture unavailable: %s", reason)
	}

	captureCtx, cancel := context.WithCancel(ctx)

	frameCh := make(chan AudioFrame, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(captureCtx, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) captureLoop(ctx context.Context, frameCh chan<- AudioFrame, errCh chan<- error) {
	defer func() {
		close(frameCh)
		close(errCh)
		r.recording.Store(false)

		// Reap the child process.
		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.cancel = nil
		r.mu.Unlock()

		r.wg.Done()
	}()

	args := []string{
		"--format", Format,
		"--rate", strconv.Itoa(SampleRate),
		"--channels", strconv.Itoa(Channels),
		"-",
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	cmd := exec.CommandContext(ctx, "pw-record", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		return
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		r.emitErr(errCh, fmt.Errorf("start pw-record: %w", err))
		return
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("recording: pw-record: %s", scanner.Text())
		}
	}()

	var dropped int
	lastDropLog := time.Now()

	reader := bufio.NewReaderSize(stdout, BlockBytes)
	buf := make([]byte, BlockBytes)
	for {
		n, readErr := io.ReadFull(reader, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])

			select {
			case frameCh <- AudioFrame{Data: data, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			default:
				dropped++
				if time.Since(lastDropLog) > time.Second {
					log.Printf("recording: dropped %d frames (consumer backpressure)", dropped)
					lastDropLog = time.Now()
					dropped = 0
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
				return
			}
			r.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (r *Recorder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Printf("recording: %v", err)
}
