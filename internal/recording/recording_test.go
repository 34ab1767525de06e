package recording

import "testing"

func TestNewRecorderAppliesDefaultBuffer(t *testing.T) {
	r := NewRecorder(Config{})
	if r.config.ChannelBufferSize != DefaultConfig().ChannelBufferSize {
		t.Errorf("ChannelBufferSize = %d, want %d", r.config.ChannelBufferSize, DefaultConfig().ChannelBufferSize)
	}

	r = NewRecorder(Config{ChannelBufferSize: 5})
	if r.config.ChannelBufferSize != 5 {
		t.Errorf("ChannelBufferSize = %d, want 5", r.config.ChannelBufferSize)
	}
}

func TestBlockSizing(t *testing.T) {
	// 0.5s of s16le mono at 16 kHz
	if BlockBytes != SampleRate {
		t.Errorf("BlockBytes = %d, want %d", BlockBytes, SampleRate)
	}
	if BlockSamples*2 != BlockBytes {
		t.Errorf("BlockSamples*2 = %d, want %d", BlockSamples*2, BlockBytes)
	}
}

func TestStopWhenNotRecording(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	if err := r.Stop(); err != nil {
		t.Errorf("Stop() when idle = %v, want nil", err)
	}
	if r.IsRecording() {
		t.Error("IsRecording() = true, want false")
	}
}
