package audio

import (
	"testing"
	"time"
)

func TestChunkDuration(t *testing.T) {
	chunk := Chunk{PCM: make([]byte, 640), SampleRate: DefaultSampleRate, Channels: 1}
	if got := chunk.Duration(); got != 20*time.Millisecond {
		t.Fatalf("expected 20ms for 320 samples at 16kHz, got %v", got)
	}

	if got := (Chunk{PCM: make([]byte, 640)}).Duration(); got != 0 {
		t.Fatalf("expected zero duration without a sample rate, got %v", got)
	}
}

func TestEncodingInfoByteRate(t *testing.T) {
	if got := GetDefaultEncodingInfo().BytesPerSecond(); got != 32000 {
		t.Fatalf("expected 32000 B/s for 16kHz linear16 mono, got %d", got)
	}
	if got := GetDefaultPlaybackEncodingInfo().BytesPerSecond(); got != 48000 {
		t.Fatalf("expected 48000 B/s for 24kHz linear16 mono, got %d", got)
	}
}

func TestEncodingInfoSilenceValue(t *testing.T) {
	if got := GetDefaultEncodingInfo().SilenceValue(); got != 0 {
		t.Fatalf("expected linear16 silence 0, got %#x", got)
	}
	if got := (EncodingInfo{Format: EncodingMulaw}).SilenceValue(); got != 0xFF {
		t.Fatalf("expected mulaw silence 0xFF, got %#x", got)
	}
}
