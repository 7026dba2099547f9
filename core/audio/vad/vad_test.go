package vad

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/klaramir/livesession/core/audio"
)

func pcmChunk(amplitude int16, samples int) audio.Chunk {
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(amplitude))
	}
	return audio.Chunk{PCM: pcm, SampleRate: audio.DefaultSampleRate, Channels: 1}
}

func TestRMSOfSilenceIsZero(t *testing.T) {
	if got := RMS(make([]byte, 640)); got != 0 {
		t.Fatalf("expected zero RMS for silence, got %f", got)
	}
}

func TestRMSOfConstantAmplitude(t *testing.T) {
	amplitude := int16(math.MaxInt16 / 2)
	got := RMS(pcmChunk(amplitude, 160).PCM)
	want := float64(amplitude) / math.MaxInt16
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected RMS %f, got %f", want, got)
	}
}

func TestRMSEmptyInput(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Fatalf("expected zero RMS for empty input, got %f", got)
	}
	if got := RMS([]byte{0x01}); got != 0 {
		t.Fatalf("expected zero RMS for odd-length input, got %f", got)
	}
}

func TestClassificationMonotonicInEnergy(t *testing.T) {
	detector := New(0.1)

	maxAmp := float64(math.MaxInt16)
	loud := pcmChunk(int16(0.5*maxAmp), 160)
	quiet := pcmChunk(int16(0.01*maxAmp), 160)

	if !detector.IsSpeech(loud) {
		t.Fatalf("expected chunk with RMS above threshold to classify as speech")
	}
	if detector.IsSpeech(quiet) {
		t.Fatalf("expected chunk with RMS below threshold to classify as silence")
	}
}

func TestClassificationIsDeterministic(t *testing.T) {
	detector := New(0.1)
	maxAmp := float64(math.MaxInt16)
	chunk := pcmChunk(int16(0.3*maxAmp), 160)

	first := detector.IsSpeech(chunk)
	for i := 0; i < 10; i++ {
		if detector.IsSpeech(chunk) != first {
			t.Fatalf("expected repeated classification of the same chunk to be stable")
		}
	}
}

func TestNewFallsBackToDefaultThreshold(t *testing.T) {
	if got := New(0).Threshold(); got != DefaultThreshold {
		t.Fatalf("expected default threshold %f, got %f", DefaultThreshold, got)
	}
	if got := New(-1).Threshold(); got != DefaultThreshold {
		t.Fatalf("expected default threshold %f, got %f", DefaultThreshold, got)
	}
}
