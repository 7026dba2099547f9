// Package vad classifies PCM audio chunks as speech or silence using
// root-mean-square signal energy. It is intentionally a cheap heuristic, not a
// learned model; false classifications are corrected by the remote model's own
// turn-taking.
package vad

import (
	"encoding/binary"
	"math"

	"github.com/klaramir/livesession/core/audio"
)

// DefaultThreshold is the normalized RMS level above which a chunk counts as
// speech, tuned for 16kHz linear16 microphone input.
const DefaultThreshold = 0.015

type Detector struct {
	threshold float64
}

// New returns a detector with the given normalized RMS threshold. A
// non-positive threshold falls back to DefaultThreshold.
func New(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

func (d *Detector) Threshold() float64 { return d.threshold }

// IsSpeech reports whether the chunk's RMS energy exceeds the threshold.
// Classification is deterministic and monotonic in energy.
func (d *Detector) IsSpeech(chunk audio.Chunk) bool {
	return RMS(chunk.PCM) > d.threshold
}

// RMS computes the root-mean-square energy of little-endian linear16 PCM,
// normalized to [0, 1]. Empty or odd-length input yields 0.
func RMS(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < samples; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		normalized := float64(sample) / math.MaxInt16
		sum += normalized * normalized
	}
	return math.Sqrt(sum / float64(samples))
}
