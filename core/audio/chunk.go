package audio

import "time"

// Chunk is one captured slice of raw PCM audio. Chunks are immutable once
// produced and are owned by whichever queue currently holds them.
type Chunk struct {
	PCM        []byte
	SampleRate int
	Channels   int
	CapturedAt time.Time
}

// Duration returns the wall time this chunk covers, assuming linear16 PCM.
func (c Chunk) Duration() time.Duration {
	channels := c.Channels
	if channels == 0 {
		channels = 1
	}
	if c.SampleRate == 0 {
		return 0
	}
	samples := len(c.PCM) / (2 * channels)
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}
