package session

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/klaramir/livesession/core/audio"
	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/video"
)

// onCapturedAudio runs on the capture device's delivery path for every raw
// PCM buffer. It classifies the chunk, feeds the idle machinery, realizes
// barge-in and hands the chunk to the multiplexer. The device reuses its
// buffer, so the chunk gets its own copy.
func (s *Session) onCapturedAudio(pcm []byte) {
	owned := make([]byte, len(pcm))
	copy(owned, pcm)

	chunk := audio.Chunk{
		PCM:        owned,
		SampleRate: s.captureEncoding.SampleRate,
		Channels:   s.captureEncoding.Channels,
		CapturedAt: time.Now(),
	}
	s.capturedAudio.Add(int64(chunk.Duration()))

	if s.detector.IsSpeech(chunk) {
		now := time.Now()
		s.clock.MarkActivity(now)
		s.policy.ObserveActivity(now)

		// Local speech over remote audio is a barge-in: pending playback is
		// stale the moment the user starts talking.
		if s.playback.Pending() > 0 {
			s.playback.Flush()
		}
	}

	if err := s.mux.EnqueueAudio(events.NewAudioFrameEvent(chunk)); err != nil {
		// The overflow is already latched; the send loop surfaces it as the
		// fatal condition. Nothing useful to do with this chunk.
		logger.Warn("dropping audio chunk after queue overflow")
	}
}

// runScreenCapture grabs, sharpens and encodes one frame per interval until
// the context ends. Capture failures degrade the session to audio-only
// instead of killing it.
func (s *Session) runScreenCapture(ctx context.Context) {
	ticker := time.NewTicker(s.config.ScreenInterval)
	defer ticker.Stop()

	const maxConsecutiveFailures = 3
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		img, err := s.screenSource.Capture()
		if err != nil {
			failures++
			logger.Warn("screen capture failed", "error", err, "failures", failures)
			if failures >= maxConsecutiveFailures {
				recordedErr := fmt.Errorf("degrading to audio-only after repeated screen capture failures on display %d: %w",
					s.screenSource.Display(), err)
				span := trace.SpanFromContext(ctx)
				span.RecordError(recordedErr)
				span.SetStatus(codes.Error, recordedErr.Error())
				logger.Warn("degrading to audio-only", "display", s.screenSource.Display())
				return
			}
			continue
		}
		failures = 0

		frame, err := video.Encode(img, time.Now())
		if err != nil {
			logger.Warn("failed to encode frame", "error", err)
			continue
		}

		s.mux.EnqueueVideo(events.NewVideoFrameEvent(frame))
	}
}
