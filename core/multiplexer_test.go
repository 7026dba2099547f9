package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/klaramir/livesession/core/audio"
	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/video"
)

func audioEvent(marker byte) events.AudioFrameEvent {
	return events.NewAudioFrameEvent(audio.Chunk{PCM: []byte{marker, 0}})
}

func videoEvent(width int) events.VideoFrameEvent {
	return events.NewVideoFrameEvent(video.Frame{Encoded: []byte{0}, Width: width})
}

func TestMultiplexerPreservesAudioCaptureOrder(t *testing.T) {
	mux := newOutboundMux(16, 2)
	for i := byte(0); i < 10; i++ {
		if err := mux.EnqueueAudio(audioEvent(i)); err != nil {
			t.Fatalf("expected enqueue %d to succeed, got %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sent []events.Outbound
	sendErr := errors.New("done")
	err := mux.run(ctx, func(_ context.Context, event events.Outbound) error {
		sent = append(sent, event)
		if len(sent) == 10 {
			return sendErr
		}
		return nil
	})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected run to stop on send error, got %v", err)
	}

	for i, event := range sent {
		frame, ok := event.(events.AudioFrameEvent)
		if !ok {
			t.Fatalf("expected audio frame at position %d, got %T", i, event)
		}
		if frame.Chunk.PCM[0] != byte(i) {
			t.Fatalf("expected chunk %d at position %d, got %d", i, i, frame.Chunk.PCM[0])
		}
	}
}

func TestMultiplexerDrainsAudioBeforeVideo(t *testing.T) {
	mux := newOutboundMux(16, 4)
	mux.EnqueueVideo(videoEvent(1))
	if err := mux.EnqueueAudio(audioEvent(1)); err != nil {
		t.Fatalf("expected audio enqueue to succeed, got %v", err)
	}
	if err := mux.EnqueueAudio(audioEvent(2)); err != nil {
		t.Fatalf("expected audio enqueue to succeed, got %v", err)
	}

	var kinds []events.Kind
	stop := errors.New("done")
	err := mux.run(context.Background(), func(_ context.Context, event events.Outbound) error {
		kinds = append(kinds, event.Kind())
		if len(kinds) == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected run to stop after three sends, got %v", err)
	}

	expected := []events.Kind{events.KindAudioFrame, events.KindAudioFrame, events.KindVideoFrame}
	for i, kind := range expected {
		if kinds[i] != kind {
			t.Fatalf("expected %s at position %d, got %s", kind, i, kinds[i])
		}
	}
}

func TestMultiplexerDropsOldestVideoUnderPressure(t *testing.T) {
	mux := newOutboundMux(16, 2)
	mux.EnqueueVideo(videoEvent(1))
	mux.EnqueueVideo(videoEvent(2))
	mux.EnqueueVideo(videoEvent(3))

	var widths []int
	stop := errors.New("done")
	err := mux.run(context.Background(), func(_ context.Context, event events.Outbound) error {
		frame := event.(events.VideoFrameEvent)
		widths = append(widths, frame.Frame.Width)
		if len(widths) == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected run to stop after two sends, got %v", err)
	}

	if widths[0] != 2 || widths[1] != 3 {
		t.Fatalf("expected oldest frame dropped, got widths %v", widths)
	}
}

func TestMultiplexerVideoPressureNeverDropsAudio(t *testing.T) {
	mux := newOutboundMux(4, 1)

	for i := byte(0); i < 4; i++ {
		if err := mux.EnqueueAudio(audioEvent(i)); err != nil {
			t.Fatalf("expected audio enqueue %d to succeed, got %v", i, err)
		}
	}
	for i := 0; i < 10; i++ {
		mux.EnqueueVideo(videoEvent(i))
	}

	if len(mux.priority) != 4 {
		t.Fatalf("expected all 4 audio events queued, got %d", len(mux.priority))
	}
}

func TestMultiplexerAudioOverflowIsFatal(t *testing.T) {
	mux := newOutboundMux(2, 1)

	if err := mux.EnqueueAudio(audioEvent(1)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if err := mux.EnqueueAudio(audioEvent(2)); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if err := mux.EnqueueAudio(audioEvent(3)); !errors.Is(err, ErrBackpressureOverflow) {
		t.Fatalf("expected overflow error, got %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- mux.run(context.Background(), func(context.Context, events.Outbound) error {
			return nil
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrBackpressureOverflow) {
			t.Fatalf("expected run to surface the overflow, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected run to stop after latched overflow")
	}
}

func TestMultiplexerStopsOnContextCancellation(t *testing.T) {
	mux := newOutboundMux(4, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mux.run(ctx, func(context.Context, events.Outbound) error {
		return fmt.Errorf("send should not be reached")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
