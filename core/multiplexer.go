package session

import (
	"context"
	"sync"

	"github.com/klaramir/livesession/core/events"
)

// outboundMux serializes capture output into the ordered event sequence the
// transport send loop consumes. Audio, text turns and tool results share one
// bounded FIFO with latency priority; video rides a separate queue that drops
// its oldest frame under pressure. Audio is never dropped: overflow of the
// priority queue is a fatal condition surfaced through the send loop.
type outboundMux struct {
	priority chan events.Outbound
	video    chan events.Outbound

	overflowOnce sync.Once
	overflowed   chan struct{}
}

func newOutboundMux(audioDepth, videoDepth int) *outboundMux {
	return &outboundMux{
		priority:   make(chan events.Outbound, audioDepth),
		video:      make(chan events.Outbound, videoDepth),
		overflowed: make(chan struct{}),
	}
}

// EnqueueAudio submits one captured chunk. A full queue means the transport
// cannot keep up with real-time capture; dropping audio would corrupt
// conversational state, so the overflow is latched and the send loop fails.
func (m *outboundMux) EnqueueAudio(event events.AudioFrameEvent) error {
	return m.enqueuePriority(event)
}

// EnqueueText submits a user or synthetic text turn.
func (m *outboundMux) EnqueueText(event events.TextTurnEvent) error {
	return m.enqueuePriority(event)
}

// EnqueueToolResult submits a completed tool call result.
func (m *outboundMux) EnqueueToolResult(event events.ToolResultEvent) error {
	return m.enqueuePriority(event)
}

func (m *outboundMux) enqueuePriority(event events.Outbound) error {
	select {
	case m.priority <- event:
		return nil
	default:
		m.overflowOnce.Do(func() { close(m.overflowed) })
		return ErrBackpressureOverflow
	}
}

// EnqueueVideo submits one frame, evicting the oldest queued frame when full.
// Stale frames are low-value past their capture interval.
func (m *outboundMux) EnqueueVideo(event events.VideoFrameEvent) {
	for {
		select {
		case m.video <- event:
			return
		default:
		}

		select {
		case <-m.video:
		default:
		}
	}
}

// run forwards queued events through send until the context ends, a send
// fails, or audio overflow is latched. The priority queue is always drained
// before a video frame is considered, and its FIFO order preserves capture
// order end to end.
func (m *outboundMux) run(ctx context.Context, send func(context.Context, events.Outbound) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.overflowed:
			return ErrBackpressureOverflow
		case event := <-m.priority:
			if err := send(ctx, event); err != nil {
				return err
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.overflowed:
			return ErrBackpressureOverflow
		case event := <-m.priority:
			if err := send(ctx, event); err != nil {
				return err
			}
		case event := <-m.video:
			if err := send(ctx, event); err != nil {
				return err
			}
		}
	}
}
