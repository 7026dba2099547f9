package events

import (
	"fmt"
	"time"

	"github.com/klaramir/livesession/core/audio"
	"github.com/klaramir/livesession/core/video"
)

// Outbound is the tagged variant of everything the session sends upstream.
type Outbound interface {
	Kind() Kind
	Timestamp() time.Time
	outbound()
}

const (
	KindAudioFrame Kind = "outbound.audio_frame"
	KindVideoFrame Kind = "outbound.video_frame"
	KindTextTurn   Kind = "outbound.text_turn"
	KindToolResult Kind = "outbound.tool_result"
)

type AudioFrameEvent struct {
	Base
	Chunk audio.Chunk
}

func (e AudioFrameEvent) String() string { return fmt.Sprintf("audio frame (%d bytes)", len(e.Chunk.PCM)) }
func (e AudioFrameEvent) outbound()      {}

func NewAudioFrameEvent(chunk audio.Chunk, opts ...BaseOption) AudioFrameEvent {
	base := NewBase(KindAudioFrame)
	for _, opt := range opts {
		opt(&base)
	}

	return AudioFrameEvent{Base: base, Chunk: chunk}
}

type VideoFrameEvent struct {
	Base
	Frame video.Frame
}

func (e VideoFrameEvent) String() string {
	return fmt.Sprintf("video frame (%dx%d)", e.Frame.Width, e.Frame.Height)
}
func (e VideoFrameEvent) outbound() {}

func NewVideoFrameEvent(frame video.Frame, opts ...BaseOption) VideoFrameEvent {
	base := NewBase(KindVideoFrame)
	for _, opt := range opts {
		opt(&base)
	}

	return VideoFrameEvent{Base: base, Frame: frame}
}

type TextTurnEvent struct {
	Base
	Text string
	// Synthetic marks turns generated by the session itself (keep-alive
	// prompts) rather than typed by the user.
	Synthetic bool
}

func (e TextTurnEvent) String() string { return e.Text }
func (e TextTurnEvent) outbound()      {}

func NewTextTurnEvent(text string, opts ...BaseOption) TextTurnEvent {
	base := NewBase(KindTextTurn)
	for _, opt := range opts {
		opt(&base)
	}

	return TextTurnEvent{Base: base, Text: text}
}

func NewSyntheticTextTurnEvent(text string, opts ...BaseOption) TextTurnEvent {
	event := NewTextTurnEvent(text, opts...)
	event.Synthetic = true
	return event
}

type ToolResultEvent struct {
	Base
	CallID string
	Name   string
	Result any
}

func (e ToolResultEvent) String() string { return "tool result: " + e.Name }
func (e ToolResultEvent) outbound()      {}

func NewToolResultEvent(callID, name string, result any, opts ...BaseOption) ToolResultEvent {
	base := NewBase(KindToolResult)
	for _, opt := range opts {
		opt(&base)
	}

	return ToolResultEvent{Base: base, CallID: callID, Name: name, Result: result}
}
