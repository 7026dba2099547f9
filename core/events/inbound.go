package events

import (
	"fmt"
	"time"
)

// Inbound is the tagged variant of every decoded frame arriving from the
// remote endpoint.
type Inbound interface {
	Kind() Kind
	Timestamp() time.Time
	inbound()
}

const (
	KindTranscriptDelta         Kind = "inbound.transcript_delta"
	KindAudioDelta              Kind = "inbound.audio_delta"
	KindTurnComplete            Kind = "inbound.turn_complete"
	KindInterrupted             Kind = "inbound.interrupted"
	KindToolCallRequest         Kind = "inbound.tool_call_request"
	KindSessionResumptionUpdate Kind = "inbound.session_resumption_update"
	KindUsageMetadata           Kind = "inbound.usage_metadata"
	KindErrorSignal             Kind = "inbound.error_signal"
)

type TranscriptDeltaEvent struct {
	Base
	Text  string
	Final bool
}

func (e TranscriptDeltaEvent) String() string {
	if e.Final {
		return e.Text
	}
	return e.Text + "..."
}
func (e TranscriptDeltaEvent) inbound() {}

func NewTranscriptDeltaEvent(text string, final bool, opts ...BaseOption) TranscriptDeltaEvent {
	base := NewBase(KindTranscriptDelta)
	for _, opt := range opts {
		opt(&base)
	}

	return TranscriptDeltaEvent{Base: base, Text: text, Final: final}
}

type AudioDeltaEvent struct {
	Base
	PCM []byte
}

func (e AudioDeltaEvent) String() string { return fmt.Sprintf("audio delta (%d bytes)", len(e.PCM)) }
func (e AudioDeltaEvent) inbound()       {}

func NewAudioDeltaEvent(pcm []byte, opts ...BaseOption) AudioDeltaEvent {
	base := NewBase(KindAudioDelta)
	for _, opt := range opts {
		opt(&base)
	}

	return AudioDeltaEvent{Base: base, PCM: pcm}
}

type TurnCompleteEvent struct{ Base }

func (e TurnCompleteEvent) String() string { return "turn complete" }
func (e TurnCompleteEvent) inbound()       {}

func NewTurnCompleteEvent(opts ...BaseOption) TurnCompleteEvent {
	base := NewBase(KindTurnComplete)
	for _, opt := range opts {
		opt(&base)
	}

	return TurnCompleteEvent{Base: base}
}

type InterruptedEvent struct{ Base }

func (e InterruptedEvent) String() string { return "interrupted" }
func (e InterruptedEvent) inbound()       {}

func NewInterruptedEvent(opts ...BaseOption) InterruptedEvent {
	base := NewBase(KindInterrupted)
	for _, opt := range opts {
		opt(&base)
	}

	return InterruptedEvent{Base: base}
}

type ToolCallRequestEvent struct {
	Base
	CallID string
	Name   string
	Args   map[string]any
}

func (e ToolCallRequestEvent) String() string { return "tool call: " + e.Name }
func (e ToolCallRequestEvent) inbound()       {}

func NewToolCallRequestEvent(callID, name string, args map[string]any, opts ...BaseOption) ToolCallRequestEvent {
	base := NewBase(KindToolCallRequest)
	for _, opt := range opts {
		opt(&base)
	}

	return ToolCallRequestEvent{Base: base, CallID: callID, Name: name, Args: args}
}

type SessionResumptionUpdateEvent struct {
	Base
	Handle    string
	Resumable bool
}

func (e SessionResumptionUpdateEvent) String() string { return "session resumption update" }
func (e SessionResumptionUpdateEvent) inbound()       {}

func NewSessionResumptionUpdateEvent(handle string, resumable bool, opts ...BaseOption) SessionResumptionUpdateEvent {
	base := NewBase(KindSessionResumptionUpdate)
	for _, opt := range opts {
		opt(&base)
	}

	return SessionResumptionUpdateEvent{Base: base, Handle: handle, Resumable: resumable}
}

type UsageMetadataEvent struct {
	Base
	PromptTokens   int
	ResponseTokens int
}

func (e UsageMetadataEvent) String() string {
	return fmt.Sprintf("usage: %d prompt / %d response tokens", e.PromptTokens, e.ResponseTokens)
}
func (e UsageMetadataEvent) inbound() {}

func NewUsageMetadataEvent(promptTokens, responseTokens int, opts ...BaseOption) UsageMetadataEvent {
	base := NewBase(KindUsageMetadata)
	for _, opt := range opts {
		opt(&base)
	}

	return UsageMetadataEvent{Base: base, PromptTokens: promptTokens, ResponseTokens: responseTokens}
}

type ErrorSignalEvent struct {
	Base
	Code    string
	Message string
}

func (e ErrorSignalEvent) String() string { return "error signal: " + e.Code }
func (e ErrorSignalEvent) inbound()       {}

func NewErrorSignalEvent(code, message string, opts ...BaseOption) ErrorSignalEvent {
	base := NewBase(KindErrorSignal)
	for _, opt := range opts {
		opt(&base)
	}

	return ErrorSignalEvent{Base: base, Code: code, Message: message}
}
