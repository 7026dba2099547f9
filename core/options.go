package session

import (
	"context"
	"image"

	"github.com/klaramir/livesession/core/audio"
	"github.com/klaramir/livesession/core/prompts"
	"github.com/klaramir/livesession/core/tokens"
	"github.com/klaramir/livesession/core/transport"
)

type Option func(*Session)

// AudioInput is the microphone capture device. The callback receives raw PCM
// in the device's encoding; the slice is only valid for the duration of the
// call.
type AudioInput interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

// AudioOutput drives the continuous playback stream. The fill callback is
// invoked from the device's real-time context and must never block.
type AudioOutput interface {
	StartPlayback(ctx context.Context, fill func(out []byte)) error
	StopPlayback() error
	PlaybackEncodingInfo() audio.EncodingInfo
}

// ScreenSource produces raw display frames for the video modality.
type ScreenSource interface {
	Capture() (*image.RGBA, error)
	Display() int
	Degraded() bool
}

// TranscriptSink receives the model's output transcription. Best-effort
// collaborator; failures are logged, never escalated.
type TranscriptSink interface {
	OnTranscriptDelta(text string, final bool)
	OnTurnComplete()
}

// ToolExecutor runs tool calls requested by the model. tools.Registry
// satisfies it.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// HandleStore persists the latest session resumption handle across process
// restarts. Best-effort collaborator.
type HandleStore interface {
	Load() (string, error)
	Save(handle string) error
}

func WithTransport(client transport.Transport) Option {
	return func(s *Session) { s.transportClient = client }
}

func WithAudioInput(client AudioInput) Option {
	return func(s *Session) { s.audioIn = client }
}

func WithAudioOutput(client AudioOutput) Option {
	return func(s *Session) { s.audioOut = client }
}

func WithScreenSource(source ScreenSource) Option {
	return func(s *Session) { s.screenSource = source }
}

func WithTranscriptSink(sink TranscriptSink) Option {
	return func(s *Session) { s.transcript = sink }
}

func WithToolExecutor(executor ToolExecutor) Option {
	return func(s *Session) { s.toolExecutor = executor }
}

// WithTokenTracker attaches the optional usage tracker. A nil tracker is a
// valid no-op.
func WithTokenTracker(tracker *tokens.Tracker) Option {
	return func(s *Session) { s.tokenTracker = tracker }
}

func WithPromptProvider(provider prompts.Provider) Option {
	return func(s *Session) { s.promptProvider = provider }
}

func WithHandleStore(store HandleStore) Option {
	return func(s *Session) { s.handleStore = store }
}

// WithReconnectCallback registers a callback invoked after every successful
// reconnect. freshContext is true when the remote conversational context was
// not resumed and the conversation effectively starts over.
func WithReconnectCallback(callback func(freshContext bool)) Option {
	return func(s *Session) { s.onReconnect = callback }
}
