// Package session implements the real-time multimodal session engine:
// microphone audio and periodic screen frames multiplexed to a remote live
// model endpoint over a persistent bidirectional stream, with concurrent
// consumption of the streamed responses driving local playback, an RMS
// voice-activity detector with barge-in, a keep-alive idle policy and bounded
// reconnection.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/klaramir/livesession/core/audio"
	"github.com/klaramir/livesession/core/audio/vad"
	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/models"
	"github.com/klaramir/livesession/core/prompts"
	"github.com/klaramir/livesession/core/tokens"
	"github.com/klaramir/livesession/core/transport"
	"github.com/klaramir/livesession/core/video/screen"
)

// Session is one live conversation. It owns every component's lifetime: the
// capture sources, the outbound multiplexer, the transport connection, the
// inbound dispatcher, the playback engine and the idle policy all run under
// its cancellation context and end together.
type Session struct {
	id     uuid.UUID
	config Config

	transportClient transport.Transport
	audioIn         AudioInput
	audioOut        AudioOutput
	screenSource    ScreenSource
	transcript      TranscriptSink
	toolExecutor    ToolExecutor
	tokenTracker    *tokens.Tracker
	promptProvider  prompts.Provider
	handleStore     HandleStore
	onReconnect     func(freshContext bool)

	state      *stateMachine
	clock      *activityClock
	policy     *idlePolicy
	playback   *playbackEngine
	mux        *outboundMux
	detector   *vad.Detector
	dispatcher *dispatcher

	captureEncoding audio.EncodingInfo
	modelName       string
	promptText      string

	capturedAudio atomic.Int64 // nanoseconds of microphone audio seen

	handleMu         sync.Mutex
	resumptionHandle string

	cancel   context.CancelFunc
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once

	errMu       sync.Mutex
	terminalErr error
	closeReason string
}

// New builds a session from config and collaborators. The transport and both
// audio devices are required; everything else is optional and degrades
// gracefully when absent.
func New(config Config, opts ...Option) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	s := &Session{
		id:       uuid.New(),
		config:   config,
		state:    newStateMachine(),
		clock:    newActivityClock(now),
		policy:   newIdlePolicy(config.IdleTimeout, config.KeepAliveWindow, config.MaxUnansweredPrompts, now),
		playback: newPlaybackEngine(),
		mux:      newOutboundMux(config.AudioQueueDepth, config.VideoQueueDepth),
		detector: vad.New(config.VADThreshold),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.transportClient == nil {
		return nil, &ConfigurationError{Field: "Transport", Err: fmt.Errorf("transport is required")}
	}
	if s.audioIn == nil {
		return nil, &ConfigurationError{Field: "AudioInput", Err: fmt.Errorf("audio input is required")}
	}
	if s.audioOut == nil {
		return nil, &ConfigurationError{Field: "AudioOutput", Err: fmt.Errorf("audio output is required")}
	}

	s.dispatcher = &dispatcher{
		playback:     s.playback,
		mux:          s.mux,
		clock:        s.clock,
		policy:       s.policy,
		transcript:   s.transcript,
		toolExecutor: s.toolExecutor,
		tokenTracker: s.tokenTracker,
		handleStore:  s.handleStore,
	}

	return s, nil
}

// Start resolves startup dependencies, starts the capture and playback
// devices and launches the supervision loop. It returns once the session is
// running; terminal outcomes are observed through Wait and Err.
func (s *Session) Start(ctx context.Context) error {
	if s.state.Current().Terminal() {
		return errors.New("session is closed")
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, span := tracer.Start(ctx, "start session")
	defer span.End()

	// fail finishes the session so Wait observes startup failures too.
	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.finishFailed(err)
		close(s.done)
		return err
	}

	modelName, err := models.Resolve(s.config.Model)
	if err != nil {
		return fail(&ConfigurationError{Field: "Model", Err: err})
	}
	s.modelName = modelName

	if s.promptProvider != nil && s.config.PromptVersion != "" {
		var resolveOpts []prompts.ResolveOption
		if s.config.PromptCommitRef != "" {
			resolveOpts = append(resolveOpts, prompts.WithCommitRef(s.config.PromptCommitRef))
		}
		text, err := s.promptProvider.Resolve(ctx, s.config.PromptVersion, resolveOpts...)
		if err != nil {
			// Prompt resolution is a startup-time, non-retried dependency.
			return fail(&ConfigurationError{Field: "PromptVersion", Err: err})
		}
		s.promptText = text
	}

	if s.config.ResumeOnReconnect && s.handleStore != nil {
		if handle, err := s.handleStore.Load(); err != nil {
			logger.Warn("failed to load resumption handle", "error", err)
		} else {
			s.setResumptionHandle(handle)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.audioOut.StartPlayback(runCtx, s.playback.Fill); err != nil {
		cancel()
		return fail(&DeviceError{Modality: "audio output", Err: err})
	}

	s.captureEncoding = s.audioIn.EncodingInfo()
	if err := s.audioIn.StartCapture(runCtx, s.onCapturedAudio); err != nil {
		// Audio capture is fatal to the session; there is no audio-less mode.
		if stopErr := s.audioOut.StopPlayback(); stopErr != nil {
			logger.Warn("failed to stop playback", "error", stopErr)
		}
		cancel()
		return fail(&DeviceError{Modality: "audio input", Err: err})
	}

	if s.screenSource == nil && s.config.ScreenInterval > 0 {
		capturer, err := screen.NewCapturer(s.config.ScreenDisplay)
		if err != nil {
			// Screen capture failure degrades to audio-only, it never kills
			// the session.
			logger.Warn("screen capture unavailable, continuing audio-only", "error", err)
		} else {
			s.screenSource = capturer
		}
	}

	if s.screenSource != nil && s.config.ScreenInterval > 0 {
		if s.screenSource.Degraded() {
			logger.Warn("screen source degraded to fallback display", "display", s.screenSource.Display())
		}
		go s.runScreenCapture(runCtx)
	}

	go s.run(runCtx)
	return nil
}

// Stop requests graceful shutdown and waits for the supervision loop to
// unwind, up to the configured timeout.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		if !s.started.Load() {
			s.state.Transition(StateClosed)
			close(s.done)
			return
		}

		s.state.Transition(StateClosing)
		if s.cancel != nil {
			s.cancel()
		}

		select {
		case <-s.done:
		case <-time.After(s.config.StopTimeout):
			logger.Warn("session stop timed out waiting for components")
		}
	})
}

// Wait returns a channel closed when the session reaches a terminal state.
func (s *Session) Wait() <-chan struct{} { return s.done }

// Err returns the terminal error, or nil for a clean close (including the
// designed keep-alive session end).
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.terminalErr
}

// CloseReason describes why a cleanly closed session ended.
func (s *Session) CloseReason() string {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.closeReason
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State { return s.state.Current() }

// SendText submits a user text turn through the multiplexer. Typing counts as
// activity for the idle policy.
func (s *Session) SendText(text string) error {
	if s.state.Current().Terminal() {
		return errors.New("session is closed")
	}

	now := time.Now()
	s.clock.MarkActivity(now)
	s.policy.ObserveActivity(now)
	return s.mux.EnqueueText(events.NewTextTurnEvent(text))
}

// Diagnostics is a point-in-time snapshot of the session's liveness state,
// for operator surfaces.
type Diagnostics struct {
	State            State
	LastActivity     time.Time
	LastPromptSent   time.Time
	CapturedAudio    time.Duration
	BufferedPlayback time.Duration
}

func (s *Session) Diagnostics() Diagnostics {
	var buffered time.Duration
	if rate := s.audioOut.PlaybackEncodingInfo().BytesPerSecond(); rate > 0 {
		buffered = time.Duration(s.playback.Pending()) * time.Second / time.Duration(rate)
	}

	return Diagnostics{
		State:            s.state.Current(),
		LastActivity:     s.clock.LastActivity(),
		LastPromptSent:   s.clock.LastPromptSent(),
		CapturedAudio:    time.Duration(s.capturedAudio.Load()),
		BufferedPlayback: buffered,
	}
}

// ResumptionHandle returns the latest handle issued by the endpoint, or ""
// when resumption has not been offered.
func (s *Session) ResumptionHandle() string {
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	return s.resumptionHandle
}

func (s *Session) setResumptionHandle(handle string) {
	if handle == "" {
		return
	}
	s.handleMu.Lock()
	defer s.handleMu.Unlock()
	s.resumptionHandle = handle
}
