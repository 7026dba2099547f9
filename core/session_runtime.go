package session

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/transport"
)

// idleTickInterval is the cadence at which the idle policy is evaluated. It
// only bounds keep-alive timing resolution, not correctness.
const idleTickInterval = 100 * time.Millisecond

// run is the supervision loop: connect, drive one connection until it ends,
// then decide between reconnecting with backoff and finishing. It is the sole
// authority over terminal state transitions.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	defer s.stopDevices()

	attempts := 0
	backoff := s.config.ReconnectBackoff
	connectedBefore := false

	for {
		if ctx.Err() != nil {
			s.finishClosed("stop requested")
			return
		}

		connectOpts := []transport.ConnectOption{transport.WithModel(s.modelName)}
		if s.promptText != "" {
			connectOpts = append(connectOpts, transport.WithSystemPrompt(s.promptText))
		}
		resumed := false
		if s.config.ResumeOnReconnect {
			if handle := s.ResumptionHandle(); handle != "" {
				connectOpts = append(connectOpts, transport.WithResumptionHandle(handle))
				resumed = true
			}
		}

		conn, err := s.transportClient.Connect(ctx, connectOpts...)
		if err != nil {
			if ctx.Err() != nil {
				s.finishClosed("stop requested")
				return
			}
			if transport.IsTransient(err) && attempts < s.config.MaxReconnectAttempts {
				attempts++
				logger.Debug("reconnecting after transient connect failure",
					"attempt", attempts, "backoff", backoff)
				if !sleepContext(ctx, backoff) {
					s.finishClosed("stop requested")
					return
				}
				backoff *= 2
				continue
			}
			s.finishFailed(err)
			return
		}

		attempts = 0
		backoff = s.config.ReconnectBackoff

		if connectedBefore && s.onReconnect != nil {
			s.onReconnect(!resumed)
		}
		connectedBefore = true
		s.state.Transition(StateActive)

		err = s.runConnection(ctx, conn)
		s.setResumptionHandle(conn.ResumptionHandle())
		if closeErr := conn.Close(); closeErr != nil {
			logger.Debug("connection close failed", "error", closeErr)
		}

		switch {
		case errors.Is(err, ErrKeepAliveTimeout):
			s.finishClosed("keep-alive prompt unanswered")
			return

		case ctx.Err() != nil:
			s.finishClosed("stop requested")
			return

		case errors.Is(err, ErrBackpressureOverflow):
			// The overflow is latched in the multiplexer; a redial would hit
			// it again immediately.
			s.finishFailed(err)
			return

		case retryableStreamError(err) && attempts < s.config.MaxReconnectAttempts:
			s.state.Transition(StateConnecting)
			attempts++
			logger.Debug("reconnecting after transient stream failure",
				"attempt", attempts, "backoff", backoff)
			if !sleepContext(ctx, backoff) {
				s.finishClosed("stop requested")
				return
			}
			backoff *= 2

		default:
			s.finishFailed(err)
			return
		}
	}
}

// runConnection drives one established connection: the multiplexer send loop,
// the receive/dispatch loop and the idle ticker, all under one errgroup. The
// first failure cancels the rest; closing the connection unblocks a receive
// stuck inside the websocket read.
func (s *Session) runConnection(ctx context.Context, conn transport.Conn) error {
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		<-gctx.Done()
		conn.Close()
		return nil
	})

	group.Go(func() error {
		return s.mux.run(gctx, conn.Send)
	})

	group.Go(func() error {
		for {
			event, err := conn.Receive(gctx)
			if err != nil {
				return err
			}
			if err := s.dispatcher.dispatch(gctx, event); err != nil {
				return err
			}
		}
	})

	group.Go(func() error {
		return s.runIdleTicker(gctx)
	})

	return group.Wait()
}

// runIdleTicker evaluates the keep-alive policy on a fixed cadence and
// executes whatever it decides.
func (s *Session) runIdleTicker(ctx context.Context) error {
	ticker := time.NewTicker(idleTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-ticker.C:
			switch s.policy.Advance(now) {
			case idleActionPrompt:
				s.state.Transition(StateAwaitingKeepAliveReply)
				s.clock.MarkPromptSent(now)
				if err := s.mux.EnqueueText(events.NewSyntheticTextTurnEvent(s.config.KeepAlivePrompt)); err != nil {
					return err
				}
				logger.Info("sent keep-alive prompt")

			case idleActionTerminate:
				if s.config.FarewellText != "" {
					// Best effort; the close races the farewell out.
					if err := s.mux.EnqueueText(events.NewSyntheticTextTurnEvent(s.config.FarewellText)); err != nil {
						logger.Debug("failed to submit farewell", "error", err)
					}
				}
				return ErrKeepAliveTimeout

			case idleActionNone:
				if s.state.Current() == StateAwaitingKeepAliveReply && s.policy.State() == idleListening {
					s.state.Transition(StateActive)
				}
			}
		}
	}
}

func (s *Session) stopDevices() {
	if err := s.audioIn.StopCapture(); err != nil {
		logger.Warn("failed to stop audio capture", "error", err)
	}
	if err := s.audioOut.StopPlayback(); err != nil {
		logger.Warn("failed to stop audio playback", "error", err)
	}
	s.playback.Flush()
}

// finishClosed records a clean session end. Closed is a designed outcome;
// Err stays nil.
func (s *Session) finishClosed(reason string) {
	s.errMu.Lock()
	if s.closeReason == "" {
		s.closeReason = reason
	}
	s.errMu.Unlock()

	s.state.Transition(StateClosing)
	if s.state.Transition(StateClosed) {
		logger.Info("session closed", "reason", reason)
	}
}

// finishFailed records the terminal error and transitions to Failed exactly
// once.
func (s *Session) finishFailed(err error) {
	s.errMu.Lock()
	if s.terminalErr == nil {
		s.terminalErr = err
	}
	s.errMu.Unlock()

	if s.state.Transition(StateFailed) {
		logger.Error("session failed", "error", err)
	}
}

// retryableStreamError reports whether a failed connection is worth a redial.
// Only errors the transport itself classified as transient qualify;
// session-level failures end the session no matter how they wrap.
func retryableStreamError(err error) bool {
	var transportErr *transport.Error
	return errors.As(err, &transportErr) && transportErr.Kind == transport.KindTransient
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
