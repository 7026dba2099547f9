package session

import (
	"errors"
	"fmt"
)

// ErrKeepAliveTimeout marks the designed session end after an unanswered
// keep-alive prompt. It drives a graceful close, not a failure.
var ErrKeepAliveTimeout = errors.New("keep-alive prompt went unanswered")

// ErrBackpressureOverflow marks sustained audio backpressure beyond the
// configured queue depth. Dropping audio would corrupt conversational state,
// so the condition is fatal to the session.
var ErrBackpressureOverflow = errors.New("outbound audio queue overflow")

// ErrAlreadyStarted is returned by Start on a session that already ran.
var ErrAlreadyStarted = errors.New("session already started")

// DeviceError reports capture hardware that is unavailable or failed
// mid-session. Modality states whether the session degrades or dies: audio is
// fatal, screen degrades to audio-only.
type DeviceError struct {
	Modality string
	Err      error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s device error: %v", e.Modality, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ConfigurationError reports invalid startup configuration, surfaced before
// any connection attempt and distinct from transport errors.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error (%s): %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
