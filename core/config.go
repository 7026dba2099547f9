package session

import (
	"fmt"
	"time"

	"github.com/klaramir/livesession/core/audio/vad"
	"github.com/klaramir/livesession/core/models"
	"github.com/klaramir/livesession/core/video/screen"
)

// Config is the configuration surface consumed at session start. Zero values
// are filled from DefaultConfig by Validate, so callers only set what they
// need to change.
type Config struct {
	// Model selects the remote model by small integer identifier. Invalid
	// identifiers fail fast before any connection attempt.
	Model models.ID

	// PromptVersion names the system prompt to resolve through the prompt
	// provider. Empty skips prompt resolution.
	PromptVersion string
	// PromptCommitRef optionally pins PromptVersion to a specific commit.
	PromptCommitRef string

	// IdleTimeout is how long the session waits after the last speech or turn
	// completion before probing the user with the keep-alive prompt.
	IdleTimeout time.Duration
	// KeepAliveWindow is how long a sent keep-alive prompt waits for a
	// response before the session terminates (or re-prompts).
	KeepAliveWindow time.Duration
	// MaxUnansweredPrompts is how many consecutive unanswered keep-alive
	// prompts are tolerated before the session says goodbye and closes.
	MaxUnansweredPrompts int
	// KeepAlivePrompt is the synthetic turn text sent to probe user presence.
	KeepAlivePrompt string
	// FarewellText is spoken once the keep-alive budget is exhausted, just
	// before the graceful close.
	FarewellText string

	// VADThreshold is the normalized RMS level above which captured audio
	// counts as speech.
	VADThreshold float64

	// ScreenInterval is the cadence of screen frame capture. Zero disables
	// the video modality entirely.
	ScreenInterval time.Duration
	// ScreenDisplay is the preferred display index to capture.
	ScreenDisplay int

	// AudioQueueDepth bounds the outbound audio queue. Overflow here is a
	// fatal backpressure condition.
	AudioQueueDepth int
	// VideoQueueDepth bounds the outbound video queue. Overflow drops the
	// oldest frame.
	VideoQueueDepth int

	// MaxReconnectAttempts bounds consecutive transient-failure reconnects.
	MaxReconnectAttempts int
	// ReconnectBackoff is the initial backoff delay; it doubles per attempt.
	ReconnectBackoff time.Duration
	// ResumeOnReconnect asks the endpoint to resume the previous
	// conversational context when it has issued a resumption handle. Without
	// it (or without a handle) a reconnect starts a fresh turn context, which
	// is surfaced on the reconnect notification rather than silently assumed.
	ResumeOnReconnect bool

	// StopTimeout bounds graceful shutdown before component tasks are
	// force-cancelled.
	StopTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Model:                models.NativeAudio,
		IdleTimeout:          30 * time.Second,
		KeepAliveWindow:      15 * time.Second,
		MaxUnansweredPrompts: 1,
		KeepAlivePrompt:      "Are you still there?",
		FarewellText:         "I'll pause until you're back. Just start talking when you return.",
		VADThreshold:         vad.DefaultThreshold,
		ScreenInterval:       time.Second,
		ScreenDisplay:        screen.DefaultDisplay,
		AudioQueueDepth:      64,
		VideoQueueDepth:      2,
		MaxReconnectAttempts: 5,
		ReconnectBackoff:     500 * time.Millisecond,
		StopTimeout:          5 * time.Second,
	}
}

// Validate fills unset fields from the defaults and rejects configurations the
// session cannot run with.
func (c *Config) Validate() error {
	defaults := DefaultConfig()

	if c.Model == 0 {
		c.Model = defaults.Model
	}
	if _, err := models.Resolve(c.Model); err != nil {
		return &ConfigurationError{Field: "Model", Err: err}
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = defaults.IdleTimeout
	}
	if c.KeepAliveWindow == 0 {
		c.KeepAliveWindow = defaults.KeepAliveWindow
	}
	if c.IdleTimeout < 0 || c.KeepAliveWindow < 0 {
		return &ConfigurationError{Field: "IdleTimeout", Err: fmt.Errorf("timeouts must be positive")}
	}
	if c.MaxUnansweredPrompts <= 0 {
		c.MaxUnansweredPrompts = defaults.MaxUnansweredPrompts
	}
	if c.KeepAlivePrompt == "" {
		c.KeepAlivePrompt = defaults.KeepAlivePrompt
	}
	if c.FarewellText == "" {
		c.FarewellText = defaults.FarewellText
	}

	if c.VADThreshold == 0 {
		c.VADThreshold = defaults.VADThreshold
	}
	if c.VADThreshold < 0 {
		return &ConfigurationError{Field: "VADThreshold", Err: fmt.Errorf("threshold must be non-negative")}
	}

	if c.ScreenInterval < 0 {
		return &ConfigurationError{Field: "ScreenInterval", Err: fmt.Errorf("interval must be non-negative")}
	}

	if c.AudioQueueDepth <= 0 {
		c.AudioQueueDepth = defaults.AudioQueueDepth
	}
	if c.VideoQueueDepth <= 0 {
		c.VideoQueueDepth = defaults.VideoQueueDepth
	}

	if c.MaxReconnectAttempts < 0 {
		return &ConfigurationError{Field: "MaxReconnectAttempts", Err: fmt.Errorf("retry bound must be non-negative")}
	}
	if c.ReconnectBackoff <= 0 {
		c.ReconnectBackoff = defaults.ReconnectBackoff
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = defaults.StopTimeout
	}

	return nil
}
