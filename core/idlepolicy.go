package session

import (
	"sync"
	"time"
)

type idleState int

const (
	idleListening idleState = iota
	idlePromptSent
	idleTerminating
)

func (s idleState) String() string {
	switch s {
	case idleListening:
		return "listening"
	case idlePromptSent:
		return "prompt_sent"
	case idleTerminating:
		return "terminating"
	}
	return "unknown"
}

type idleAction int

const (
	idleActionNone idleAction = iota
	// idleActionPrompt instructs the runtime to send the keep-alive prompt.
	idleActionPrompt
	// idleActionTerminate instructs the runtime to close the session.
	idleActionTerminate
)

// idlePolicy is the keep-alive state machine. It is driven by a runtime
// ticker through Advance and fed activity observations by the capture path and
// the dispatcher; all decisions are pure functions of the observed timestamps,
// so tests drive it with synthetic clocks.
type idlePolicy struct {
	mu sync.Mutex

	state         idleState
	idleTimeout   time.Duration
	window        time.Duration
	maxUnanswered int

	unanswered   int
	lastActivity time.Time
	promptSentAt time.Time
}

func newIdlePolicy(idleTimeout, responseWindow time.Duration, maxUnanswered int, now time.Time) *idlePolicy {
	if maxUnanswered <= 0 {
		maxUnanswered = 1
	}
	return &idlePolicy{
		state:         idleListening,
		idleTimeout:   idleTimeout,
		window:        responseWindow,
		maxUnanswered: maxUnanswered,
		lastActivity:  now,
	}
}

// ObserveActivity records user speech or a typed text turn. User activity in
// any state resets the machine to listening.
func (p *idlePolicy) ObserveActivity(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = idleListening
	p.unanswered = 0
	if now.After(p.lastActivity) {
		p.lastActivity = now
	}
}

// ObserveTurnComplete resumes the idle timer from the completion timestamp.
// It deliberately does not answer an outstanding keep-alive prompt: the turn
// that completed is the model speaking the prompt, not the user replying.
func (p *idlePolicy) ObserveTurnComplete(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == idleListening && now.After(p.lastActivity) {
		p.lastActivity = now
	}
}

// Advance evaluates the machine at now and returns the action the runtime
// must take. A prompt is emitted exactly once per elapsed idle period;
// re-prompts only happen when the unanswered budget allows.
func (p *idlePolicy) Advance(now time.Time) idleAction {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case idleListening:
		if now.Sub(p.lastActivity) >= p.idleTimeout {
			p.state = idlePromptSent
			p.promptSentAt = now
			p.unanswered++
			return idleActionPrompt
		}

	case idlePromptSent:
		if now.Sub(p.promptSentAt) >= p.window {
			if p.unanswered >= p.maxUnanswered {
				p.state = idleTerminating
				return idleActionTerminate
			}
			p.promptSentAt = now
			p.unanswered++
			return idleActionPrompt
		}
	}

	return idleActionNone
}

func (p *idlePolicy) State() idleState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
