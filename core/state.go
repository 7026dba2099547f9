package session

import "sync"

// State is the session's externally visible lifecycle state. Exactly one
// state is live per session instance.
type State string

const (
	StateConnecting             State = "connecting"
	StateActive                 State = "active"
	StateAwaitingKeepAliveReply State = "awaiting_keep_alive_response"
	StateClosing                State = "closing"
	StateClosed                 State = "closed"
	StateFailed                 State = "failed"
)

// Terminal reports whether the state ends the session.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateFailed
}

// stateMachine guards State transitions. The lifecycle manager is the only
// writer; everything else reads. Terminal states are sticky.
type stateMachine struct {
	mu    sync.Mutex
	state State
}

func newStateMachine() *stateMachine {
	return &stateMachine{state: StateConnecting}
}

func (m *stateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves to next unless the machine is already terminal. It reports
// whether the transition was applied, so terminal transitions can be observed
// exactly once.
func (m *stateMachine) Transition(next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Terminal() {
		return false
	}
	if m.state == next {
		return false
	}
	m.state = next
	return true
}
