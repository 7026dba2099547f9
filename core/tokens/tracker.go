// Package tokens accumulates token usage reported by the remote endpoint.
// The tracker is an optional diagnostic collaborator; a nil tracker is a
// valid, inert instance and every method is safe to call on it.
package tokens

import (
	"fmt"
	"sync"
)

type Usage struct {
	Prompt   int
	Response int
}

type Tracker struct {
	mu       sync.Mutex
	prompt   int
	response int
	updates  int
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Add folds one usage report into the totals. Counters are monotonically
// non-decreasing: negative deltas are ignored.
func (t *Tracker) Add(usage Usage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if usage.Prompt > 0 {
		t.prompt += usage.Prompt
	}
	if usage.Response > 0 {
		t.response += usage.Response
	}
	t.updates++
}

func (t *Tracker) Total() Usage {
	if t == nil {
		return Usage{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return Usage{Prompt: t.prompt, Response: t.response}
}

func (t *Tracker) Summary() string {
	if t == nil {
		return "token usage: untracked"
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("token usage: %d prompt / %d response (%d updates)", t.prompt, t.response, t.updates)
}
