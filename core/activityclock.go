package session

import (
	"sync"
	"time"
)

// activityClock tracks the timestamps the idle policy reasons over. It is the
// only state shared between the capture path, the dispatcher and the policy
// ticker; the lock is never held across a blocking call.
type activityClock struct {
	mu             sync.Mutex
	lastActivity   time.Time
	lastPromptSent time.Time
}

func newActivityClock(now time.Time) *activityClock {
	return &activityClock{lastActivity: now}
}

// MarkActivity records speech or a turn completion at t.
func (c *activityClock) MarkActivity(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.lastActivity) {
		c.lastActivity = t
	}
}

// MarkPromptSent records that a keep-alive prompt went out at t.
func (c *activityClock) MarkPromptSent(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.lastPromptSent) {
		c.lastPromptSent = t
	}
}

func (c *activityClock) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *activityClock) LastPromptSent() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastPromptSent
}
