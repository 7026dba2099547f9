package tokens

import "testing"

func TestTrackerAccumulates(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(Usage{Prompt: 10, Response: 5})
	tracker.Add(Usage{Prompt: 3, Response: 7})

	total := tracker.Total()
	if total.Prompt != 13 || total.Response != 12 {
		t.Fatalf("expected totals 13/12, got %d/%d", total.Prompt, total.Response)
	}
}

func TestTrackerIgnoresNegativeDeltas(t *testing.T) {
	tracker := NewTracker()
	tracker.Add(Usage{Prompt: 10, Response: 10})
	tracker.Add(Usage{Prompt: -4, Response: -2})

	total := tracker.Total()
	if total.Prompt != 10 || total.Response != 10 {
		t.Fatalf("expected counters to stay non-decreasing, got %d/%d", total.Prompt, total.Response)
	}
}

func TestNilTrackerIsInert(t *testing.T) {
	var tracker *Tracker

	tracker.Add(Usage{Prompt: 1, Response: 1})
	if got := tracker.Total(); got != (Usage{}) {
		t.Fatalf("expected nil tracker to report zero usage, got %+v", got)
	}
	if got := tracker.Summary(); got != "token usage: untracked" {
		t.Fatalf("expected untracked summary, got %q", got)
	}
}
