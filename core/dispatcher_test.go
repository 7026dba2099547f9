package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/tokens"
	"github.com/klaramir/livesession/core/transport"
)

type recordingSink struct {
	mu     sync.Mutex
	deltas []string
	turns  int
}

func (s *recordingSink) OnTranscriptDelta(text string, final bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = append(s.deltas, text)
}

func (s *recordingSink) OnTurnComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
}

type fakeToolExecutor struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (e *fakeToolExecutor) Execute(_ context.Context, name string, _ map[string]any) (any, error) {
	e.mu.Lock()
	e.calls = append(e.calls, name)
	e.mu.Unlock()

	if e.fail {
		return nil, fmt.Errorf("tool exploded")
	}
	return map[string]any{"success": true}, nil
}

func newTestDispatcher(t *testing.T) (*dispatcher, *recordingSink) {
	t.Helper()

	now := time.Now()
	sink := &recordingSink{}
	d := &dispatcher{
		playback:     newPlaybackEngine(),
		mux:          newOutboundMux(8, 2),
		clock:        newActivityClock(now),
		policy:       newIdlePolicy(3*time.Second, 2*time.Second, 1, now),
		transcript:   sink,
		tokenTracker: tokens.NewTracker(),
	}
	return d, sink
}

func TestDispatcherRoutesAudioToPlayback(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if err := d.dispatch(context.Background(), events.NewAudioDeltaEvent([]byte{1, 2, 3, 4})); err != nil {
		t.Fatalf("expected audio delta to dispatch, got %v", err)
	}
	if pending := d.playback.Pending(); pending != 4 {
		t.Fatalf("expected 4 pending playback bytes, got %d", pending)
	}
}

func TestDispatcherInterruptedFlushesPlayback(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.playback.Enqueue([]byte{1, 2, 3, 4})

	if err := d.dispatch(context.Background(), events.NewInterruptedEvent()); err != nil {
		t.Fatalf("expected interruption to dispatch, got %v", err)
	}
	if pending := d.playback.Pending(); pending != 0 {
		t.Fatalf("expected playback queue flushed, got %d pending bytes", pending)
	}
}

func TestDispatcherModelTranscriptDoesNotAnswerKeepAlivePrompt(t *testing.T) {
	d, sink := newTestDispatcher(t)

	start := time.Now()
	promptAt := start.Add(3 * time.Second)
	if action := d.policy.Advance(promptAt); action != idleActionPrompt {
		t.Fatalf("expected policy to prompt, got %v", action)
	}

	// The endpoint always answers the prompt turn with speech of its own,
	// often fragmented across deltas. None of it is the user replying.
	for _, delta := range []string{"Are you", " still there?", "I'm here whenever you're ready."} {
		if err := d.dispatch(context.Background(), events.NewTranscriptDeltaEvent(delta, false)); err != nil {
			t.Fatalf("expected transcript delta to dispatch, got %v", err)
		}
	}

	if state := d.policy.State(); state != idlePromptSent {
		t.Fatalf("expected the prompt to stay outstanding, got %v", state)
	}
	if action := d.policy.Advance(promptAt.Add(2 * time.Second)); action != idleActionTerminate {
		t.Fatalf("expected the unanswered prompt to terminate, got %v", action)
	}
	if len(sink.deltas) != 3 {
		t.Fatalf("expected all deltas forwarded to sink, got %v", sink.deltas)
	}
}

func TestDispatcherTurnCompleteFlushesSinkBoundary(t *testing.T) {
	d, sink := newTestDispatcher(t)

	if err := d.dispatch(context.Background(), events.NewTurnCompleteEvent()); err != nil {
		t.Fatalf("expected turn completion to dispatch, got %v", err)
	}
	if sink.turns != 1 {
		t.Fatalf("expected one turn boundary at sink, got %d", sink.turns)
	}
}

func TestDispatcherToolCallRoundTrip(t *testing.T) {
	d, _ := newTestDispatcher(t)
	executor := &fakeToolExecutor{}
	d.toolExecutor = executor

	if err := d.dispatch(context.Background(), events.NewToolCallRequestEvent("c1", "getFiles", map[string]any{"search_term": "csv"})); err != nil {
		t.Fatalf("expected tool call to dispatch, got %v", err)
	}

	select {
	case event := <-d.mux.priority:
		result, ok := event.(events.ToolResultEvent)
		if !ok {
			t.Fatalf("expected tool result event, got %T", event)
		}
		if result.CallID != "c1" || result.Name != "getFiles" {
			t.Fatalf("expected call correlation, got %+v", result)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected tool result to be resubmitted")
	}
}

func TestDispatcherToolFailureProducesStructuredResult(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.toolExecutor = &fakeToolExecutor{fail: true}

	if err := d.dispatch(context.Background(), events.NewToolCallRequestEvent("c2", "getFiles", nil)); err != nil {
		t.Fatalf("expected failing tool call to dispatch, got %v", err)
	}

	select {
	case event := <-d.mux.priority:
		result := event.(events.ToolResultEvent).Result.(map[string]any)
		if result["success"] != false {
			t.Fatalf("expected structured failure result, got %v", result)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected failure result to be resubmitted")
	}
}

func TestDispatcherFeedsTokenTracker(t *testing.T) {
	d, _ := newTestDispatcher(t)

	if err := d.dispatch(context.Background(), events.NewUsageMetadataEvent(12, 34)); err != nil {
		t.Fatalf("expected usage metadata to dispatch, got %v", err)
	}

	total := d.tokenTracker.Total()
	if total.Prompt != 12 || total.Response != 34 {
		t.Fatalf("expected usage 12/34, got %d/%d", total.Prompt, total.Response)
	}
}

func TestDispatcherClassifiesErrorSignals(t *testing.T) {
	d, _ := newTestDispatcher(t)

	err := d.dispatch(context.Background(), events.NewErrorSignalEvent("UNAVAILABLE", "backend busy"))
	if !transport.IsTransient(err) {
		t.Fatalf("expected transient classification, got %v", err)
	}

	err = d.dispatch(context.Background(), events.NewErrorSignalEvent("INVALID_ARGUMENT", "bad frame"))
	if !transport.IsProtocol(err) {
		t.Fatalf("expected protocol classification, got %v", err)
	}

	err = d.dispatch(context.Background(), events.NewErrorSignalEvent("PERMISSION_DENIED", "key revoked"))
	if !transport.IsAuth(err) {
		t.Fatalf("expected auth classification, got %v", err)
	}
}
