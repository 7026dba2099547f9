package session

import (
	"context"
	"errors"
	"time"

	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/tokens"
	"github.com/klaramir/livesession/core/transport"
)

// dispatcher routes decoded inbound events to the playback engine, the
// transcript sink, the tool executor and the idle policy. It runs on the
// transport receive loop; tool execution is the only work it offloads.
type dispatcher struct {
	playback *playbackEngine
	mux      *outboundMux
	clock    *activityClock
	policy   *idlePolicy

	transcript   TranscriptSink
	toolExecutor ToolExecutor
	tokenTracker *tokens.Tracker
	handleStore  HandleStore
}

// dispatch handles one inbound event. A non-nil return redefines session
// state and is routed to the lifecycle manager; everything else is absorbed
// here.
func (d *dispatcher) dispatch(ctx context.Context, event events.Inbound) error {
	switch ev := event.(type) {
	case events.TranscriptDeltaEvent:
		// Transcripts are model output; only the capture path and typed text
		// count as user activity for the keep-alive policy.
		if d.transcript != nil {
			d.transcript.OnTranscriptDelta(ev.Text, ev.Final)
		}

	case events.AudioDeltaEvent:
		d.playback.Enqueue(ev.PCM)

	case events.TurnCompleteEvent:
		now := time.Now()
		d.clock.MarkActivity(now)
		d.policy.ObserveTurnComplete(now)
		if d.transcript != nil {
			d.transcript.OnTurnComplete()
		}

	case events.InterruptedEvent:
		d.playback.Flush()

	case events.ToolCallRequestEvent:
		go d.executeToolCall(ctx, ev)

	case events.SessionResumptionUpdateEvent:
		d.onResumptionUpdate(ev)

	case events.UsageMetadataEvent:
		d.tokenTracker.Add(tokens.Usage{Prompt: ev.PromptTokens, Response: ev.ResponseTokens})

	case events.ErrorSignalEvent:
		return classifyErrorSignal(ev)

	default:
		logger.Debug("ignoring inbound event", "kind", event.Kind())
	}

	return nil
}

func (d *dispatcher) executeToolCall(ctx context.Context, ev events.ToolCallRequestEvent) {
	ctx, span := tracer.Start(ctx, "execute tool call")
	defer span.End()

	var result any
	if d.toolExecutor == nil {
		result = map[string]any{"success": false, "error": "no tool executor configured"}
	} else {
		var err error
		result, err = d.toolExecutor.Execute(ctx, ev.Name, ev.Args)
		if err != nil {
			logger.Warn("tool call failed", "tool", ev.Name, "error", err)
			result = map[string]any{"success": false, "error": err.Error()}
		}
	}

	if err := d.mux.EnqueueToolResult(events.NewToolResultEvent(ev.CallID, ev.Name, result)); err != nil {
		logger.Warn("failed to submit tool result", "tool", ev.Name, "error", err)
	}
}

func (d *dispatcher) onResumptionUpdate(ev events.SessionResumptionUpdateEvent) {
	if !ev.Resumable || ev.Handle == "" {
		return
	}
	if d.handleStore == nil {
		return
	}
	if err := d.handleStore.Save(ev.Handle); err != nil {
		logger.Warn("failed to persist resumption handle", "error", err)
	}
}

// classifyErrorSignal maps server-reported errors onto the transport
// taxonomy so the lifecycle manager can decide between retrying and failing.
func classifyErrorSignal(ev events.ErrorSignalEvent) error {
	kind := transport.KindProtocol
	switch ev.Code {
	case "UNAVAILABLE", "DEADLINE_EXCEEDED", "RESOURCE_EXHAUSTED":
		kind = transport.KindTransient
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		kind = transport.KindAuth
	}
	return transport.NewError(kind, "server signal", errors.New(ev.Message))
}
