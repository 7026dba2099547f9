// Package transport defines the session's contract with the remote live
// endpoint: connect/send/receive primitives and the error taxonomy the
// lifecycle manager uses to decide between retrying and failing. The package
// carries no business logic; frame contents are only interpreted far enough to
// produce the typed inbound event variants.
package transport

import (
	"context"

	"github.com/klaramir/livesession/core/events"
)

// Transport dials the remote endpoint. Each successful Connect yields a fresh
// Conn; the inbound sequence is restarted on reconnect by dialing again.
type Transport interface {
	Connect(ctx context.Context, opts ...ConnectOption) (Conn, error)
}

// Conn is one established bidirectional stream.
type Conn interface {
	// Send delivers one outbound event. Failures carry a *transport.Error.
	Send(ctx context.Context, event events.Outbound) error

	// Receive blocks until the next inbound event is available. It is the
	// lazy, unbounded receive sequence: callers loop over it until an error
	// (including a clean close) ends this connection's stream.
	Receive(ctx context.Context) (events.Inbound, error)

	// ResumptionHandle returns the most recent resumption handle issued by
	// the endpoint, or "" when the endpoint has not issued one.
	ResumptionHandle() string

	Close() error
}

// ConnectOptions carries per-dial parameters resolved by the lifecycle
// manager.
type ConnectOptions struct {
	// ResumptionHandle, when non-empty, asks the endpoint to resume the
	// previous conversational context.
	ResumptionHandle string

	// Model, when non-empty, overrides the transport's configured model with
	// the fully-qualified name the lifecycle manager resolved.
	Model string

	// SystemPrompt, when non-empty, overrides the transport's configured
	// system prompt with the text the lifecycle manager resolved.
	SystemPrompt string
}

type ConnectOption func(*ConnectOptions)

func WithResumptionHandle(handle string) ConnectOption {
	return func(o *ConnectOptions) { o.ResumptionHandle = handle }
}

func WithModel(model string) ConnectOption {
	return func(o *ConnectOptions) { o.Model = model }
}

func WithSystemPrompt(prompt string) ConnectOption {
	return func(o *ConnectOptions) { o.SystemPrompt = prompt }
}
