// Package gemini implements the session transport against a Gemini-style live
// endpoint over a persistent websocket. The wire protocol is treated as an
// envelope around the typed event variants; nothing outside this package
// depends on its encoding.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jinzhu/copier"

	"github.com/klaramir/livesession/core/events"
	"github.com/klaramir/livesession/core/tools"
	"github.com/klaramir/livesession/core/transport"
)

const defaultHost = "generativelanguage.googleapis.com"

const bidiPath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// setupAckTimeout bounds a server that accepted the dial but never
// acknowledges the setup frame.
const setupAckTimeout = 15 * time.Second

type Client struct {
	apiKey string
	scheme string
	host   string

	model        string
	systemPrompt string
	voice        string
	declarations []tools.Declaration

	compressionTriggerTokens int
	compressionTargetTokens  int
}

type ClientOption func(*Client)

func WithHost(host string) ClientOption {
	return func(c *Client) { c.host = host }
}

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) { c.systemPrompt = prompt }
}

func WithVoice(voice string) ClientOption {
	return func(c *Client) { c.voice = voice }
}

func WithToolDeclarations(declarations ...tools.Declaration) ClientOption {
	return func(c *Client) {
		// Declarations are copied so later registry mutation cannot change
		// what an in-flight setup message advertises.
		copied := make([]tools.Declaration, 0, len(declarations))
		copier.Copy(&copied, declarations)
		c.declarations = copied
	}
}

func WithContextWindowCompression(triggerTokens, targetTokens int) ClientOption {
	return func(c *Client) {
		c.compressionTriggerTokens = triggerTokens
		c.compressionTargetTokens = targetTokens
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey: apiKey,
		scheme: "wss",
		host:   defaultHost,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Connect dials the live endpoint, performs the setup exchange and returns a
// connection ready for Send/Receive. Dial failures are classified: credential
// rejections are Auth, handshake anomalies are Protocol, the rest Transient.
func (c *Client) Connect(ctx context.Context, opts ...transport.ConnectOption) (transport.Conn, error) {
	options := transport.ConnectOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if c.apiKey == "" {
		return nil, transport.NewError(transport.KindAuth, "connect", fmt.Errorf("api key not set"))
	}
	if c.model == "" && options.Model == "" {
		return nil, transport.NewError(transport.KindProtocol, "connect", fmt.Errorf("model not set"))
	}

	endpoint := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     bidiPath,
		RawQuery: url.Values{"key": {c.apiKey}}.Encode(),
	}

	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, transport.NewError(transport.KindAuth, "connect", err)
		}
		return nil, transport.NewError(transport.KindTransient, "connect", err)
	}

	setup, err := c.setupMessage(options)
	if err != nil {
		ws.Close()
		return nil, transport.NewError(transport.KindProtocol, "connect", err)
	}
	if err := ws.WriteJSON(setup); err != nil {
		ws.Close()
		return nil, transport.NewError(transport.KindTransient, "connect", err)
	}

	// The endpoint acknowledges setup before any content flows. The ack read
	// must not outlive the caller's context: the guard closes the socket on
	// cancellation, and the deadline bounds a silently stalled server.
	ackDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ws.Close()
		case <-ackDone:
		}
	}()
	_ = ws.SetReadDeadline(time.Now().Add(setupAckTimeout))
	_, raw, err := ws.ReadMessage()
	close(ackDone)
	_ = ws.SetReadDeadline(time.Time{})
	if err != nil {
		ws.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, transport.NewError(transport.KindTransient, "connect", ctxErr)
		}
		return nil, classifyReadError("connect", err)
	}
	var ack serverMessage
	if err := json.Unmarshal(raw, &ack); err != nil || ack.SetupComplete == nil {
		ws.Close()
		return nil, transport.NewError(transport.KindProtocol, "connect",
			fmt.Errorf("expected setup acknowledgement, got %q", raw))
	}

	conn := &liveConn{ws: ws}
	conn.resumptionHandle = options.ResumptionHandle
	return conn, nil
}

// setupMessage builds the first frame of a connection. Per-dial overrides
// from the lifecycle manager take precedence over the client's configuration.
func (c *Client) setupMessage(options transport.ConnectOptions) (clientMessage, error) {
	model := c.model
	if options.Model != "" {
		model = options.Model
	}
	systemPrompt := c.systemPrompt
	if options.SystemPrompt != "" {
		systemPrompt = options.SystemPrompt
	}

	setup := &setupPayload{
		Model: model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
		OutputAudioTranscription: &struct{}{},
		SessionResumption:        &sessionResumptionConfig{Handle: options.ResumptionHandle},
	}

	if c.voice != "" {
		setup.GenerationConfig.SpeechConfig = &speechConfig{
			VoiceConfig: &voiceConfig{
				PrebuiltVoiceConfig: &prebuiltVoiceConfig{VoiceName: c.voice},
			},
		}
	}

	if systemPrompt != "" {
		setup.SystemInstruction = &content{
			Role:  "user",
			Parts: []part{{Text: systemPrompt}},
		}
	}

	if c.compressionTriggerTokens > 0 {
		setup.ContextWindowCompression = &contextWindowCompressionCfg{
			TriggerTokens: c.compressionTriggerTokens,
			SlidingWindow: &slidingWindow{TargetTokens: c.compressionTargetTokens},
		}
	}

	if len(c.declarations) > 0 {
		declarations := make([]functionDeclaration, 0, len(c.declarations))
		for _, decl := range c.declarations {
			wire := functionDeclaration{Name: decl.Name, Description: decl.Description}
			if decl.Parameters != nil {
				schema, err := json.Marshal(decl.Parameters)
				if err != nil {
					return clientMessage{}, fmt.Errorf("failed to marshal tool %q schema: %w", decl.Name, err)
				}
				wire.Parameters = schema
			}
			declarations = append(declarations, wire)
		}
		setup.Tools = []toolPayload{{FunctionDeclarations: declarations}}
	}

	return clientMessage{Setup: setup}, nil
}

// liveConn is one established websocket session.
type liveConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	// pending holds decoded events from a frame that carried more than one.
	pending []events.Inbound

	handleMu         sync.Mutex
	resumptionHandle string

	closeOnce sync.Once
	closeErr  error
}

func (c *liveConn) Send(ctx context.Context, event events.Outbound) error {
	if err := ctx.Err(); err != nil {
		return transport.NewError(transport.KindTransient, "send", err)
	}

	msg, err := encodeOutbound(event)
	if err != nil {
		return transport.NewError(transport.KindProtocol, "send", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		return classifyWriteError("send", err)
	}
	return nil
}

func (c *liveConn) Receive(ctx context.Context) (events.Inbound, error) {
	for {
		if len(c.pending) > 0 {
			event := c.pending[0]
			c.pending = c.pending[1:]
			c.observe(event)
			return event, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, transport.NewError(transport.KindTransient, "receive", err)
		}

		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			return nil, classifyReadError("receive", err)
		}

		decoded, err := decodeServerMessage(raw)
		if err != nil {
			return nil, transport.NewError(transport.KindProtocol, "receive", err)
		}
		// Frames carrying nothing the session cares about are skipped.
		c.pending = decoded
	}
}

// observe tracks side-band state carried by inbound events before they are
// handed to the dispatcher.
func (c *liveConn) observe(event events.Inbound) {
	if update, ok := event.(events.SessionResumptionUpdateEvent); ok && update.Resumable && update.Handle != "" {
		c.handleMu.Lock()
		c.resumptionHandle = update.Handle
		c.handleMu.Unlock()
	}
}

func (c *liveConn) ResumptionHandle() string {
	c.handleMu.Lock()
	defer c.handleMu.Unlock()
	return c.resumptionHandle
}

func (c *liveConn) Close() error {
	c.closeOnce.Do(func() {
		err := c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			closeDeadline())
		if closeErr := c.ws.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		c.closeErr = err
	})
	return c.closeErr
}

func classifyReadError(op string, err error) *transport.Error {
	switch {
	case websocket.IsCloseError(err, websocket.ClosePolicyViolation):
		return transport.NewError(transport.KindAuth, op, err)
	case websocket.IsCloseError(err,
		websocket.CloseProtocolError,
		websocket.CloseUnsupportedData,
		websocket.CloseInvalidFramePayloadData):
		return transport.NewError(transport.KindProtocol, op, err)
	default:
		// Normal closure, going away and plain network failures are all
		// retryable; whether the retry budget allows it is the lifecycle
		// manager's call.
		return transport.NewError(transport.KindTransient, op, err)
	}
}

// Write failures are connection-level (broken pipe, closed socket) and are
// always worth a reconnect attempt.
func classifyWriteError(op string, err error) *transport.Error {
	return transport.NewError(transport.KindTransient, op, err)
}

func closeDeadline() time.Time {
	return time.Now().Add(time.Second)
}
