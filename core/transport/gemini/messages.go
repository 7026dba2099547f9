package gemini

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/klaramir/livesession/core/events"
)

// Client → server envelope. Exactly one field is set per message.
type clientMessage struct {
	Setup         *setupPayload         `json:"setup,omitempty"`
	RealtimeInput *realtimeInputPayload `json:"realtimeInput,omitempty"`
	ClientContent *clientContentPayload `json:"clientContent,omitempty"`
	ToolResponse  *toolResponsePayload  `json:"toolResponse,omitempty"`
}

type setupPayload struct {
	Model                    string                      `json:"model"`
	GenerationConfig         *generationConfig           `json:"generationConfig,omitempty"`
	SystemInstruction        *content                    `json:"systemInstruction,omitempty"`
	Tools                    []toolPayload               `json:"tools,omitempty"`
	SessionResumption        *sessionResumptionConfig    `json:"sessionResumption,omitempty"`
	OutputAudioTranscription *struct{}                   `json:"outputAudioTranscription,omitempty"`
	ContextWindowCompression *contextWindowCompressionCfg `json:"contextWindowCompression,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig *voiceConfig `json:"voiceConfig,omitempty"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig *prebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type sessionResumptionConfig struct {
	Handle string `json:"handle,omitempty"`
}

type contextWindowCompressionCfg struct {
	TriggerTokens int            `json:"triggerTokens,omitempty"`
	SlidingWindow *slidingWindow `json:"slidingWindow,omitempty"`
}

type slidingWindow struct {
	TargetTokens int `json:"targetTokens,omitempty"`
}

type toolPayload struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations,omitempty"`
}

type functionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type realtimeInputPayload struct {
	MediaChunks []inlineData `json:"mediaChunks"`
}

type clientContentPayload struct {
	Turns        []content `json:"turns"`
	TurnComplete bool      `json:"turnComplete"`
}

type toolResponsePayload struct {
	FunctionResponses []functionResponse `json:"functionResponses"`
}

type functionResponse struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Response any    `json:"response"`
}

// Server → client envelope. Fields are optional; a single frame can carry
// several semantic events at once (model audio, transcription, turn state).
type serverMessage struct {
	SetupComplete           *struct{}                `json:"setupComplete,omitempty"`
	ServerContent           *serverContent           `json:"serverContent,omitempty"`
	ToolCall                *toolCall                `json:"toolCall,omitempty"`
	SessionResumptionUpdate *sessionResumptionUpdate `json:"sessionResumptionUpdate,omitempty"`
	UsageMetadata           *usageMetadata           `json:"usageMetadata,omitempty"`
	Error                   *serverError             `json:"error,omitempty"`
}

type serverContent struct {
	ModelTurn           *content       `json:"modelTurn,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

type transcription struct {
	Text     string `json:"text,omitempty"`
	Finished bool   `json:"finished,omitempty"`
}

type toolCall struct {
	FunctionCalls []functionCall `json:"functionCalls,omitempty"`
}

type functionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type sessionResumptionUpdate struct {
	NewHandle string `json:"newHandle,omitempty"`
	Resumable bool   `json:"resumable,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount   int `json:"promptTokenCount,omitempty"`
	ResponseTokenCount int `json:"responseTokenCount,omitempty"`
}

type serverError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	audioMimeType = "audio/pcm;rate=16000"
)

// encodeOutbound converts a typed outbound event into its wire envelope.
func encodeOutbound(event events.Outbound) (clientMessage, error) {
	switch ev := event.(type) {
	case events.AudioFrameEvent:
		return clientMessage{RealtimeInput: &realtimeInputPayload{
			MediaChunks: []inlineData{{
				MimeType: audioMimeType,
				Data:     base64.StdEncoding.EncodeToString(ev.Chunk.PCM),
			}},
		}}, nil

	case events.VideoFrameEvent:
		return clientMessage{RealtimeInput: &realtimeInputPayload{
			MediaChunks: []inlineData{{
				MimeType: "image/png",
				Data:     base64.StdEncoding.EncodeToString(ev.Frame.Encoded),
			}},
		}}, nil

	case events.TextTurnEvent:
		return clientMessage{ClientContent: &clientContentPayload{
			Turns:        []content{{Role: "user", Parts: []part{{Text: ev.Text}}}},
			TurnComplete: true,
		}}, nil

	case events.ToolResultEvent:
		return clientMessage{ToolResponse: &toolResponsePayload{
			FunctionResponses: []functionResponse{{
				ID:       ev.CallID,
				Name:     ev.Name,
				Response: ev.Result,
			}},
		}}, nil
	}

	return clientMessage{}, fmt.Errorf("unsupported outbound event kind %q", event.Kind())
}

// decodeServerMessage parses one raw frame into the typed inbound events it
// carries, in the order the session should observe them.
func decodeServerMessage(raw []byte) ([]events.Inbound, error) {
	var msg serverMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("malformed server frame: %w", err)
	}

	var decoded []events.Inbound

	if msg.ToolCall != nil {
		for _, call := range msg.ToolCall.FunctionCalls {
			decoded = append(decoded, events.NewToolCallRequestEvent(call.ID, call.Name, call.Args))
		}
	}

	if msg.SessionResumptionUpdate != nil {
		decoded = append(decoded, events.NewSessionResumptionUpdateEvent(
			msg.SessionResumptionUpdate.NewHandle,
			msg.SessionResumptionUpdate.Resumable,
		))
	}

	if msg.UsageMetadata != nil {
		decoded = append(decoded, events.NewUsageMetadataEvent(
			msg.UsageMetadata.PromptTokenCount,
			msg.UsageMetadata.ResponseTokenCount,
		))
	}

	if msg.ServerContent != nil {
		if msg.ServerContent.Interrupted {
			decoded = append(decoded, events.NewInterruptedEvent())
		}

		if msg.ServerContent.ModelTurn != nil {
			for _, p := range msg.ServerContent.ModelTurn.Parts {
				if p.InlineData == nil || p.InlineData.Data == "" {
					continue
				}
				pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("malformed inline audio data: %w", err)
				}
				decoded = append(decoded, events.NewAudioDeltaEvent(pcm))
			}
		}

		if trans := msg.ServerContent.OutputTranscription; trans != nil && trans.Text != "" {
			decoded = append(decoded, events.NewTranscriptDeltaEvent(trans.Text, trans.Finished))
		}

		if msg.ServerContent.TurnComplete {
			decoded = append(decoded, events.NewTurnCompleteEvent())
		}
	}

	if msg.Error != nil {
		decoded = append(decoded, events.NewErrorSignalEvent(msg.Error.Code, msg.Error.Message))
	}

	return decoded, nil
}
