// Package events defines the typed event contract between the session core
// and the transport.
//
// Outbound events flow from the capture sources and the session toward the
// remote live endpoint:
//
//   - AudioFrame (outbound.audio_frame): one captured microphone PCM chunk.
//     Chunks belonging to one continuous utterance must reach the transport in
//     capture order.
//   - VideoFrame (outbound.video_frame): one encoded screen frame. Frames are
//     interleavable and carry their own capture timestamp.
//   - TextTurn (outbound.text_turn): a complete user (or synthetic keep-alive)
//     text turn.
//   - ToolResult (outbound.tool_result): the result of an executed tool call,
//     correlated by call ID.
//
// Inbound events are decoded transport frames flowing from the endpoint back
// into the session:
//
//   - TranscriptDelta (inbound.transcript_delta): streamed output
//     transcription text, final or interim.
//   - AudioDelta (inbound.audio_delta): synthesized model audio PCM.
//   - TurnComplete (inbound.turn_complete): the model finished its turn.
//   - Interrupted (inbound.interrupted): the model turn was interrupted;
//     pending playback must be flushed.
//   - ToolCallRequest (inbound.tool_call_request): the model requests a tool
//     execution.
//   - SessionResumptionUpdate (inbound.session_resumption_update): a new
//     resumption handle was issued.
//   - UsageMetadata (inbound.usage_metadata): cumulative token usage counters.
//   - ErrorSignal (inbound.error_signal): an endpoint-reported error.
package events
