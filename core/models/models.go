// Package models maps small model identifiers to the fully-qualified remote
// model names the live endpoint accepts. The mapping is total over the known
// identifiers and fails closed on anything else.
package models

import "fmt"

// ID selects a live model variant.
type ID int

const (
	// NativeAudioThinking is the thinking-dialog native audio model.
	NativeAudioThinking ID = iota + 1
	// NativeAudio is the non-thinking native audio model with function
	// calling.
	NativeAudio
	// HalfCascade has access to the full tool surface but trades off
	// latency.
	HalfCascade
)

func (id ID) String() string {
	switch id {
	case NativeAudioThinking:
		return "native-audio-thinking"
	case NativeAudio:
		return "native-audio"
	case HalfCascade:
		return "half-cascade"
	}
	return fmt.Sprintf("unknown(%d)", int(id))
}

// Resolve returns the remote model name for id, or an error for identifiers
// outside the known set.
func Resolve(id ID) (string, error) {
	switch id {
	case NativeAudioThinking:
		return "models/gemini-2.5-flash-exp-native-audio-thinking-dialog", nil
	case NativeAudio:
		return "models/gemini-2.5-flash-preview-native-audio-dialog", nil
	case HalfCascade:
		return "models/gemini-live-2.5-flash-preview", nil
	}
	return "", fmt.Errorf("unknown model identifier: %d", int(id))
}
