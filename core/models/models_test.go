package models

import "testing"

func TestResolveKnownIdentifiers(t *testing.T) {
	for _, id := range []ID{NativeAudioThinking, NativeAudio, HalfCascade} {
		name, err := Resolve(id)
		if err != nil {
			t.Fatalf("expected %v to resolve, got %v", id, err)
		}
		if name == "" {
			t.Fatalf("expected non-empty model name for %v", id)
		}
	}
}

func TestResolveFailsClosedOnUnknownIdentifiers(t *testing.T) {
	for _, id := range []ID{0, 4, -1, 99} {
		if _, err := Resolve(id); err == nil {
			t.Fatalf("expected identifier %d to fail closed", int(id))
		}
	}
}

func TestResolveIsInjective(t *testing.T) {
	seen := map[string]ID{}
	for _, id := range []ID{NativeAudioThinking, NativeAudio, HalfCascade} {
		name, err := Resolve(id)
		if err != nil {
			t.Fatalf("expected %v to resolve, got %v", id, err)
		}
		if prev, ok := seen[name]; ok {
			t.Fatalf("expected distinct model names, %v and %v both map to %q", prev, id, name)
		}
		seen[name] = id
	}
}
