package session

import (
	"bytes"
	"testing"
)

func TestPlaybackFillDrainsQueueInOrder(t *testing.T) {
	engine := newPlaybackEngine()
	engine.Enqueue([]byte{1, 2, 3})
	engine.Enqueue([]byte{4, 5})

	out := make([]byte, 4)
	engine.Fill(out)
	if !bytes.Equal(out, []byte{1, 2, 3, 4}) {
		t.Fatalf("expected queued audio in order, got %v", out)
	}

	engine.Fill(out)
	if !bytes.Equal(out, []byte{5, 0, 0, 0}) {
		t.Fatalf("expected remainder then silence padding, got %v", out)
	}
}

func TestPlaybackFillEmitsSilenceWhenEmpty(t *testing.T) {
	engine := newPlaybackEngine()

	out := []byte{9, 9, 9, 9}
	engine.Fill(out)
	if !bytes.Equal(out, []byte{0, 0, 0, 0}) {
		t.Fatalf("expected silence from an empty queue, got %v", out)
	}
}

func TestPlaybackFlushIsIdempotentAndLeavesQueueEmpty(t *testing.T) {
	engine := newPlaybackEngine()
	engine.Enqueue([]byte{1, 2, 3, 4})

	engine.Flush()
	engine.Flush()

	if pending := engine.Pending(); pending != 0 {
		t.Fatalf("expected empty queue after flush, got %d pending bytes", pending)
	}
}

func TestPlaybackAfterFlushEmitsOnlyPostFlushContent(t *testing.T) {
	engine := newPlaybackEngine()
	engine.Enqueue([]byte{1, 1, 1, 1})

	// Partially consume so the flush has to clear mid-buffer state too.
	partial := make([]byte, 2)
	engine.Fill(partial)

	engine.Flush()
	engine.Enqueue([]byte{7, 8})

	out := make([]byte, 4)
	engine.Fill(out)
	if !bytes.Equal(out, []byte{7, 8, 0, 0}) {
		t.Fatalf("expected only post-flush content, got %v", out)
	}
}

func TestPlaybackPendingTracksUnplayedBytes(t *testing.T) {
	engine := newPlaybackEngine()
	engine.Enqueue([]byte{1, 2, 3, 4})
	engine.Enqueue([]byte{5, 6})

	if pending := engine.Pending(); pending != 6 {
		t.Fatalf("expected 6 pending bytes, got %d", pending)
	}

	engine.Fill(make([]byte, 3))
	if pending := engine.Pending(); pending != 3 {
		t.Fatalf("expected 3 pending bytes after partial fill, got %d", pending)
	}
}
