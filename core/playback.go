package session

import "sync"

// playbackEngine owns the FIFO of model audio awaiting output. The output
// device pulls from it through Fill on its real-time callback, so every method
// is non-blocking and the lock is held only for queue manipulation.
type playbackEngine struct {
	mu      sync.Mutex
	buffers [][]byte
	// offset is how far into buffers[0] playback has progressed.
	offset int
}

func newPlaybackEngine() *playbackEngine {
	return &playbackEngine{}
}

// Enqueue appends one decoded audio buffer. The engine takes ownership of the
// slice.
func (e *playbackEngine) Enqueue(pcm []byte) {
	if len(pcm) == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffers = append(e.buffers, pcm)
}

// Fill copies queued audio into out and zero-fills whatever remains, so an
// empty queue produces silence rather than stale samples. Safe to call from
// the device callback.
func (e *playbackEngine) Fill(out []byte) {
	e.mu.Lock()
	filled := 0
	for filled < len(out) && len(e.buffers) > 0 {
		n := copy(out[filled:], e.buffers[0][e.offset:])
		filled += n
		e.offset += n
		if e.offset >= len(e.buffers[0]) {
			e.buffers = e.buffers[1:]
			e.offset = 0
		}
	}
	e.mu.Unlock()

	for i := filled; i < len(out); i++ {
		out[i] = 0
	}
}

// Flush atomically clears the queue. Used on barge-in; at most one
// output-buffer period of old audio can still play after it returns.
// Idempotent.
func (e *playbackEngine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffers = nil
	e.offset = 0
}

// Pending returns the number of queued bytes not yet handed to the device.
func (e *playbackEngine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := -e.offset
	for _, buf := range e.buffers {
		total += len(buf)
	}
	if total < 0 {
		total = 0
	}
	return total
}
