package events

import "time"

type Kind string

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

// BaseOption rebases event metadata, mainly so tests can pin timestamps.
type BaseOption func(*Base)

func WithTimestamp(t time.Time) BaseOption {
	return func(b *Base) { b.timestamp = t }
}
