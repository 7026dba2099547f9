package transport

import (
	"errors"
	"fmt"
)

// ErrorKind classifies transport failures for retry decisions.
type ErrorKind string

const (
	// KindTransient marks network hiccups worth retrying with backoff.
	KindTransient ErrorKind = "transient"
	// KindProtocol marks malformed or unexpected frames; fatal to this
	// session instance.
	KindProtocol ErrorKind = "protocol"
	// KindAuth marks rejected credentials; fatal and non-retryable.
	KindAuth ErrorKind = "auth"
)

// Error is the typed failure surfaced by every transport operation.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport %s error during %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("transport %s error during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Classify extracts the error kind from err. Errors that are not transport
// errors default to transient so plain network failures remain retryable.
func Classify(err error) ErrorKind {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr.Kind
	}
	return KindTransient
}

func IsTransient(err error) bool { return err != nil && Classify(err) == KindTransient }
func IsProtocol(err error) bool  { return err != nil && Classify(err) == KindProtocol }
func IsAuth(err error) bool      { return err != nil && Classify(err) == KindAuth }
