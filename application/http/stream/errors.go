package stream

import (
	"github.com/pkg/errors"
)

// Operation conditions.
var (
	ErrUnopenable = errors.New("stream is not openable")
	ErrUnreadable = errors.New("stream is not readable")
	ErrUnwritable = errors.New("stream is not writable")
	ErrUnseekable = errors.New("stream is not seekable")
	ErrUntellable = errors.New("stream is not tellable")
)

// Reasons of a failed operation, other than an error from the resource itself.
var (
	ErrDetached    = errors.New("stream resource is detached")
	ErrUnsupported = errors.New("operation is not supported by the stream")
)

// Error describes a failed stream operation.
// It matches both Op and Reason with errors.Is, and unwraps to the error of the resource, if any.
type Error struct {
	Op     error
	Reason error
	cause  error
}

func newError(op, reason, cause error) *Error {
	return &Error{Op: op, Reason: reason, cause: cause}
}

func (e *Error) Error() string {
	msg := e.Op.Error()
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	return target == e.Op || (e.Reason != nil && target == e.Reason)
}
