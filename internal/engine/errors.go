package engine

import "errors"

var (
	// ErrUnavailable reports that no engine was compiled into this binary
	// or the requested backend is not registered.
	ErrUnavailable = errors.New("inference engine unavailable")
	// ErrUnsupported reports an operation the backend cannot perform.
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrClosed reports use of a released model or context.
	ErrClosed = errors.New("engine resource closed")
)
