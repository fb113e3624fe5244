package manager

import (
	"errors"

	"modelreg/internal/decode"
	"modelreg/internal/engine"
	"modelreg/internal/registry"
)

// badRequestError marks caller mistakes (missing fields, unknown enum
// values) so the HTTP layer can return 400.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

// StatusCode implements httpapi.HTTPError.
func (e badRequestError) StatusCode() int { return 400 }

// ErrBadRequest constructs a badRequestError.
func ErrBadRequest(msg string) error { return badRequestError{msg: msg} }

// IsBadRequest reports whether err is a caller mistake, including an empty
// model path.
func IsBadRequest(err error) bool {
	var br badRequestError
	return errors.As(err, &br) || errors.Is(err, registry.ErrEmptyPath)
}

// IsModelNotFound reports whether the error indicates an unknown handle id.
func IsModelNotFound(err error) bool { return errors.Is(err, registry.ErrModelNotFound) }

// IsAlreadyLoaded reports whether a load hit an id that is already registered.
func IsAlreadyLoaded(err error) bool { return errors.Is(err, registry.ErrAlreadyLoaded) }

// IsDependencyUnavailable reports whether the engine backend is not compiled
// in, so the HTTP layer can return 503 Service Unavailable instead of 500.
func IsDependencyUnavailable(err error) bool { return errors.Is(err, engine.ErrUnavailable) }

// IsLoadFailed reports whether the engine could not load a model file.
func IsLoadFailed(err error) bool { return errors.Is(err, registry.ErrLoadFailed) }

// IsCacheCapacity reports whether a decode needed more KV cache than the
// handle's context size provides.
func IsCacheCapacity(err error) bool { return errors.Is(err, decode.ErrCacheCapacity) }
