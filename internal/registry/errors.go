package registry

import "errors"

var (
	// ErrEmptyPath is returned by Load when no model path is given.
	ErrEmptyPath = errors.New("model path is empty")
	// ErrAlreadyLoaded is returned by Load when the id is registered.
	ErrAlreadyLoaded = errors.New("model already loaded")
	// ErrModelNotFound is returned for ids that are not registered.
	ErrModelNotFound = errors.New("model not found")
	// ErrLoadFailed wraps engine failures while loading a model.
	ErrLoadFailed = errors.New("model load failed")
)
