package registry

import (
	"fmt"
	"sync"
	"time"

	"modelreg/internal/engine"
)

// Handle is a loaded model and its configuration.
type Handle struct {
	id          string
	path        string
	modelParams engine.ModelParams
	model       engine.Model
	loadedAt    time.Time

	mu        sync.Mutex // guards ctxParams and closed
	ctxParams engine.ContextParams
	closed    bool

	// life is held shared while the model is in use and exclusively while
	// it is released.
	life sync.RWMutex
}

// ID returns the name the model was loaded under.
func (h *Handle) ID() string { return h.id }

// Path returns the model file path as given to Load.
func (h *Handle) Path() string { return h.path }

// ModelParams returns the parameters the model was loaded with.
func (h *Handle) ModelParams() engine.ModelParams { return h.modelParams }

// LoadedAt reports when the model finished loading.
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// ContextParams returns a copy of the parameters the next context will use.
func (h *Handle) ContextParams() engine.ContextParams {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctxParams
}

// Acquire pins the model for use and snapshots the context parameters.
// The model stays valid until release is called; Unload waits for it.
func (h *Handle) Acquire() (engine.Model, engine.ContextParams, func(), error) {
	h.life.RLock()
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.life.RUnlock()
		return nil, engine.ContextParams{}, func() {}, fmt.Errorf("%w: %s", ErrModelNotFound, h.id)
	}
	p := h.ctxParams
	h.mu.Unlock()
	var once sync.Once
	return h.model, p, func() { once.Do(h.life.RUnlock) }, nil
}

func (h *Handle) update(fn func(*engine.ContextParams)) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return fmt.Errorf("%w: %s", ErrModelNotFound, h.id)
	}
	fn(&h.ctxParams)
	return nil
}

// release marks the handle closed, waits for users and frees the model.
func (h *Handle) release() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()

	h.life.Lock()
	defer h.life.Unlock()
	if h.model == nil {
		return nil
	}
	err := h.model.Close()
	h.model = nil
	return err
}

// Info is a read-only view of a handle.
type Info struct {
	ID            string
	Path          string
	ModelParams   engine.ModelParams
	ContextParams engine.ContextParams
	LoadedAt      time.Time
}

// Info snapshots the handle.
func (h *Handle) Info() Info {
	return Info{
		ID:            h.id,
		Path:          h.path,
		ModelParams:   h.modelParams,
		ContextParams: h.ContextParams(),
		LoadedAt:      h.loadedAt,
	}
}
