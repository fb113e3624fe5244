package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"modelreg/internal/engine"
)

// Config configures a Registry.
type Config struct {
	// Backend loads models. Nil selects engine.Lookup("").
	Backend engine.Backend
	// Logger receives lifecycle logs. Nil disables logging.
	Logger *zerolog.Logger
}

// Registry maps model ids to loaded handles.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
	backend engine.Backend
	log     zerolog.Logger
}

// New returns an empty Registry.
func New(cfg Config) *Registry {
	r := &Registry{
		handles: make(map[string]*Handle),
		backend: cfg.Backend,
		log:     zerolog.Nop(),
	}
	if r.backend == nil {
		r.backend = engine.Lookup("")
	}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "registry").Logger()
	}
	return r
}

// Backend returns the engine backend models are loaded with.
func (r *Registry) Backend() engine.Backend { return r.backend }

// Load materializes the model at path and registers it under id with
// default context parameters. The registry lock is held while the engine
// loads, so loads are serialized. If id is already registered the existing
// handle is left untouched and ErrAlreadyLoaded is returned.
func (r *Registry) Load(id, path string, params engine.ModelParams) error {
	if path == "" {
		loadsTotal.WithLabelValues("empty_path").Inc()
		return ErrEmptyPath
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[id]; ok {
		loadsTotal.WithLabelValues("already_loaded").Inc()
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, id)
	}

	start := time.Now()
	m, err := r.backend.LoadModel(path, params)
	loadDuration.Observe(time.Since(start).Seconds())
	if err == nil && m == nil {
		err = fmt.Errorf("backend %s returned no model", r.backend.Name())
	}
	if err != nil {
		loadsTotal.WithLabelValues("error").Inc()
		r.log.Error().Err(err).Str("model", id).Str("path", path).Msg("load failed")
		return fmt.Errorf("%w: %s: %w", ErrLoadFailed, id, err)
	}

	r.handles[id] = &Handle{
		id:          id,
		path:        path,
		modelParams: params,
		model:       m,
		loadedAt:    start,
		ctxParams:   engine.DefaultContextParams(),
	}
	loadsTotal.WithLabelValues("ok").Inc()
	handlesGauge.Inc()
	r.log.Info().
		Str("model", id).
		Str("path", path).
		Int32("gpu_layers", params.GPULayers).
		Stringer("split_mode", params.SplitMode).
		Int32("main_gpu", params.MainGPU).
		Bool("vocab_only", params.VocabOnly).
		Bool("mmap", params.UseMMap).
		Bool("mlock", params.UseMLock).
		Dur("dur", time.Since(start)).
		Msg("model loaded")
	return nil
}

// Unload removes id and releases its model. The entry is removed at once;
// releasing waits for contexts still using the model.
func (r *Registry) Unload(id string) error {
	r.mu.Lock()
	h, ok := r.handles[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	delete(r.handles, id)
	r.mu.Unlock()

	handlesGauge.Dec()
	unloadsTotal.Inc()
	if err := h.release(); err != nil {
		r.log.Warn().Err(err).Str("model", id).Msg("model release failed")
		return fmt.Errorf("release %s: %w", id, err)
	}
	r.log.Info().Str("model", id).Msg("model unloaded")
	return nil
}

// Get returns the handle registered under id.
func (r *Registry) Get(id string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return h, nil
}

// List returns a snapshot of all handles sorted by id.
func (r *Registry) List() []Info {
	r.mu.Lock()
	hs := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		hs = append(hs, h)
	}
	r.mu.Unlock()

	out := make([]Info, 0, len(hs))
	for _, h := range hs {
		out = append(out, h.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len is the number of registered handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Close unloads every handle. Release errors are combined.
func (r *Registry) Close() error {
	r.mu.Lock()
	hs := r.handles
	r.handles = make(map[string]*Handle)
	r.mu.Unlock()

	var err error
	for id, h := range hs {
		handlesGauge.Dec()
		unloadsTotal.Inc()
		if e := h.release(); e != nil {
			err = multierr.Append(err, fmt.Errorf("release %s: %w", id, e))
		}
	}
	if len(hs) > 0 {
		r.log.Info().Int("count", len(hs)).Msg("registry closed")
	}
	return err
}
