package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"modelreg/internal/catalog"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

type Manager struct {
	mu        sync.RWMutex
	reg       *registry.Registry
	catalog   []types.Model
	modelsDir string
	maxLen    int
	publisher EventPublisher
	log       zerolog.Logger
	lastErr   string
	startTime time.Time

	loads   atomic.Uint64
	unloads atomic.Uint64
	decodes atomic.Uint64
}

// New constructs a Manager from cfg.
func New(cfg Config) *Manager {
	m := &Manager{
		reg:       cfg.Registry,
		catalog:   cfg.Catalog,
		modelsDir: cfg.ModelsDir,
		maxLen:    cfg.decodeMaxLen(),
		publisher: cfg.Publisher,
		log:       zerolog.Nop(),
		startTime: time.Now(),
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.reg == nil {
		m.reg = registry.New(registry.Config{Logger: cfg.Logger})
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.catalog == nil && m.modelsDir != "" {
		if err := m.Rescan(); err != nil {
			m.log.Warn().Err(err).Str("dir", m.modelsDir).Msg("model catalog scan failed")
		}
	}
	return m
}

// SetEventPublisher replaces the event sink; nil drops events.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

func (m *Manager) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.mu.Unlock()
}

// Registry exposes the underlying handle registry.
func (m *Manager) Registry() *registry.Registry { return m.reg }

// Ready reports whether at least one handle is loaded.
func (m *Manager) Ready() bool { return m.reg.Len() > 0 }

// ListModels returns the catalog.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.catalog))
	copy(out, m.catalog)
	return out
}

// Rescan reloads the catalog from the models directory.
func (m *Manager) Rescan() error {
	models, err := catalog.Scan(m.modelsDir)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.catalog = models
	m.mu.Unlock()
	m.log.Debug().Int("models", len(models)).Str("dir", m.modelsDir).Msg("catalog scanned")
	return nil
}

// Close unloads every handle.
func (m *Manager) Close() error { return m.reg.Close() }
