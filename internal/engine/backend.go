package engine

import (
	"fmt"
	"sort"
	"sync"
)

var (
	backendsMu     sync.RWMutex
	backends       = map[string]Backend{}
	defaultBackend string
)

// Register makes a backend available under its name. The first backend
// registered becomes the default. Registering a name twice panics.
func Register(b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	name := b.Name()
	if _, dup := backends[name]; dup {
		panic("engine: backend registered twice: " + name)
	}
	backends[name] = b
	if defaultBackend == "" {
		defaultBackend = name
	}
}

// Lookup returns the named backend; an empty name selects the default.
// When nothing matches, the returned backend fails every load with
// ErrUnavailable so callers can still construct a registry.
func Lookup(name string) Backend {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	if name == "" {
		name = defaultBackend
	}
	if b, ok := backends[name]; ok {
		return b
	}
	return unavailable{name: name}
}

// Backends lists registered backend names.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	out := make([]string, 0, len(backends))
	for n := range backends {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// unavailable stands in when no engine build tag was set.
type unavailable struct{ name string }

func (u unavailable) Name() string {
	if u.name == "" {
		return "none"
	}
	return u.name
}

func (u unavailable) LoadModel(path string, params ModelParams) (Model, error) {
	if u.name == "" {
		return nil, fmt.Errorf("%w: built without an engine (use -tags=llama or -tags=gollama)", ErrUnavailable)
	}
	return nil, fmt.Errorf("%w: backend %q not compiled in (have %v)", ErrUnavailable, u.name, Backends())
}
