package manager

import (
	"os"
	"path/filepath"
	"testing"

	"modelreg/internal/engine/enginetest"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

// newTestManager returns a Manager over a fake engine with the given catalog.
func newTestManager(t *testing.T, eng *enginetest.Engine, cat []types.Model) (*Manager, *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	if cat == nil {
		cat = []types.Model{}
	}
	m := New(Config{
		Registry:  registry.New(registry.Config{Backend: eng}),
		Catalog:   cat,
		Publisher: pub,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m, pub
}

// createModelFile creates an empty model file and returns its path.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func ptr[T any](v T) *T { return &v }
