//go:build gollama

package gollama

import (
	"testing"

	llama "github.com/go-skynet/go-llama.cpp"
	"github.com/stretchr/testify/require"

	"modelreg/internal/engine"
)

func TestSameLoadOptions(t *testing.T) {
	base := engine.DefaultContextParams()

	p := base
	p.Seed, p.Threads, p.ThreadsBatch = 7, 16, 16
	require.True(t, sameLoadOptions(base, p))

	p = base
	p.ContextSize = base.ContextSize * 2
	require.False(t, sameLoadOptions(base, p))

	p = base
	p.BatchSize = base.BatchSize / 2
	require.False(t, sameLoadOptions(base, p))
}

// The instance is never used for inference here, so an unloaded value is enough.
func TestNewContext_LendsLoadedInstance(t *testing.T) {
	base := &llama.LLama{}
	m := &model{path: "/m.gguf", base: base, baseParams: engine.DefaultContextParams()}

	p := engine.DefaultContextParams()
	p.Seed = 42
	c, err := m.NewContext(p)
	require.NoError(t, err)
	gc := c.(*genContext)
	require.Same(t, base, gc.llm)
	require.True(t, m.baseInUse)

	require.NoError(t, c.Close())
	require.False(t, m.baseInUse)
	require.Same(t, base, m.base, "returned instance must stay loaded")

	c, err = m.NewContext(p)
	require.NoError(t, err)
	require.Same(t, base, c.(*genContext).llm)

	// Closing the model while the instance is lent defers the free.
	require.NoError(t, m.Close())
	require.Same(t, base, m.base)
	_, err = m.NewContext(p)
	require.ErrorIs(t, err, engine.ErrClosed)
}
