package registry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"modelreg/internal/engine"
)

func TestSetContextSize_Floor(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Load("m", "/m.gguf", engine.DefaultModelParams()))

	cases := []struct {
		in   int
		want uint32
	}{
		{0, 2048},
		{512, 2048},
		{2047, 2048},
		{2048, 2048},
		{2049, 2049},
		{8192, 8192},
		{-5, 2048},
		{math.MaxUint32, math.MaxUint32},
		{1 << 32, math.MaxUint32},
		{1<<32 + 100, math.MaxUint32},
	}
	for _, c := range cases {
		require.NoError(t, r.SetContextSize("m", c.in))
		h, err := r.Get("m")
		require.NoError(t, err)
		require.Equal(t, c.want, h.ContextParams().ContextSize, "SetContextSize(%d)", c.in)
	}
}

func TestSetters_StoreValues(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Load("m", "/m.gguf", engine.DefaultModelParams()))

	require.NoError(t, r.SetSeed("m", 42))
	require.NoError(t, r.SetBatchSize("m", 256))
	require.NoError(t, r.SetThreads("m", 8))
	require.NoError(t, r.SetThreadsBatch("m", 16))

	h, err := r.Get("m")
	require.NoError(t, err)
	p := h.ContextParams()
	require.EqualValues(t, 42, p.Seed)
	require.EqualValues(t, 256, p.BatchSize)
	require.EqualValues(t, 8, p.Threads)
	require.EqualValues(t, 16, p.ThreadsBatch)
	require.EqualValues(t, 512, p.ContextSize, "untouched fields keep defaults")
}

func TestSetSeed_NegativeWrapsToDefault(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Load("m", "/m.gguf", engine.DefaultModelParams()))
	require.NoError(t, r.SetSeed("m", 1))
	require.NoError(t, r.SetSeed("m", -1))
	h, err := r.Get("m")
	require.NoError(t, err)
	require.Equal(t, engine.DefaultSeed, h.ContextParams().Seed)
}

func TestSetters_UnknownIDNoMutation(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Load("m", "/m.gguf", engine.DefaultModelParams()))

	setters := map[string]func(string, int) error{
		"seed":          r.SetSeed,
		"ctx_size":      r.SetContextSize,
		"batch_size":    r.SetBatchSize,
		"threads":       r.SetThreads,
		"threads_batch": r.SetThreadsBatch,
	}
	for name, set := range setters {
		require.ErrorIs(t, set("other", 4096), ErrModelNotFound, name)
	}
	h, err := r.Get("m")
	require.NoError(t, err)
	require.Equal(t, engine.DefaultContextParams(), h.ContextParams())
}
