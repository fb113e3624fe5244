package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"modelreg/internal/engine"
	"modelreg/internal/engine/enginetest"
)

type namedBackend struct {
	*enginetest.Engine
	name string
}

func (b namedBackend) Name() string { return b.name }

func TestBackendRegistry(t *testing.T) {
	// Nothing registered yet: the fallback names the missing build tags.
	_, err := engine.Lookup("").LoadModel("/m.gguf", engine.DefaultModelParams())
	require.ErrorIs(t, err, engine.ErrUnavailable)
	require.Contains(t, err.Error(), "-tags=llama")
	require.Equal(t, "none", engine.Lookup("").Name())

	first := namedBackend{enginetest.New(), "first"}
	engine.Register(first)
	engine.Register(namedBackend{enginetest.New(), "second"})

	require.Equal(t, []string{"first", "second"}, engine.Backends())
	require.Equal(t, "first", engine.Lookup("").Name())
	require.Equal(t, "second", engine.Lookup("second").Name())

	m, err := engine.Lookup("").LoadModel("/m.gguf", engine.DefaultModelParams())
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.Equal(t, 1, first.Loads())

	missing := engine.Lookup("cuda")
	require.Equal(t, "cuda", missing.Name())
	_, err = missing.LoadModel("/m.gguf", engine.ModelParams{})
	require.True(t, errors.Is(err, engine.ErrUnavailable))
	require.Contains(t, err.Error(), `"cuda"`)

	require.Panics(t, func() { engine.Register(namedBackend{enginetest.New(), "first"}) })
}

func TestSplitMode(t *testing.T) {
	cases := map[string]engine.SplitMode{
		"":      engine.SplitLayer,
		"layer": engine.SplitLayer,
		" ROW ": engine.SplitRow,
		"none":  engine.SplitNone,
		"0":     engine.SplitNone,
		"2":     engine.SplitRow,
	}
	for in, want := range cases {
		got, err := engine.ParseSplitMode(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := engine.ParseSplitMode("diagonal")
	require.Error(t, err)

	require.Equal(t, "row", engine.SplitRow.String())
	require.Equal(t, "split(7)", engine.SplitMode(7).String())
}

func TestBatch(t *testing.T) {
	b := engine.NewBatch(4)
	b.Add(1, 0, false)
	b.Add(5, 1, true)
	require.Equal(t, 2, b.Len())
	require.Equal(t, []engine.Token{1, 5}, b.Tokens)
	require.Equal(t, []int32{0, 1}, b.Pos)
	require.Equal(t, []bool{false, true}, b.Logits)

	b.Clear()
	require.Zero(t, b.Len())
	require.Equal(t, 4, cap(b.Tokens))
}

func TestDefaultParams(t *testing.T) {
	mp := engine.DefaultModelParams()
	require.Equal(t, engine.SplitLayer, mp.SplitMode)
	require.True(t, mp.UseMMap)

	cp := engine.DefaultContextParams()
	require.Equal(t, engine.DefaultSeed, cp.Seed)
	require.Equal(t, uint32(512), cp.ContextSize)
	require.Equal(t, uint32(512), cp.BatchSize)
}
