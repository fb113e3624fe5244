package decode

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"modelreg/internal/engine"
	"modelreg/internal/engine/enginetest"
	"modelreg/internal/registry"
)

const prompt = "Hello my name is"

type source struct {
	m engine.Model
	p engine.ContextParams
}

func (s source) Acquire() (engine.Model, engine.ContextParams, func(), error) {
	return s.m, s.p, func() {}, nil
}

func newSource(t *testing.T, eng *enginetest.Engine, params engine.ContextParams) source {
	t.Helper()
	m, err := eng.LoadModel("/models/test.gguf", engine.DefaultModelParams())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return source{m: m, p: params}
}

func TestGreedy(t *testing.T) {
	require.Equal(t, engine.Token(1), Greedy([]float32{1, 3, 3, 2}))
	require.Equal(t, engine.Token(3), Greedy([]float32{-5, -4, -3, 0.5}))
	require.Equal(t, engine.Token(0), Greedy([]float32{7}))
	require.Equal(t, engine.Token(-1), Greedy(nil))
}

func TestRequiredCache(t *testing.T) {
	require.Equal(t, 32, RequiredCache(5, 32))
	require.Equal(t, 40, RequiredCache(40, 32))
	require.Equal(t, 8, RequiredCache(8, 8))
}

func TestRun_StopsAtEOS(t *testing.T) {
	eng := enginetest.New(10, 11, enginetest.EOS)
	src := newSource(t, eng, engine.DefaultContextParams())

	var out bytes.Buffer
	var pieces []string
	res, err := Run(context.Background(), src, prompt, Options{
		Out:     &out,
		OnPiece: func(p string) error { pieces = append(pieces, p); return nil },
	})
	require.NoError(t, err)
	require.Equal(t, " Hello my name is t10 t11\n", out.String())
	require.Equal(t, []string{" t10", " t11"}, pieces)
	require.Equal(t, []engine.Token{10, 11}, res.Tokens)
	require.Equal(t, " t10 t11", res.Text)
	require.Equal(t, 5, res.PromptTokens)
	require.Equal(t, 2, res.Decoded)
	require.Equal(t, "eos", res.StopReason)
	require.Len(t, eng.Batches(), 3)
	require.Equal(t, 0, eng.OpenContexts())
}

func TestRun_StopsAtMaxLen(t *testing.T) {
	script := make([]engine.Token, 20)
	for i := range script {
		script[i] = 10
	}
	eng := enginetest.New(script...)
	src := newSource(t, eng, engine.DefaultContextParams())

	res, err := Run(context.Background(), src, prompt, Options{MaxLen: 8})
	require.NoError(t, err)
	require.Equal(t, 3, res.Decoded)
	require.Equal(t, "length", res.StopReason)
	require.Equal(t, " t10 t10 t10", res.Text)
}

func TestRun_DefaultMaxLen(t *testing.T) {
	script := make([]engine.Token, 64)
	for i := range script {
		script[i] = 12
	}
	eng := enginetest.New(script...)
	src := newSource(t, eng, engine.DefaultContextParams())

	res, err := Run(context.Background(), src, prompt, Options{})
	require.NoError(t, err)
	require.Equal(t, DefaultMaxLen-5, res.Decoded)
}

func TestRun_CacheCapacityFailsBeforeDecode(t *testing.T) {
	eng := enginetest.New(10)
	params := engine.DefaultContextParams()
	params.ContextSize = 16
	src := newSource(t, eng, params)

	var out bytes.Buffer
	res, err := Run(context.Background(), src, prompt, Options{Out: &out})
	require.ErrorIs(t, err, ErrCacheCapacity)
	require.Equal(t, 0, eng.Decodes())
	require.Equal(t, 0, eng.OpenContexts())
	require.Equal(t, 5, res.PromptTokens)
	require.Empty(t, out.String())
}

func TestRun_PrimeIsChunkedByBatchSize(t *testing.T) {
	eng := enginetest.New(enginetest.EOS)
	params := engine.DefaultContextParams()
	params.BatchSize = 2
	src := newSource(t, eng, params)

	res, err := Run(context.Background(), src, "a b c d", Options{})
	require.NoError(t, err)
	require.Equal(t, 0, res.Decoded)
	require.Equal(t, "eos", res.StopReason)

	batches := eng.Batches()
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 2)
	require.Equal(t, enginetest.BOS, batches[0][0])
	require.Len(t, batches[1], 2)
	require.Len(t, batches[2], 1)
}

func TestRun_DecodeFailure(t *testing.T) {
	eng := enginetest.New(10, 11, 12)
	eng.DecodeErrAt = 2
	src := newSource(t, eng, engine.DefaultContextParams())

	res, err := Run(context.Background(), src, prompt, Options{})
	require.ErrorIs(t, err, ErrDecode)
	require.Equal(t, 1, res.Decoded)
	require.Equal(t, 0, eng.OpenContexts())
}

func TestRun_PrimeFailure(t *testing.T) {
	eng := enginetest.New(10)
	eng.DecodeErrAt = 1
	src := newSource(t, eng, engine.DefaultContextParams())

	_, err := Run(context.Background(), src, prompt, Options{})
	require.ErrorIs(t, err, ErrDecode)
}

func TestRun_ContextFailure(t *testing.T) {
	eng := enginetest.New(10)
	eng.ContextErr = errors.New("out of memory")
	src := newSource(t, eng, engine.DefaultContextParams())

	_, err := Run(context.Background(), src, prompt, Options{})
	require.ErrorIs(t, err, ErrContext)
	require.Equal(t, 0, eng.Decodes())
}

func TestRun_PieceCallbackErrorStops(t *testing.T) {
	eng := enginetest.New(10, 11, 12)
	src := newSource(t, eng, engine.DefaultContextParams())
	stop := errors.New("client gone")

	res, err := Run(context.Background(), src, prompt, Options{
		OnPiece: func(string) error { return stop },
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 0, res.Decoded)
}

func TestRun_CancelledContext(t *testing.T) {
	eng := enginetest.New(10, 11, 12)
	src := newSource(t, eng, engine.DefaultContextParams())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, src, prompt, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_GeneratorEngine(t *testing.T) {
	eng := enginetest.New(10, 11, enginetest.EOS)
	eng.Greedy = true
	src := newSource(t, eng, engine.DefaultContextParams())

	var out bytes.Buffer
	res, err := Run(context.Background(), src, prompt, Options{Out: &out})
	require.NoError(t, err)
	require.Equal(t, prompt+" t10 t11\n", out.String())
	require.Equal(t, 2, res.Decoded)
	require.Equal(t, "eos", res.StopReason)
	require.Empty(t, res.Tokens)
	require.Equal(t, 0, eng.Decodes())
}

func TestRun_GeneratorHonoursMaxLen(t *testing.T) {
	eng := enginetest.New(10, 10, 10, 10, 10)
	eng.Greedy = true
	src := newSource(t, eng, engine.DefaultContextParams())

	res, err := Run(context.Background(), src, prompt, Options{MaxLen: 7})
	require.NoError(t, err)
	require.Equal(t, 2, res.Decoded)
	require.Equal(t, "length", res.StopReason)
}

func TestRun_UnloadedHandle(t *testing.T) {
	eng := enginetest.New(10)
	reg := registry.New(registry.Config{Backend: eng})
	t.Cleanup(func() { _ = reg.Close() })

	require.NoError(t, reg.Load("m", "/models/m.gguf", engine.DefaultModelParams()))
	h, err := reg.Get("m")
	require.NoError(t, err)
	require.NoError(t, reg.Unload("m"))

	_, err = Run(context.Background(), h, prompt, Options{})
	require.ErrorIs(t, err, registry.ErrModelNotFound)
}

func TestRun_UsesHandleParams(t *testing.T) {
	eng := enginetest.New(enginetest.EOS)
	reg := registry.New(registry.Config{Backend: eng})
	t.Cleanup(func() { _ = reg.Close() })

	require.NoError(t, reg.Load("m", "/models/m.gguf", engine.DefaultModelParams()))
	require.NoError(t, reg.SetContextSize("m", 4096))
	require.NoError(t, reg.SetSeed("m", 42))
	h, err := reg.Get("m")
	require.NoError(t, err)

	_, err = Run(context.Background(), h, prompt, Options{})
	require.NoError(t, err)
	got := eng.LastContextParams()
	require.Equal(t, uint32(4096), got.ContextSize)
	require.Equal(t, uint32(42), got.Seed)
}

func TestResult_TokensPerSecond(t *testing.T) {
	require.Zero(t, Result{Decoded: 3}.TokensPerSecond())
	require.InDelta(t, 2.0, Result{Decoded: 4, Elapsed: 2e9}.TokensPerSecond(), 1e-9)
}
