package e2e

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"modelreg/internal/decode"
	"modelreg/internal/engine"
	_ "modelreg/internal/engine/gollama"
	_ "modelreg/internal/engine/llamacpp"
	"modelreg/internal/registry"
)

// TestRealModel_Decode prints a greedy completion from a real GGUF file.
// Skips unless:
// - the test binary was built with -tags=llama or -tags=gollama, and
// - MODELREG_E2E_MODEL points to a .gguf file (or ~/models/llm holds one).
func TestRealModel_Decode(t *testing.T) {
	if len(engine.Backends()) == 0 {
		t.Skip("no engine backend compiled in; build with -tags=llama or -tags=gollama")
	}
	path := strings.TrimSpace(os.Getenv("MODELREG_E2E_MODEL"))
	if path == "" {
		home, _ := os.UserHomeDir()
		modelsDir := filepath.Join(home, "models", "llm")
		ents, _ := os.ReadDir(modelsDir)
		for _, e := range ents {
			if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".gguf") {
				path = filepath.Join(modelsDir, e.Name())
				break
			}
		}
	}
	if path == "" {
		t.Skip("MODELREG_E2E_MODEL not set and no GGUF found under ~/models/llm")
	}

	reg := registry.New(registry.Config{})
	t.Cleanup(func() { _ = reg.Close() })
	if err := reg.Load("e2e", path, engine.DefaultModelParams()); err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	h, err := reg.Get("e2e")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	var out bytes.Buffer
	res, err := decode.Run(ctx, h, "Hello my name is", decode.Options{Out: &out})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Decoded == 0 {
		t.Fatalf("no tokens generated")
	}
	t.Logf("backend=%s tokens=%d stop=%s %.1f tok/s\n%s",
		reg.Backend().Name(), res.Decoded, res.StopReason, res.TokensPerSecond(), out.String())
}
