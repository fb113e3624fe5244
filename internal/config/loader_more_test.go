package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Errors(t *testing.T) {
	d := t.TempDir()
	cases := []struct {
		name, file, body string
	}{
		{"yaml syntax", "bad.yaml", "addr: :8080\n: broken\n"},
		{"json syntax", "bad.json", `{ "addr": ":8080", "models_dir": }`},
		{"toml syntax", "bad.toml", "addr=:8080\nmodels_dir\n"},
		{"scalar models list", "scalar.yaml", "models: tiny\n"},
		{"string ctx size", "ctx.json", `{"models":[{"id":"a","ctx_size":"big"}]}`},
		{"unknown extension", "modelreg.ini", "addr=:8080\n"},
	}
	for _, c := range cases {
		p := writeTempFile(t, d, c.file, c.body)
		if _, err := Load(p); err == nil {
			t.Fatalf("%s: expected an error", c.name)
		}
	}

	if _, err := Load(filepath.Join(d, "missing.yaml")); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty path error, got %v", err)
	}
}
