package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	// Configure both env vars for cross-platform behavior of os.UserHomeDir.
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	cases := map[string]string{
		"":           "",
		"/tmp":       "/tmp",
		"~":          home,
		"~/models":   filepath.Join(home, "models"),
		"~other/x":   "~other/x",
		"models/~/x": "models/~/x",
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}

	if got, err := ExpandPath("  "); err != nil || got != "" {
		t.Fatalf("blank path: got %q err=%v", got, err)
	}
	got, err := ExpandPath("~/models/../llm/")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if want := filepath.Join(home, "llm"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestModelFileNames(t *testing.T) {
	cases := []struct {
		name  string
		model bool
		stem  string
	}{
		{"tiny.gguf", true, "tiny"},
		{"Tiny.Q4_K_M.GGUF", true, "Tiny.Q4_K_M"},
		{"notes.txt", false, "notes.txt"},
		{"gguf", false, "gguf"},
	}
	for _, c := range cases {
		if got := IsModelFile(c.name); got != c.model {
			t.Fatalf("IsModelFile(%q) = %v", c.name, got)
		}
		if got := ModelStem(c.name); got != c.stem {
			t.Fatalf("ModelStem(%q) = %q, want %q", c.name, got, c.stem)
		}
	}
}

func TestIsFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.gguf")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsFile(p) {
		t.Fatalf("expected %q to be a file", p)
	}
	if IsFile(dir) {
		t.Fatalf("directory reported as file")
	}
	if IsFile(filepath.Join(dir, "missing")) {
		t.Fatalf("missing path reported as file")
	}
}
