// Package fsutil holds the path helpers shared by the model catalog, the
// manager and the CLI.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModelExt is the extension of loadable model files.
const ModelExt = ".gguf"

// ExpandHome expands a leading "~" or "~/" to the user's home directory.
// Other paths, "~user" forms included, are returned unchanged.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// ExpandPath expands the home directory and cleans the result. An empty
// path stays empty.
func ExpandPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	p, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}

// IsModelFile reports whether name has the model extension, in any case.
func IsModelFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ModelExt)
}

// ModelStem returns name without its model extension.
func ModelStem(name string) string {
	if !IsModelFile(name) {
		return name
	}
	return name[:len(name)-len(ModelExt)]
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
