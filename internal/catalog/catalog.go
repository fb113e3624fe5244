// Package catalog lists the GGUF model files available under a directory.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"modelreg/internal/common/fsutil"
	"modelreg/pkg/types"
)

var quantPattern = regexp.MustCompile(`(?i)^(i?q\d(_[a-z0-9]+)*|bf16|f16|f32)$`)

// Scan lists *.gguf files (case-insensitive) in dir, sorted by file name.
// ID is the full file name; Path is the absolute file path. A leading '~'
// in dir is expanded.
func Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !fsutil.IsModelFile(name) {
			continue
		}
		stem := fsutil.ModelStem(name)
		models = append(models, types.Model{
			ID:    name,
			Name:  stem,
			Path:  filepath.Join(abs, name),
			Quant: Quant(stem),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Quant extracts the quantization tag from a file stem such as
// "llama-3.1-8b.Q4_K_M". It returns "" when no tag is present.
func Quant(stem string) string {
	parts := strings.FieldsFunc(stem, func(r rune) bool { return r == '.' || r == '-' })
	for i := len(parts) - 1; i >= 0; i-- {
		if quantPattern.MatchString(parts[i]) {
			return strings.ToUpper(parts[i])
		}
	}
	return ""
}

// Find returns the entry whose ID or Name equals id.
func Find(models []types.Model, id string) (types.Model, bool) {
	for _, m := range models {
		if m.ID == id || m.Name == id {
			return m, true
		}
	}
	return types.Model{}, false
}
