package manager

import (
	"github.com/rs/zerolog"

	"modelreg/internal/decode"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

// Config encapsulates the tunables for Manager construction.
type Config struct {
	// Registry holds the loaded handles. Nil creates one on the default backend.
	Registry *registry.Registry
	// Catalog lists known model files. When nil and ModelsDir is set the
	// directory is scanned.
	Catalog   []types.Model
	ModelsDir string
	// DecodeMaxLen is used when a decode request omits max_len.
	DecodeMaxLen int
	Publisher    EventPublisher
	Logger       *zerolog.Logger
}

func (c Config) decodeMaxLen() int {
	if c.DecodeMaxLen <= 0 {
		return decode.DefaultMaxLen
	}
	return c.DecodeMaxLen
}
