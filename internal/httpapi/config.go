package httpapi

import (
	"sync/atomic"

	"github.com/go-chi/cors"
)

const defaultMaxBodyBytes int64 = 1 << 20

var (
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes atomic.Int64
	// decodeTimeout bounds a decode request in seconds; 0 leaves only the
	// server and connection timeouts.
	decodeTimeout atomic.Int64
	// corsConfig is nil while CORS is disabled.
	corsConfig atomic.Pointer[cors.Options]
)

func init() { maxBodyBytes.Store(defaultMaxBodyBytes) }

// SetMaxBodyBytes sets the request body limit; n <= 0 restores 1 MiB.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBodyBytes.Store(n)
}

// SetDecodeTimeoutSeconds sets the decode timeout in seconds (0 disables).
func SetDecodeTimeoutSeconds(sec int64) {
	decodeTimeout.Store(max(sec, 0))
}

// SetCORSOptions configures CORS for muxes built afterwards. Empty lists
// fall back to any origin, the API's methods and its request headers.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	if !enabled {
		corsConfig.Store(nil)
		return
	}
	corsConfig.Store(&cors.Options{
		AllowedOrigins: orDefault(origins, "*"),
		AllowedMethods: orDefault(methods, "GET", "POST", "PATCH", "DELETE", "OPTIONS"),
		AllowedHeaders: orDefault(headers, "Content-Type", "X-Log-Level"),
		MaxAge:         300,
	})
}

func orDefault(v []string, def ...string) []string {
	if len(v) == 0 {
		return def
	}
	return append([]string(nil), v...)
}
