package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelreg/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	ListHandles() []types.HandleStatus
	Handle(id string) (types.HandleStatus, error)
	Load(req types.LoadRequest) error
	Unload(id string) error
	SetParams(id string, p types.ParamsRequest) error
	Decode(ctx context.Context, id string, req types.DecodeRequest, w io.Writer, flush func()) error
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if opts := corsConfig.Load(); opts != nil {
		r.Use(cors.Handler(*opts))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.ListModels()})
	})

	r.Route("/handles", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.HandlesResponse{Handles: svc.ListHandles()})
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var req types.LoadRequest
			if !decodeBody(w, r, &req) {
				return
			}
			start := time.Now()
			lvl := requestLogLevel(r)
			if err := svc.Load(req); err != nil {
				status := writeServiceError(w, err)
				logRequest(r, lvl, "load", "end", status, start, err)
				return
			}
			hs, err := svc.Handle(req.ID)
			if err != nil {
				// unloaded between the two calls
				writeServiceError(w, err)
				return
			}
			w.Header().Set("Location", "/handles/"+hs.ID)
			writeJSON(w, http.StatusCreated, hs)
			logRequest(r, lvl, "load", "end", http.StatusCreated, start, nil)
		})
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				hs, err := svc.Handle(chi.URLParam(r, "id"))
				if err != nil {
					writeServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, hs)
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				if err := svc.Unload(chi.URLParam(r, "id")); err != nil {
					status := writeServiceError(w, err)
					logRequest(r, requestLogLevel(r), "unload", "end", status, start, err)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				logRequest(r, requestLogLevel(r), "unload", "end", http.StatusNoContent, start, nil)
			})
			r.Patch("/params", func(w http.ResponseWriter, r *http.Request) {
				id := chi.URLParam(r, "id")
				var req types.ParamsRequest
				if !decodeBody(w, r, &req) {
					return
				}
				if err := svc.SetParams(id, req); err != nil {
					writeServiceError(w, err)
					return
				}
				hs, err := svc.Handle(id)
				if err != nil {
					writeServiceError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, hs)
			})
			r.Post("/decode", func(w http.ResponseWriter, r *http.Request) {
				serveDecode(svc, w, r)
			})
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no models loaded"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeBody enforces the JSON content type and body size limit, then
// decodes into v. It writes the error response and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes.Load())
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// serveDecode streams greedy decode output as NDJSON.
func serveDecode(svc Service, w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req types.DecodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSONError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	// The header is only sent with the first line, so errors raised before
	// any output still get a JSON error response.
	w.Header().Set("Content-Type", "application/x-ndjson")
	var flush func()
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	start := time.Now()
	writer := io.Writer(w)
	lvl := requestLogLevel(r)
	if lvl >= LevelDebug {
		writer = io.MultiWriter(w, &lineLogger{handle: id})
	}
	logRequest(r, lvl, "decode", "start", 0, start, nil)

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := decodeContext(r.Context())
	defer cancel()
	if err := svc.Decode(ctx, id, req, writer, flush); err != nil {
		// If the client went away or the server is shutting down, just return.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := writeServiceError(w, err)
		logRequest(r, lvl, "decode", "end", status, start, err)
		return
	}
	logRequest(r, lvl, "decode", "end", http.StatusOK, start, nil)
}
