// Package manager is the orchestration layer the HTTP API and CLI use on top
// of the handle registry. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: Config and package defaults.
//   - errors.go: error helpers for status mapping (IsModelNotFound, ...).
//   - events.go, eventpub_memory.go: lifecycle events.
//   - load.go: Load and Preload, including catalog path resolution.
//   - unload.go: Unload.
//   - params.go: SetParams over the registry setters.
//   - inference.go: Decode, streaming greedy output as NDJSON.
//   - status_report.go: Status and handle listings.
//
// Engine backends are chosen by name through the engine package; when the
// named backend is not compiled in, loads fail with a dependency-unavailable
// error so the HTTP layer can answer 503.
package manager
