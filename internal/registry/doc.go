// Package registry owns loaded model handles keyed by caller-supplied ids.
//
// A Registry maps an id to a Handle bundling the load-time parameters, the
// context parameters used for the next context, and the loaded engine model.
// The handle owns the model: Unload (or Close) releases it.
//
// Locking: a single registry mutex guards the map. Each handle has its own
// mutex for its context parameters plus a lifetime lock held shared while a
// context is in use (Handle.Acquire). Unload removes the entry, marks the
// handle closed, then waits for in-flight users before releasing the model,
// so a setter racing an unload either completes first or reports
// ErrModelNotFound; it never writes to a released handle.
package registry
