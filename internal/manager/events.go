package manager

// Event represents a manager lifecycle event.
// Minimal and stable: name + handle id and optional fields via key/values.
type Event struct {
	Name     string
	HandleID string
	Fields   map[string]any
}

// Event names.
const (
	EventLoaded        = "handle_loaded"
	EventLoadFailed    = "handle_load_failed"
	EventUnloaded      = "handle_unloaded"
	EventParamsUpdated = "params_updated"
	EventDecodeDone    = "decode_done"
	EventDecodeFailed  = "decode_failed"
)

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
