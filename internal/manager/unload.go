package manager

import "strings"

// Unload removes a handle and releases its model. It waits for decodes
// already running on the handle to finish.
func (m *Manager) Unload(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrBadRequest("id is required")
	}
	if err := m.reg.Unload(id); err != nil {
		return err
	}
	m.unloads.Add(1)
	m.publish(Event{Name: EventUnloaded, HandleID: id, Fields: map[string]any{}})
	return nil
}
