package manager

import "modelreg/pkg/types"

// SetParams applies the fields present in p through the registry setters.
// The handle must exist; fields are applied in declaration order and the
// first failure stops the update.
func (m *Manager) SetParams(id string, p types.ParamsRequest) error {
	if _, err := m.reg.Get(id); err != nil {
		return err
	}
	setters := []struct {
		name string
		v    *int
		set  func(string, int) error
	}{
		{"seed", p.Seed, m.reg.SetSeed},
		{"ctx_size", p.CtxSize, m.reg.SetContextSize},
		{"batch_size", p.BatchSize, m.reg.SetBatchSize},
		{"threads", p.Threads, m.reg.SetThreads},
		{"threads_batch", p.ThreadsBatch, m.reg.SetThreadsBatch},
	}
	fields := map[string]any{}
	for _, s := range setters {
		if s.v == nil {
			continue
		}
		if err := s.set(id, *s.v); err != nil {
			return err
		}
		fields[s.name] = *s.v
	}
	m.publish(Event{Name: EventParamsUpdated, HandleID: id, Fields: fields})
	return nil
}
