package manager

import (
	"time"

	"modelreg/internal/engine"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

// State of the manager as reported by /status.
type State string

const (
	StateIdle  State = "idle"
	StateReady State = "ready"
)

// ListHandles returns the loaded handles sorted by id.
func (m *Manager) ListHandles() []types.HandleStatus {
	infos := m.reg.List()
	out := make([]types.HandleStatus, 0, len(infos))
	for _, info := range infos {
		out = append(out, handleStatus(info))
	}
	return out
}

// Handle returns one loaded handle.
func (m *Manager) Handle(id string) (types.HandleStatus, error) {
	h, err := m.reg.Get(id)
	if err != nil {
		return types.HandleStatus{}, err
	}
	return handleStatus(h.Info()), nil
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	handles := m.ListHandles()
	state := StateIdle
	if len(handles) > 0 {
		state = StateReady
	}
	m.mu.RLock()
	lastErr := m.lastErr
	m.mu.RUnlock()
	now := time.Now()
	return types.StatusResponse{
		Handles:        handles,
		Backend:        m.reg.Backend().Name(),
		Backends:       engine.Backends(),
		State:          string(state),
		LastError:      lastErr,
		LoadsTotal:     m.loads.Load(),
		UnloadsTotal:   m.unloads.Load(),
		DecodesTotal:   m.decodes.Load(),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

func handleStatus(info registry.Info) types.HandleStatus {
	mp, cp := info.ModelParams, info.ContextParams
	return types.HandleStatus{
		ID:   info.ID,
		Path: info.Path,
		Load: types.LoadParams{
			GPULayers: mp.GPULayers,
			SplitMode: mp.SplitMode.String(),
			MainGPU:   mp.MainGPU,
			VocabOnly: mp.VocabOnly,
			UseMMap:   mp.UseMMap,
			UseMLock:  mp.UseMLock,
		},
		Context: types.ContextParams{
			Seed:         cp.Seed,
			CtxSize:      cp.ContextSize,
			BatchSize:    cp.BatchSize,
			Threads:      cp.Threads,
			ThreadsBatch: cp.ThreadsBatch,
		},
		LoadedAt: info.LoadedAt.Unix(),
	}
}
