package manager

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"modelreg/internal/catalog"
	"modelreg/internal/common/fsutil"
	"modelreg/internal/config"
	"modelreg/internal/engine"
	"modelreg/pkg/types"
)

// Load registers a handle. The path may be omitted when req.Model, or
// failing that req.ID, names a catalog entry.
func (m *Manager) Load(req types.LoadRequest) error {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return ErrBadRequest("id is required")
	}
	path, err := m.resolvePath(id, req)
	if err != nil {
		return err
	}
	params, err := modelParams(req)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := m.reg.Load(id, path, params); err != nil {
		m.setLastError(err)
		m.publish(Event{Name: EventLoadFailed, HandleID: id, Fields: map[string]any{"path": path, "error": err.Error()}})
		return err
	}
	m.loads.Add(1)
	m.publish(Event{Name: EventLoaded, HandleID: id, Fields: map[string]any{
		"path":     path,
		"duration": time.Since(start),
	}})
	return nil
}

func (m *Manager) resolvePath(id string, req types.LoadRequest) (string, error) {
	if p := strings.TrimSpace(req.Path); p != "" {
		return fsutil.ExpandPath(p)
	}
	key := req.Model
	if key == "" {
		key = id
	}
	mdl, ok := catalog.Find(m.ListModels(), key)
	if !ok {
		return "", ErrBadRequest(fmt.Sprintf("path is required: %q is not in the model catalog", key))
	}
	return mdl.Path, nil
}

// modelParams applies the options present in req over engine defaults.
func modelParams(req types.LoadRequest) (engine.ModelParams, error) {
	p := engine.DefaultModelParams()
	if req.SplitMode != "" {
		sm, err := engine.ParseSplitMode(req.SplitMode)
		if err != nil {
			return p, ErrBadRequest(err.Error())
		}
		p.SplitMode = sm
	}
	if req.GPULayers != nil {
		p.GPULayers = *req.GPULayers
	}
	if req.MainGPU != nil {
		p.MainGPU = *req.MainGPU
	}
	if req.VocabOnly != nil {
		p.VocabOnly = *req.VocabOnly
	}
	if req.UseMMap != nil {
		p.UseMMap = *req.UseMMap
	}
	if req.UseMLock != nil {
		p.UseMLock = *req.UseMLock
	}
	return p, nil
}

// Preload loads every configured model and applies its context parameter
// overrides. It keeps going after a failure and returns all errors.
func (m *Manager) Preload(models []config.Model) error {
	var errs error
	for _, mc := range models {
		req := types.LoadRequest{
			ID:        mc.ID,
			Path:      mc.Path,
			GPULayers: mc.GPULayers,
			SplitMode: mc.SplitMode,
			MainGPU:   mc.MainGPU,
			VocabOnly: mc.VocabOnly,
			UseMMap:   mc.UseMMap,
			UseMLock:  mc.UseMLock,
		}
		if err := m.Load(req); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("preload %s: %w", mc.ID, err))
			continue
		}
		params := types.ParamsRequest{
			Seed:         mc.Seed,
			CtxSize:      mc.CtxSize,
			BatchSize:    mc.BatchSize,
			Threads:      mc.Threads,
			ThreadsBatch: mc.ThreadsBatch,
		}
		if params.Empty() {
			continue
		}
		if err := m.SetParams(mc.ID, params); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("preload %s: %w", mc.ID, err))
		}
	}
	return errs
}
