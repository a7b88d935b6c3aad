package engine

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"reqtrack/internal/model"
)

// ExportData serializes the catalog, all user state, groups and list order.
func (e *Engine) ExportData() ([]byte, error) {
	e.mu.Lock()
	snap := model.Snapshot{
		Version:      model.SnapshotVersion,
		ExportedAt:   e.now(),
		Requirements: e.cat.All(),
		UserState:    make(map[string]model.RequirementState, len(e.states)),
		Groups:       make(map[string]model.Group, len(e.groups)),
		ListOrder:    append([]model.ListEntry{}, e.order...),
	}
	for id, st := range e.states {
		snap.UserState[model.StateKey(id)] = st.Clone()
	}
	for id, g := range e.groups {
		snap.Groups[id] = g.Clone()
	}
	e.mu.Unlock()

	return json.MarshalIndent(snap, "", "  ")
}

// ImportData replaces user state, groups and list order with the snapshot's.
// Progress is not imported: every status starts over at todo. The snapshot's
// requirements are ignored because the catalog is fixed. Selection and the
// active requirement are cleared. It reports whether the snapshot was applied.
func (e *Engine) ImportData(b []byte) bool {
	var snap model.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		e.log.Warn("import: decode snapshot", zap.Error(err))
		return false
	}
	if snap.Version > model.SnapshotVersion {
		e.log.Warn("import: unsupported snapshot version", zap.Int("version", snap.Version))
		return false
	}

	states := map[int]*model.RequirementState{}
	for key, st := range snap.UserState {
		reqID, err := strconv.Atoi(key)
		if err != nil {
			e.log.Warn("import: bad userState key", zap.String("key", key))
			return false
		}
		if !e.cat.Has(reqID) {
			continue
		}
		st.ReqID = reqID
		cp := sanitizeState(st)
		cp.Status = model.StatusTodo
		states[reqID] = &cp
	}
	groups := map[string]*model.Group{}
	for key, g := range snap.Groups {
		if g.ID == "" {
			g.ID = key
		}
		cp := g.Clone()
		groups[cp.ID] = &cp
	}
	order := append([]model.ListEntry{}, snap.ListOrder...)
	if len(order) == 0 {
		order = groupRefs(groups)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	prevStates, prevGroups := e.states, e.groups
	e.states, e.groups, e.order = states, groups, order
	e.selection = model.Selection{SelectedIDs: []int{}}
	e.active = nil
	e.normalizeLocked()

	e.mirrorReplaceLocked(prevStates, prevGroups)
	return true
}

// mirrorReplaceLocked writes the current state to the remote and deletes what
// the previous state had that the current one lacks.
func (e *Engine) mirrorReplaceLocked(prevStates map[int]*model.RequirementState, prevGroups map[string]*model.Group) {
	for reqID, prev := range prevStates {
		cur := e.states[reqID]
		for _, m := range prev.Media {
			if cur == nil || mediaIndex(cur, m.ID) < 0 {
				e.mirror.DeleteMedia(m.ID)
			}
		}
		for _, f := range prev.Folders {
			if cur == nil || folderIndex(cur, f.ID) < 0 {
				e.mirror.DeleteFolder(f.ID)
			}
		}
		if cur == nil {
			e.mirror.UpsertRequirementState(model.DefaultState(reqID))
		}
	}
	for id := range prevGroups {
		if _, ok := e.groups[id]; !ok {
			e.mirror.DeleteGroup(id)
		}
	}

	for reqID, st := range e.states {
		e.mirror.UpsertRequirementState(*st)
		for _, f := range st.Folders {
			e.mirror.UpsertFolder(reqID, f)
		}
		for _, m := range st.Media {
			e.mirror.UpsertMedia(reqID, m)
		}
	}
	for _, g := range e.groups {
		e.mirror.UpsertGroup(*g)
	}
	e.pushSettingsLocked()
}
