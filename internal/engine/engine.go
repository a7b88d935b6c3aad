// Package engine is the state container behind the requirement list: per
// requirement user state, groups, the top-level list order, the selection and
// media ordering.
//
// Every operation updates in-memory state synchronously and then hands the
// delta to the sync layer, which mirrors it to the remote store without
// blocking the caller. Local state never rolls back on a remote failure.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"reqtrack/internal/catalog"
	"reqtrack/internal/model"
	"reqtrack/internal/syncer"
)

type Engine struct {
	mu sync.Mutex

	cat      *catalog.Catalog
	mirror   *syncer.Layer
	log      *zap.Logger
	validate *validator.Validate

	newID func(prefix string) string
	now   func() time.Time

	states    map[int]*model.RequirementState
	groups    map[string]*model.Group
	order     []model.ListEntry
	selection model.Selection
	active    *int
}

// New returns an engine seeded with the catalog in catalog order and no user state.
// layer may be nil, in which case nothing is mirrored.
func New(cat *catalog.Catalog, layer *syncer.Layer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if layer == nil {
		layer = syncer.New(nil, "", log)
	}
	e := &Engine{
		cat:      cat,
		mirror:   layer,
		log:      log.Named("engine"),
		validate: validator.New(),
		newID:    newRandomID,
		now:      func() time.Time { return time.Now().UTC() },
	}
	e.resetLocked()
	return e
}

func (e *Engine) resetLocked() {
	e.states = map[int]*model.RequirementState{}
	e.groups = map[string]*model.Group{}
	e.order = make([]model.ListEntry, 0, e.cat.Len())
	for _, id := range e.cat.IDs() {
		e.order = append(e.order, model.Loose(id))
	}
	e.selection = model.Selection{SelectedIDs: []int{}}
	e.active = nil
}

// Init replaces the in-memory state with what the remote store holds for the
// session user. Without a session the engine is left with empty user state.
// Calling Init again discards local state and reloads.
func (e *Engine) Init(ctx context.Context) error {
	rs, err := e.mirror.Load(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	if err != nil {
		e.log.Error("load remote state", zap.String("user", e.mirror.UserID()), zap.Error(err))
		return fmt.Errorf("init: load remote state: %w", err)
	}

	for _, st := range rs.States {
		if !e.cat.Has(st.ReqID) {
			e.log.Warn("dropping state for unknown requirement", zap.Int("req", st.ReqID))
			continue
		}
		cp := sanitizeState(st)
		e.states[st.ReqID] = &cp
	}
	for _, g := range rs.Groups {
		if g.ID == "" {
			continue
		}
		cp := g.Clone()
		e.groups[g.ID] = &cp
	}
	if rs.Settings != nil {
		e.order = append([]model.ListEntry{}, rs.Settings.ListOrder...)
		e.selection.SelectedIDs = append([]int{}, rs.Settings.SelectedIDs...)
		switch {
		case rs.Settings.LastSelectedID != nil:
			anchor := *rs.Settings.LastSelectedID
			e.selection.LastSelectedID = &anchor
		case len(e.selection.SelectedIDs) > 0:
			last := e.selection.SelectedIDs[len(e.selection.SelectedIDs)-1]
			e.selection.LastSelectedID = &last
		}
		if rs.Settings.ActiveRequirementID != nil {
			v := *rs.Settings.ActiveRequirementID
			e.active = &v
		}
	} else if len(e.groups) > 0 {
		// Groups must claim their members before the loose catalog entries do.
		e.order = groupRefs(e.groups)
	}
	if e.normalizeLocked() {
		e.log.Info("normalized list order after load", zap.String("user", e.mirror.UserID()))
	}
	return nil
}

// Requirements returns the catalog in catalog order.
func (e *Engine) Requirements() []model.Requirement {
	return e.cat.All()
}

// State returns the user state for reqID, or the default view if none exists.
func (e *Engine) State(reqID int) model.RequirementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[reqID]; ok {
		return st.Clone()
	}
	return model.DefaultState(reqID)
}

// SyncLayer exposes the mirror so callers can wait for in-flight writes.
func (e *Engine) SyncLayer() *syncer.Layer { return e.mirror }

func (e *Engine) settingsLocked() model.Settings {
	s := model.Settings{
		ListOrder:   append([]model.ListEntry{}, e.order...),
		SelectedIDs: append([]int{}, e.selection.SelectedIDs...),
	}
	if a := e.selection.LastSelectedID; a != nil {
		v := *a
		s.LastSelectedID = &v
	}
	if e.active != nil {
		v := *e.active
		s.ActiveRequirementID = &v
	}
	return s
}

// groupRefs lists the registry's groups as list entries, ordered by id.
func groupRefs(groups map[string]*model.Group) []model.ListEntry {
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]model.ListEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.GroupRef(id))
	}
	return out
}

func (e *Engine) pushSettingsLocked() {
	e.mirror.UpsertSettings(e.settingsLocked())
}

// normalizeLocked restores the list invariants: every catalog requirement
// appears exactly once across loose entries and group members, and every
// group in the registry appears exactly once in the order. It reports whether
// anything changed.
func (e *Engine) normalizeLocked() bool {
	changed := false
	seen := map[int]bool{}
	visited := map[string]bool{}
	out := make([]model.ListEntry, 0, len(e.order))

	claimMembers := func(g *model.Group) {
		kept := make([]int, 0, len(g.RequirementIDs))
		for _, id := range g.RequirementIDs {
			if !e.cat.Has(id) || seen[id] {
				changed = true
				continue
			}
			seen[id] = true
			kept = append(kept, id)
		}
		g.RequirementIDs = kept
	}

	for _, ent := range e.order {
		switch ent.Kind {
		case model.EntryRequirement:
			if !e.cat.Has(ent.RequirementID) || seen[ent.RequirementID] {
				changed = true
				continue
			}
			seen[ent.RequirementID] = true
			out = append(out, ent)
		case model.EntryGroup:
			g, ok := e.groups[ent.GroupID]
			if !ok || visited[ent.GroupID] {
				changed = true
				continue
			}
			visited[ent.GroupID] = true
			claimMembers(g)
			out = append(out, ent)
		default:
			changed = true
		}
	}

	var orphans []string
	for id := range e.groups {
		if !visited[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		claimMembers(e.groups[id])
		out = append(out, model.GroupRef(id))
		changed = true
	}

	for _, id := range e.cat.IDs() {
		if !seen[id] {
			out = append(out, model.Loose(id))
			changed = true
		}
	}
	e.order = out

	if e.pruneSelectionLocked() {
		changed = true
	}
	if e.active != nil && !e.cat.Has(*e.active) {
		e.active = nil
		changed = true
	}
	return changed
}

// sanitizeState fills defaults, drops dangling folder references and orders
// media by DisplayOrder.
func sanitizeState(st model.RequirementState) model.RequirementState {
	out := st.Clone()
	if out.Status == "" {
		out.Status = model.StatusTodo
	}
	folders := map[string]bool{}
	for _, f := range out.Folders {
		folders[f.ID] = true
	}
	for i := range out.Media {
		if fid := out.Media[i].FolderID; fid != nil && !folders[*fid] {
			out.Media[i].FolderID = nil
		}
	}
	sort.SliceStable(out.Media, func(i, j int) bool {
		return out.Media[i].DisplayOrder < out.Media[j].DisplayOrder
	})
	return out
}
