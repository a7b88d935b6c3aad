package engine

import (
	"reqtrack/internal/model"
)

// moveIndex returns a copy of xs with the element at from moved to to.
func moveIndex[T any](xs []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(xs) || to < 0 || to >= len(xs) {
		return xs, false
	}
	out := make([]T, 0, len(xs))
	out = append(out, xs[:from]...)
	out = append(out, xs[from+1:]...)
	v := xs[from]
	out = append(out, v)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = v
	return out, true
}

// ListOrder returns the top-level order of loose requirements and groups.
func (e *Engine) ListOrder() []model.ListEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.ListEntry{}, e.order...)
}

// Flatten expands every group in place to its members. Collapse does not hide
// members here; it is a presentation concern.
func (e *Engine) Flatten() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flattenLocked()
}

func (e *Engine) flattenLocked() []int {
	out := make([]int, 0, e.cat.Len())
	for _, ent := range e.order {
		switch ent.Kind {
		case model.EntryRequirement:
			out = append(out, ent.RequirementID)
		case model.EntryGroup:
			if g, ok := e.groups[ent.GroupID]; ok {
				out = append(out, g.RequirementIDs...)
			}
		}
	}
	return out
}

func (e *Engine) ReorderList(from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reorderListLocked(from, to)
}

func (e *Engine) reorderListLocked(from, to int) error {
	if from == to && from >= 0 && from < len(e.order) {
		return nil
	}
	next, ok := moveIndex(e.order, from, to)
	if !ok {
		return errInvalid("index", "out of range")
	}
	e.order = next
	e.pushSettingsLocked()
	return nil
}

// MoveItem moves active to over's position. Both must be top-level entries,
// or both requirements inside the same group (the move then reorders the
// group's members). Indexes are resolved at call time.
func (e *Engine) MoveItem(active, over model.ListEntry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.indexLocked(active)
	to := e.indexLocked(over)
	if from >= 0 && to >= 0 {
		return e.reorderListLocked(from, to)
	}

	if active.Kind == model.EntryRequirement && over.Kind == model.EntryRequirement {
		ga := e.groupOfLocked(active.RequirementID)
		gb := e.groupOfLocked(over.RequirementID)
		if ga != nil && ga == gb {
			return e.reorderInGroupLocked(ga, indexOf(ga.RequirementIDs, active.RequirementID), indexOf(ga.RequirementIDs, over.RequirementID))
		}
		if ga != nil || gb != nil {
			return errInvalid("move", "items are not in the same list")
		}
	}
	if from < 0 {
		return errNotFound("list entry", active)
	}
	return errNotFound("list entry", over)
}

func (e *Engine) indexLocked(ent model.ListEntry) int {
	for i, x := range e.order {
		if x == ent {
			return i
		}
	}
	return -1
}

func (e *Engine) groupOfLocked(reqID int) *model.Group {
	for _, ent := range e.order {
		if !ent.IsGroup() {
			continue
		}
		if g, ok := e.groups[ent.GroupID]; ok && indexOf(g.RequirementIDs, reqID) >= 0 {
			return g
		}
	}
	return nil
}

func (e *Engine) looseIndexLocked(reqID int) int {
	return e.indexLocked(model.Loose(reqID))
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
