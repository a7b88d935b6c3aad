package engine

import (
	"reqtrack/internal/model"
)

// SelectItem applies one click to the selection.
//
//   - default: replace the selection with id and make it the anchor.
//   - multi: toggle id. Adding id makes it the anchor. Removing id clears the
//     anchor instead of pointing it at id, because the anchor must always be a
//     selected id or nil.
//   - rangeSel: add every requirement between the anchor and id (inclusive) in
//     flattened order; the anchor stays put. Without an anchor, or when the
//     anchor or id is missing from the flattened order, it behaves like replace.
//
// rangeSel wins over multi.
func (e *Engine) SelectItem(id int, multi, rangeSel bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cat.Has(id) {
		return errNotFound("requirement", id)
	}

	switch {
	case rangeSel && e.selection.LastSelectedID != nil && e.selectRangeLocked(*e.selection.LastSelectedID, id):
	case multi && !rangeSel:
		e.toggleLocked(id)
	default:
		anchor := id
		e.selection = model.Selection{SelectedIDs: []int{id}, LastSelectedID: &anchor}
	}
	e.pushSettingsLocked()
	return nil
}

func (e *Engine) toggleLocked(id int) {
	if i := indexOf(e.selection.SelectedIDs, id); i >= 0 {
		e.selection.SelectedIDs = append(e.selection.SelectedIDs[:i], e.selection.SelectedIDs[i+1:]...)
		e.selection.LastSelectedID = nil
		return
	}
	e.selection.SelectedIDs = append(e.selection.SelectedIDs, id)
	anchor := id
	e.selection.LastSelectedID = &anchor
}

// selectRangeLocked unions the span between anchor and id into the selection.
// It returns false, changing nothing, if either end is not in the flattened order.
func (e *Engine) selectRangeLocked(anchor, id int) bool {
	flat := e.flattenLocked()
	a := indexOf(flat, anchor)
	b := indexOf(flat, id)
	if a < 0 || b < 0 {
		return false
	}
	if a > b {
		a, b = b, a
	}
	for _, x := range flat[a : b+1] {
		if indexOf(e.selection.SelectedIDs, x) < 0 {
			e.selection.SelectedIDs = append(e.selection.SelectedIDs, x)
		}
	}
	return true
}

func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = model.Selection{SelectedIDs: []int{}}
	e.pushSettingsLocked()
}

func (e *Engine) Selection() model.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := model.Selection{SelectedIDs: append([]int{}, e.selection.SelectedIDs...)}
	if e.selection.LastSelectedID != nil {
		v := *e.selection.LastSelectedID
		out.LastSelectedID = &v
	}
	return out
}

// SetActiveRequirement sets (or with nil clears) the requirement whose detail is open.
func (e *Engine) SetActiveRequirement(id *int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == nil {
		e.active = nil
	} else {
		if !e.cat.Has(*id) {
			return errNotFound("requirement", *id)
		}
		v := *id
		e.active = &v
	}
	e.pushSettingsLocked()
	return nil
}

func (e *Engine) ActiveRequirement() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return 0, false
	}
	return *e.active, true
}

// pruneSelectionLocked drops selected ids that are no longer in the list and
// keeps the anchor a member of the selection.
func (e *Engine) pruneSelectionLocked() bool {
	present := map[int]bool{}
	for _, id := range e.flattenLocked() {
		present[id] = true
	}
	changed := false
	kept := make([]int, 0, len(e.selection.SelectedIDs))
	for _, id := range e.selection.SelectedIDs {
		if !present[id] || indexOf(kept, id) >= 0 {
			changed = true
			continue
		}
		kept = append(kept, id)
	}
	e.selection.SelectedIDs = kept
	if a := e.selection.LastSelectedID; a != nil && indexOf(kept, *a) < 0 {
		e.selection.LastSelectedID = nil
		changed = true
	}
	return changed
}
