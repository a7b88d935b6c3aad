package engine

import (
	"errors"
	"sort"

	"reqtrack/internal/model"
)

// MediaList returns the media of one subset (root when folderID is nil) in display order.
func (e *Engine) MediaList(reqID int, folderID *string) []model.MediaItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return []model.MediaItem{}
	}
	sub := mediaSubset(st, folderID)
	out := make([]model.MediaItem, len(sub))
	for i, m := range sub {
		out[i] = m.Clone()
	}
	return out
}

// ReorderMedia moves draggedID to targetID's position within the subset both
// belong to. Items in different subsets are not reordered; moving between
// folders is UpdateMedia's job.
func (e *Engine) ReorderMedia(reqID int, draggedID, targetID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return errNotFound("media", draggedID)
	}
	di := mediaIndex(st, draggedID)
	if di < 0 {
		return errNotFound("media", draggedID)
	}
	ti := mediaIndex(st, targetID)
	if ti < 0 {
		return errNotFound("media", targetID)
	}
	if draggedID == targetID {
		return nil
	}
	folder := st.Media[di].FolderID
	if !sameFolder(folder, st.Media[ti].FolderID) {
		return errInvalid("media", "items are in different folders")
	}

	sub := mediaSubset(st, folder)
	from, to := -1, -1
	for i, m := range sub {
		switch m.ID {
		case draggedID:
			from = i
		case targetID:
			to = i
		}
	}
	plan, err := PlanMediaReorder(sub, from, to)
	if err != nil {
		return errInvalid("media", err.Error())
	}
	for i := range st.Media {
		if ord, ok := plan[st.Media[i].ID]; ok {
			st.Media[i].DisplayOrder = ord
			e.mirror.UpsertMedia(reqID, st.Media[i])
		}
	}
	return nil
}

// PlanMediaReorder plans display orders for moving sub[from] to index to.
//
// sub must be one subset in display order. The subset is renumbered densely
// (0..n-1) in its new order and only items whose DisplayOrder changes are
// returned, so the caller writes the smallest possible delta.
func PlanMediaReorder(sub []model.MediaItem, from, to int) (map[string]int, error) {
	if from < 0 || from >= len(sub) || to < 0 || to >= len(sub) {
		return nil, errors.New("reorder index out of range")
	}
	ids := make([]string, len(sub))
	for i, m := range sub {
		ids[i] = m.ID
	}
	ids, _ = moveIndex(ids, from, to)

	cur := make(map[string]int, len(sub))
	for _, m := range sub {
		cur[m.ID] = m.DisplayOrder
	}
	out := map[string]int{}
	for i, id := range ids {
		if cur[id] != i {
			out[id] = i
		}
	}
	return out, nil
}

// mediaSubset returns the items of one subset sorted by DisplayOrder. Ties keep
// insertion order.
func mediaSubset(st *model.RequirementState, folderID *string) []model.MediaItem {
	var sub []model.MediaItem
	for _, m := range st.Media {
		if m.InFolder(folderID) {
			sub = append(sub, m)
		}
	}
	sort.SliceStable(sub, func(i, j int) bool { return sub[i].DisplayOrder < sub[j].DisplayOrder })
	return sub
}
