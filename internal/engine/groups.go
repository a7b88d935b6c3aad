package engine

import (
	"fmt"
	"sort"
	"strings"

	"reqtrack/internal/model"
)

// CreateGroup groups the current selection and clears it.
func (e *Engine) CreateGroup(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.createGroupLocked(name, e.selection.SelectedIDs)
	if err != nil {
		return "", err
	}
	e.selection = model.Selection{SelectedIDs: []int{}}
	e.pushSettingsLocked()
	return id, nil
}

// CreateGroupFrom groups memberIDs, which must all be loose entries of the list
// order (nested groups are not supported). Members are stored in catalog order
// and the group takes the list position of the earliest member.
func (e *Engine) CreateGroupFrom(name string, memberIDs []int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.createGroupLocked(name, memberIDs)
	if err != nil {
		return "", err
	}
	e.pushSettingsLocked()
	return id, nil
}

func (e *Engine) createGroupLocked(name string, memberIDs []int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errInvalid("group name", "must not be empty")
	}
	if len(memberIDs) == 0 {
		return "", errInvalid("group members", "selection is empty")
	}

	members := make([]int, 0, len(memberIDs))
	dup := map[int]bool{}
	insertAt := len(e.order)
	for _, id := range memberIDs {
		if dup[id] {
			continue
		}
		dup[id] = true
		i := e.looseIndexLocked(id)
		if i < 0 {
			return "", errInvalid("group members", fmt.Sprintf("requirement %d is not a loose list entry", id))
		}
		if i < insertAt {
			insertAt = i
		}
		members = append(members, id)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return e.cat.Position(members[i]) < e.cat.Position(members[j])
	})

	g := &model.Group{ID: e.newID(groupIDPrefix), Name: name, RequirementIDs: members}

	next := make([]model.ListEntry, 0, len(e.order)-len(members)+1)
	for i, ent := range e.order {
		if i == insertAt {
			next = append(next, model.GroupRef(g.ID))
		}
		if ent.Kind == model.EntryRequirement && dup[ent.RequirementID] {
			continue
		}
		next = append(next, ent)
	}
	e.order = next
	e.groups[g.ID] = g
	e.mirror.UpsertGroup(*g)
	return g.ID, nil
}

// Ungroup splices the group's members back into the list order at the group's
// position, in their stored order, and deletes the group. A missing group is a no-op.
func (e *Engine) Ungroup(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[groupID]
	if !ok {
		return nil
	}
	members := make([]model.ListEntry, len(g.RequirementIDs))
	for i, id := range g.RequirementIDs {
		members[i] = model.Loose(id)
	}

	at := e.indexLocked(model.GroupRef(groupID))
	next := make([]model.ListEntry, 0, len(e.order)+len(members))
	if at < 0 {
		next = append(append(next, e.order...), members...)
	} else {
		next = append(next, e.order[:at]...)
		next = append(next, members...)
		next = append(next, e.order[at+1:]...)
	}
	e.order = next
	delete(e.groups, groupID)
	e.mirror.DeleteGroup(groupID)
	e.pushSettingsLocked()
	return nil
}

func (e *Engine) RenameGroup(groupID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errInvalid("group name", "must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[groupID]
	if !ok {
		return errNotFound("group", groupID)
	}
	g.Name = name
	e.mirror.UpsertGroup(*g)
	return nil
}

func (e *Engine) ToggleGroupCollapse(groupID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[groupID]
	if !ok {
		return errNotFound("group", groupID)
	}
	g.Collapsed = !g.Collapsed
	e.mirror.UpsertGroup(*g)
	return nil
}

// ReorderInGroup moves the member at from to to inside one group.
func (e *Engine) ReorderInGroup(groupID string, from, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[groupID]
	if !ok {
		return errNotFound("group", groupID)
	}
	return e.reorderInGroupLocked(g, from, to)
}

func (e *Engine) reorderInGroupLocked(g *model.Group, from, to int) error {
	if from == to && from >= 0 && from < len(g.RequirementIDs) {
		return nil
	}
	next, ok := moveIndex(g.RequirementIDs, from, to)
	if !ok {
		return errInvalid("index", "out of range")
	}
	g.RequirementIDs = next
	e.mirror.UpsertGroup(*g)
	return nil
}

func (e *Engine) Group(groupID string) (model.Group, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.groups[groupID]
	if !ok {
		return model.Group{}, false
	}
	return g.Clone(), true
}

// Groups returns all groups in list order.
func (e *Engine) Groups() []model.Group {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Group, 0, len(e.groups))
	for _, ent := range e.order {
		if !ent.IsGroup() {
			continue
		}
		if g, ok := e.groups[ent.GroupID]; ok {
			out = append(out, g.Clone())
		}
	}
	return out
}
