package engine

import (
	"strings"

	"reqtrack/internal/model"
)

// MediaInput describes a media item to attach to a requirement.
type MediaInput struct {
	Type     model.MediaType `validate:"required,oneof=video link"`
	Title    string          `validate:"required"`
	URL      string          `validate:"required,url"`
	Notes    *string
	FolderID *string
}

// MediaPatch lists the fields UpdateMedia should change. Nil fields are left alone.
// Set MoveFolder to change the folder; FolderID nil then means root.
type MediaPatch struct {
	Type       *model.MediaType
	Title      *string
	URL        *string
	Notes      *string
	MoveFolder bool
	FolderID   *string
}

// stateLocked returns the mutable state for reqID, creating it on first use.
func (e *Engine) stateLocked(reqID int) *model.RequirementState {
	st, ok := e.states[reqID]
	if !ok {
		d := model.DefaultState(reqID)
		st = &d
		e.states[reqID] = st
	}
	return st
}

func (e *Engine) SetStatus(reqID int, status model.Status) error {
	status, err := model.ParseStatus(string(status))
	if err != nil {
		return errInvalid("status", err.Error())
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cat.Has(reqID) {
		return errNotFound("requirement", reqID)
	}
	st := e.stateLocked(reqID)
	st.Status = status
	e.mirror.UpsertRequirementState(*st)
	return nil
}

func (e *Engine) SetNotes(reqID int, notes string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cat.Has(reqID) {
		return errNotFound("requirement", reqID)
	}
	st := e.stateLocked(reqID)
	st.Notes = notes
	e.mirror.UpsertRequirementState(*st)
	return nil
}

// AddMedia appends a media item to the end of its subset (root or folder) and returns its id.
func (e *Engine) AddMedia(reqID int, in MediaInput) (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	if err := e.validate.Struct(in); err != nil {
		return "", errInvalid("media", err.Error())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cat.Has(reqID) {
		return "", errNotFound("requirement", reqID)
	}
	st := e.stateLocked(reqID)
	if in.FolderID != nil && folderIndex(st, *in.FolderID) < 0 {
		return "", errNotFound("folder", *in.FolderID)
	}

	m := model.MediaItem{
		ID:           e.newID(mediaIDPrefix),
		Type:         in.Type,
		Title:        in.Title,
		URL:          in.URL,
		Notes:        cloneString(in.Notes),
		FolderID:     cloneString(in.FolderID),
		DisplayOrder: nextDisplayOrder(st, in.FolderID),
	}
	st.Media = append(st.Media, m)
	e.mirror.UpsertMedia(reqID, m)
	return m.ID, nil
}

// RemoveMedia deletes a media item. Removing a missing item is a no-op.
func (e *Engine) RemoveMedia(reqID int, mediaID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return nil
	}
	i := mediaIndex(st, mediaID)
	if i < 0 {
		return nil
	}
	st.Media = append(st.Media[:i], st.Media[i+1:]...)
	e.mirror.DeleteMedia(mediaID)
	return nil
}

func (e *Engine) UpdateMedia(reqID int, mediaID string, p MediaPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return errNotFound("media", mediaID)
	}
	i := mediaIndex(st, mediaID)
	if i < 0 {
		return errNotFound("media", mediaID)
	}

	next := st.Media[i].Clone()
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.URL != nil {
		next.URL = strings.TrimSpace(*p.URL)
	}
	if p.Notes != nil {
		next.Notes = cloneString(p.Notes)
	}
	in := MediaInput{Type: next.Type, Title: next.Title, URL: next.URL}
	if err := e.validate.Struct(in); err != nil {
		return errInvalid("media", err.Error())
	}
	if p.MoveFolder && !sameFolder(next.FolderID, p.FolderID) {
		if p.FolderID != nil && folderIndex(st, *p.FolderID) < 0 {
			return errNotFound("folder", *p.FolderID)
		}
		next.FolderID = cloneString(p.FolderID)
		next.DisplayOrder = nextDisplayOrder(st, p.FolderID)
	}

	st.Media[i] = next
	e.mirror.UpsertMedia(reqID, next)
	return nil
}

func (e *Engine) CreateFolder(reqID int, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errInvalid("folder name", "must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cat.Has(reqID) {
		return "", errNotFound("requirement", reqID)
	}
	st := e.stateLocked(reqID)
	f := model.MediaFolder{ID: e.newID(folderIDPrefix), Name: name}
	st.Folders = append(st.Folders, f)
	e.mirror.UpsertFolder(reqID, f)
	return f.ID, nil
}

func (e *Engine) RenameFolder(reqID int, folderID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errInvalid("folder name", "must not be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return errNotFound("folder", folderID)
	}
	i := folderIndex(st, folderID)
	if i < 0 {
		return errNotFound("folder", folderID)
	}
	st.Folders[i].Name = name
	e.mirror.UpsertFolder(reqID, st.Folders[i])
	return nil
}

// RemoveFolder deletes a folder and moves its media to the root, after the
// existing root items and in their previous relative order. Media is never
// deleted. Removing a missing folder is a no-op.
func (e *Engine) RemoveFolder(reqID int, folderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.states[reqID]
	if !ok {
		return nil
	}
	fi := folderIndex(st, folderID)
	if fi < 0 {
		return nil
	}

	moved := mediaSubset(st, &folderID)
	next := nextDisplayOrder(st, nil)
	for _, m := range moved {
		i := mediaIndex(st, m.ID)
		st.Media[i].FolderID = nil
		st.Media[i].DisplayOrder = next
		next++
		e.mirror.UpsertMedia(reqID, st.Media[i])
	}
	st.Folders = append(st.Folders[:fi], st.Folders[fi+1:]...)
	e.mirror.DeleteFolder(folderID)
	return nil
}

func mediaIndex(st *model.RequirementState, mediaID string) int {
	for i := range st.Media {
		if st.Media[i].ID == mediaID {
			return i
		}
	}
	return -1
}

func folderIndex(st *model.RequirementState, folderID string) int {
	for i := range st.Folders {
		if st.Folders[i].ID == folderID {
			return i
		}
	}
	return -1
}

func nextDisplayOrder(st *model.RequirementState, folderID *string) int {
	next := 0
	for _, m := range st.Media {
		if m.InFolder(folderID) && m.DisplayOrder >= next {
			next = m.DisplayOrder + 1
		}
	}
	return next
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
