package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reqtrack/internal/catalog"
	"reqtrack/internal/model"
	"reqtrack/internal/syncer"
)

// fakeRemote is an in-memory syncer.Remote for a single user.
type fakeRemote struct {
	mu       sync.Mutex
	fail     bool
	states   map[int]model.RequirementState
	media    map[string]mediaRow
	folders  map[string]folderRow
	groups   map[string]model.Group
	settings *model.Settings
	ops      []string
}

type mediaRow struct {
	reqID int
	item  model.MediaItem
}

type folderRow struct {
	reqID  int
	folder model.MediaFolder
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		states:  map[int]model.RequirementState{},
		media:   map[string]mediaRow{},
		folders: map[string]folderRow{},
		groups:  map[string]model.Group{},
	}
}

var errRemoteDown = errors.New("remote down")

func (f *fakeRemote) write(op string, apply func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
	if f.fail {
		return errRemoteDown
	}
	apply()
	return nil
}

func (f *fakeRemote) opCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, op := range f.ops {
		if len(op) >= len(prefix) && op[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeRemote) Load(ctx context.Context, userID string) (model.RemoteState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return model.RemoteState{}, errRemoteDown
	}
	byReq := map[int]*model.RequirementState{}
	get := func(reqID int) *model.RequirementState {
		if st, ok := byReq[reqID]; ok {
			return st
		}
		st := model.DefaultState(reqID)
		if s, ok := f.states[reqID]; ok {
			st.Status, st.Notes = s.Status, s.Notes
		}
		byReq[reqID] = &st
		return &st
	}
	for reqID := range f.states {
		get(reqID)
	}
	for _, r := range f.folders {
		st := get(r.reqID)
		st.Folders = append(st.Folders, r.folder)
	}
	for _, r := range f.media {
		st := get(r.reqID)
		st.Media = append(st.Media, r.item.Clone())
	}
	var out model.RemoteState
	for _, st := range byReq {
		sort.Slice(st.Folders, func(i, j int) bool { return st.Folders[i].ID < st.Folders[j].ID })
		out.States = append(out.States, *st)
	}
	for _, g := range f.groups {
		out.Groups = append(out.Groups, g.Clone())
	}
	if f.settings != nil {
		s := *f.settings
		out.Settings = &s
	}
	return out, nil
}

func (f *fakeRemote) UpsertRequirementState(ctx context.Context, userID string, st model.RequirementState) error {
	return f.write("upsert_state", func() { f.states[st.ReqID] = st })
}

func (f *fakeRemote) UpsertMedia(ctx context.Context, userID string, reqID int, m model.MediaItem) error {
	return f.write("upsert_media", func() { f.media[m.ID] = mediaRow{reqID: reqID, item: m} })
}

func (f *fakeRemote) DeleteMedia(ctx context.Context, userID string, mediaID string) error {
	return f.write("delete_media", func() { delete(f.media, mediaID) })
}

func (f *fakeRemote) UpsertFolder(ctx context.Context, userID string, reqID int, fo model.MediaFolder) error {
	return f.write("upsert_folder", func() { f.folders[fo.ID] = folderRow{reqID: reqID, folder: fo} })
}

func (f *fakeRemote) DeleteFolder(ctx context.Context, userID string, folderID string) error {
	return f.write("delete_folder", func() { delete(f.folders, folderID) })
}

func (f *fakeRemote) UpsertGroup(ctx context.Context, userID string, g model.Group) error {
	return f.write("upsert_group", func() { f.groups[g.ID] = g })
}

func (f *fakeRemote) DeleteGroup(ctx context.Context, userID string, groupID string) error {
	return f.write("delete_group", func() { delete(f.groups, groupID) })
}

func (f *fakeRemote) UpsertSettings(ctx context.Context, userID string, s model.Settings) error {
	return f.write("upsert_settings", func() { f.settings = &s })
}

var _ syncer.Remote = (*fakeRemote)(nil)

func testCatalog(t *testing.T, ids ...int) *catalog.Catalog {
	t.Helper()
	reqs := make([]model.Requirement, len(ids))
	for i, id := range ids {
		reqs[i] = model.Requirement{
			ID:       id,
			Order:    i + 1,
			Name:     fmt.Sprintf("Requirement %d", id),
			Qtd:      model.QuantityOf(1),
			Category: model.CategoryGuard,
		}
	}
	c, err := catalog.New(reqs)
	require.NoError(t, err)
	return c
}

// newTestEngine returns an engine with deterministic ids (grp-1, med-1, ...)
// mirrored to a fresh fake remote.
func newTestEngine(t *testing.T, ids ...int) (*Engine, *fakeRemote) {
	t.Helper()
	r := newFakeRemote()
	e := New(testCatalog(t, ids...), syncer.New(r, "user-1", zap.NewNop()), zap.NewNop())
	counters := map[string]int{}
	var mu sync.Mutex
	e.newID = func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
	return e, r
}

// requireListInvariants checks that every catalog id appears exactly once
// across loose entries and group members, and that groups and list order agree.
func requireListInvariants(t *testing.T, e *Engine) {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()

	count := map[int]int{}
	refs := map[string]int{}
	for _, ent := range e.order {
		switch ent.Kind {
		case model.EntryRequirement:
			count[ent.RequirementID]++
		case model.EntryGroup:
			refs[ent.GroupID]++
			g, ok := e.groups[ent.GroupID]
			require.True(t, ok, "group %s in order but not in registry", ent.GroupID)
			for _, id := range g.RequirementIDs {
				count[id]++
			}
		}
	}
	for _, id := range e.cat.IDs() {
		require.Equal(t, 1, count[id], "requirement %d appears %d times", id, count[id])
	}
	require.Len(t, count, e.cat.Len())
	for id := range e.groups {
		require.Equal(t, 1, refs[id], "group %s referenced %d times", id, refs[id])
	}

	if a := e.selection.LastSelectedID; a != nil {
		require.Contains(t, e.selection.SelectedIDs, *a)
	}
}
