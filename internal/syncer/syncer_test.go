package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"reqtrack/internal/model"
)

type recordingRemote struct {
	mu    sync.Mutex
	calls []string
	fail  bool
	block chan struct{}
}

func (r *recordingRemote) record(name string) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name)
	if r.fail {
		return errors.New("remote down")
	}
	return nil
}

func (r *recordingRemote) Load(ctx context.Context, userID string) (model.RemoteState, error) {
	return model.RemoteState{Groups: []model.Group{{ID: "grp-x"}}}, nil
}
func (r *recordingRemote) UpsertRequirementState(ctx context.Context, userID string, st model.RequirementState) error {
	return r.record("state")
}
func (r *recordingRemote) UpsertMedia(ctx context.Context, userID string, reqID int, m model.MediaItem) error {
	return r.record("media")
}
func (r *recordingRemote) DeleteMedia(ctx context.Context, userID string, mediaID string) error {
	return r.record("delete_media")
}
func (r *recordingRemote) UpsertFolder(ctx context.Context, userID string, reqID int, f model.MediaFolder) error {
	return r.record("folder")
}
func (r *recordingRemote) DeleteFolder(ctx context.Context, userID string, folderID string) error {
	return r.record("delete_folder")
}
func (r *recordingRemote) UpsertGroup(ctx context.Context, userID string, g model.Group) error {
	return r.record("group")
}
func (r *recordingRemote) DeleteGroup(ctx context.Context, userID string, groupID string) error {
	return r.record("delete_group")
}
func (r *recordingRemote) UpsertSettings(ctx context.Context, userID string, s model.Settings) error {
	return r.record("settings")
}

func TestLayer_WritesAreMirroredAndAwaitable(t *testing.T) {
	t.Parallel()

	r := &recordingRemote{}
	l := New(r, "user-1", zap.NewNop())
	require.Equal(t, "user-1", l.UserID())

	l.UpsertRequirementState(model.DefaultState(1))
	l.UpsertGroup(model.Group{ID: "grp-1"})
	l.UpsertSettings(model.Settings{})
	l.Wait()

	require.Equal(t, []string{"state", "group", "settings"}, r.calls)
	require.EqualValues(t, 3, l.Writes())
	require.Zero(t, l.Failures())
}

func TestLayer_FailureIsLoggedNotReturned(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	r := &recordingRemote{fail: true}
	l := New(r, "user-1", zap.New(core))

	l.DeleteMedia("med-1")
	l.Wait()

	require.EqualValues(t, 1, l.Failures())
	entries := logs.FilterMessage("remote write failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "delete_media", entries[0].ContextMap()["op"])
	require.Equal(t, "med-1", entries[0].ContextMap()["media"])
}

func TestLayer_WritesDoNotBlockCaller(t *testing.T) {
	t.Parallel()

	r := &recordingRemote{block: make(chan struct{})}
	l := New(r, "user-1", zap.NewNop())

	l.UpsertFolder(1, model.MediaFolder{ID: "fld-1"})
	// The call returned while the remote is still blocked.
	r.mu.Lock()
	require.Empty(t, r.calls)
	r.mu.Unlock()

	close(r.block)
	l.Wait()
	require.Equal(t, []string{"folder"}, r.calls)
}

func TestLayer_NoSessionSkipsRemote(t *testing.T) {
	t.Parallel()

	r := &recordingRemote{}
	l := New(r, "", nil)
	require.False(t, l.HasSession())
	require.Empty(t, l.UserID())

	l.UpsertMedia(1, model.MediaItem{ID: "med-1"})
	l.Wait()
	require.Empty(t, r.calls)

	st, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, st.Groups)
}

func TestLayer_PayloadIsCopiedBeforeWrite(t *testing.T) {
	t.Parallel()

	var got model.Group
	var mu sync.Mutex
	r := &groupCapture{fn: func(g model.Group) {
		mu.Lock()
		got = g
		mu.Unlock()
	}, block: make(chan struct{})}
	l := New(r, "user-1", zap.NewNop())

	g := model.Group{ID: "grp-1", RequirementIDs: []int{1, 2}}
	l.UpsertGroup(g)
	g.RequirementIDs[0] = 99
	close(r.block)
	l.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2}, got.RequirementIDs)
}

type groupCapture struct {
	recordingRemote
	fn    func(model.Group)
	block chan struct{}
}

func (g *groupCapture) UpsertGroup(ctx context.Context, userID string, grp model.Group) error {
	<-g.block
	g.fn(grp)
	return nil
}

func TestLayer_WritesLandInCallOrder(t *testing.T) {
	t.Parallel()

	r := &recordingRemote{}
	l := New(r, "user-1", zap.NewNop())

	for i := 0; i < 50; i++ {
		l.UpsertSettings(model.Settings{})
		l.DeleteGroup("grp-1")
	}
	l.Wait()

	require.Len(t, r.calls, 100)
	for i := 0; i < 100; i += 2 {
		require.Equal(t, "settings", r.calls[i])
		require.Equal(t, "delete_group", r.calls[i+1])
	}
}
