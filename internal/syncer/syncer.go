// Package syncer mirrors local mutations to the remote store.
//
// Local state is the source of truth; the remote is a best-effort mirror.
// Every write is fire-and-forget: it is queued and the caller returns at once.
// A single background worker drains the queue in call order, so writes from
// one Layer never overtake each other. Failures are logged and counted, and
// nothing is retried or rolled back. Writes from separate sessions are not
// coordinated; the remote keeps whichever lands last.
package syncer

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"reqtrack/internal/model"
)

// Remote is the persistence collaborator. Upserts key on stable identifiers
// (requirement id, media id, folder id, group id), so replaying a write is harmless.
type Remote interface {
	Load(ctx context.Context, userID string) (model.RemoteState, error)

	UpsertRequirementState(ctx context.Context, userID string, st model.RequirementState) error
	UpsertMedia(ctx context.Context, userID string, reqID int, m model.MediaItem) error
	DeleteMedia(ctx context.Context, userID string, mediaID string) error
	UpsertFolder(ctx context.Context, userID string, reqID int, f model.MediaFolder) error
	DeleteFolder(ctx context.Context, userID string, folderID string) error
	UpsertGroup(ctx context.Context, userID string, g model.Group) error
	DeleteGroup(ctx context.Context, userID string, groupID string) error
	UpsertSettings(ctx context.Context, userID string, s model.Settings) error
}

type Layer struct {
	remote Remote
	userID string
	log    *zap.Logger

	mu      sync.Mutex
	queue   []job
	running bool

	wg       sync.WaitGroup
	failures atomic.Int64
	writes   atomic.Int64
}

type job struct {
	op     string
	fields []zap.Field
	fn     func(ctx context.Context) error
}

// New returns a Layer for userID. An empty userID means there is no active
// session: loads return empty state and writes are skipped.
func New(remote Remote, userID string, log *zap.Logger) *Layer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layer{
		remote: remote,
		userID: userID,
		log:    log.Named("sync").With(zap.String("user", userID)),
	}
}

func (l *Layer) HasSession() bool {
	return l != nil && l.remote != nil && l.userID != ""
}

func (l *Layer) UserID() string { return l.userID }

// Load fetches the remote state synchronously.
func (l *Layer) Load(ctx context.Context) (model.RemoteState, error) {
	if !l.HasSession() {
		return model.RemoteState{}, nil
	}
	return l.remote.Load(ctx, l.userID)
}

// Wait blocks until every write issued so far has finished.
func (l *Layer) Wait() {
	if l == nil {
		return
	}
	l.wg.Wait()
}

// Failures is the number of remote writes that returned an error.
func (l *Layer) Failures() int64 { return l.failures.Load() }

// Writes is the number of remote writes issued.
func (l *Layer) Writes() int64 { return l.writes.Load() }

func (l *Layer) UpsertRequirementState(st model.RequirementState) {
	st = st.Clone()
	l.fire("upsert_requirement_state", []zap.Field{zap.Int("req", st.ReqID)}, func(ctx context.Context) error {
		return l.remote.UpsertRequirementState(ctx, l.userID, st)
	})
}

func (l *Layer) UpsertMedia(reqID int, m model.MediaItem) {
	m = m.Clone()
	l.fire("upsert_media", []zap.Field{zap.Int("req", reqID), zap.String("media", m.ID)}, func(ctx context.Context) error {
		return l.remote.UpsertMedia(ctx, l.userID, reqID, m)
	})
}

func (l *Layer) DeleteMedia(mediaID string) {
	l.fire("delete_media", []zap.Field{zap.String("media", mediaID)}, func(ctx context.Context) error {
		return l.remote.DeleteMedia(ctx, l.userID, mediaID)
	})
}

func (l *Layer) UpsertFolder(reqID int, f model.MediaFolder) {
	l.fire("upsert_folder", []zap.Field{zap.Int("req", reqID), zap.String("folder", f.ID)}, func(ctx context.Context) error {
		return l.remote.UpsertFolder(ctx, l.userID, reqID, f)
	})
}

func (l *Layer) DeleteFolder(folderID string) {
	l.fire("delete_folder", []zap.Field{zap.String("folder", folderID)}, func(ctx context.Context) error {
		return l.remote.DeleteFolder(ctx, l.userID, folderID)
	})
}

func (l *Layer) UpsertGroup(g model.Group) {
	g = g.Clone()
	l.fire("upsert_group", []zap.Field{zap.String("group", g.ID)}, func(ctx context.Context) error {
		return l.remote.UpsertGroup(ctx, l.userID, g)
	})
}

func (l *Layer) DeleteGroup(groupID string) {
	l.fire("delete_group", []zap.Field{zap.String("group", groupID)}, func(ctx context.Context) error {
		return l.remote.DeleteGroup(ctx, l.userID, groupID)
	})
}

func (l *Layer) UpsertSettings(s model.Settings) {
	s.ListOrder = append([]model.ListEntry{}, s.ListOrder...)
	s.SelectedIDs = append([]int{}, s.SelectedIDs...)
	if s.ActiveRequirementID != nil {
		v := *s.ActiveRequirementID
		s.ActiveRequirementID = &v
	}
	l.fire("upsert_settings", nil, func(ctx context.Context) error {
		return l.remote.UpsertSettings(ctx, l.userID, s)
	})
}

func (l *Layer) fire(op string, fields []zap.Field, fn func(ctx context.Context) error) {
	if !l.HasSession() {
		l.log.Debug("no active session; skipping remote write", zap.String("op", op))
		return
	}
	l.writes.Add(1)
	l.wg.Add(1)

	l.mu.Lock()
	l.queue = append(l.queue, job{op: op, fields: fields, fn: fn})
	if !l.running {
		l.running = true
		go l.drain()
	}
	l.mu.Unlock()
}

// drain runs queued writes one at a time and exits when the queue is empty.
func (l *Layer) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		j := l.queue[0]
		l.queue[0] = job{}
		l.queue = l.queue[1:]
		l.mu.Unlock()

		// No deadline: timeouts belong to the remote client.
		if err := j.fn(context.Background()); err != nil {
			l.failures.Add(1)
			l.log.Error("remote write failed", append(j.fields, zap.String("op", j.op), zap.Error(err))...)
		}
		l.wg.Done()
	}
}
