package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reqtrack/internal/model"
)

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()

	src, _ := newTestEngine(t, 1, 2, 3, 4)
	src.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, src.SetStatus(2, model.StatusDone))
	require.NoError(t, src.SetNotes(2, "hips out"))
	fld, err := src.CreateFolder(2, "Drills")
	require.NoError(t, err)
	addLink(t, src, 2, "a", &fld)
	gid, err := src.CreateGroupFrom("G", []int{3, 4})
	require.NoError(t, err)
	require.NoError(t, src.ReorderList(1, 0))

	data, err := src.ExportData()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, k := range []string{"version", "exportedAt", "requirements", "userState", "groups", "listOrder"} {
		require.Contains(t, raw, k)
	}
	require.JSONEq(t, `[2,1,"`+gid+`"]`, string(raw["listOrder"]))

	dst, r := newTestEngine(t, 1, 2, 3, 4)
	require.NoError(t, dst.SelectItem(1, false, false))
	require.True(t, dst.ImportData(data))

	require.Equal(t, src.ListOrder(), dst.ListOrder())
	require.Equal(t, src.Groups(), dst.Groups())
	st := dst.State(2)
	require.Equal(t, model.StatusTodo, st.Status, "progress starts over on import")
	require.Equal(t, "hips out", st.Notes)
	require.Equal(t, src.State(2).Media, st.Media)
	require.Empty(t, dst.Selection().SelectedIDs)
	requireListInvariants(t, dst)

	dst.SyncLayer().Wait()
	require.Contains(t, r.groups, gid)
	require.Len(t, r.media, 1)
	require.Equal(t, dst.ListOrder(), r.settings.ListOrder)
}

func TestImportData_Rejections(t *testing.T) {
	t.Parallel()

	e, r := newTestEngine(t, 1, 2)
	require.NoError(t, e.SetNotes(1, "keep"))
	e.SyncLayer().Wait()
	before := r.opCount("")

	require.False(t, e.ImportData([]byte("{not json")))
	require.False(t, e.ImportData([]byte(`{"version": 2}`)))
	require.False(t, e.ImportData([]byte(`{"version": 1, "userState": {"abc": {}}}`)))

	require.Equal(t, "keep", e.State(1).Notes)
	e.SyncLayer().Wait()
	require.Equal(t, before, r.opCount(""))
}

func TestImportData_NormalizesAndDeletesStaleRemoteRows(t *testing.T) {
	t.Parallel()

	e, r := newTestEngine(t, 1, 2, 3)
	old, err := e.CreateGroupFrom("Old", []int{1})
	require.NoError(t, err)
	med := addLink(t, e, 2, "gone", nil)
	e.SyncLayer().Wait()

	// No listOrder: groups are placed first, sorted by id, and missing
	// requirements are appended. Unknown requirement 99 is ignored.
	snap := `{
	  "version": 1,
	  "exportedAt": "2024-05-01T12:00:00Z",
	  "requirements": [],
	  "userState": {"3": {"status": "done", "notes": "n", "media": [], "folders": []},
	                "99": {"status": "done", "notes": "x", "media": [], "folders": []}},
	  "groups": {"grp-b": {"name": "B", "requirementIds": [3, 99]},
	             "grp-a": {"id": "grp-a", "name": "A", "requirementIds": [1, 3]}}
	}`
	require.True(t, e.ImportData([]byte(snap)))
	requireListInvariants(t, e)

	require.Equal(t, []model.ListEntry{
		model.GroupRef("grp-a"), model.GroupRef("grp-b"), model.Loose(2),
	}, e.ListOrder())
	b, ok := e.Group("grp-b")
	require.True(t, ok)
	require.Empty(t, b.RequirementIDs, "3 is already claimed by grp-a")
	require.Equal(t, "n", e.State(3).Notes)
	require.Equal(t, model.StatusTodo, e.State(3).Status)
	require.Empty(t, e.State(2).Media)

	e.SyncLayer().Wait()
	require.NotContains(t, r.groups, old)
	require.NotContains(t, r.media, med)
	require.Contains(t, r.groups, "grp-a")
}
