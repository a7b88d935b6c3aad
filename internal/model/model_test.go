package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListEntry_JSONKeepsMixedWireShape(t *testing.T) {
	t.Parallel()

	order := []ListEntry{GroupRef("grp-a"), Loose(20), Loose(7)}
	b, err := json.Marshal(order)
	require.NoError(t, err)
	require.JSONEq(t, `["grp-a",20,7]`, string(b))

	var back []ListEntry
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, order, back)
}

func TestListEntry_RejectsGarbage(t *testing.T) {
	t.Parallel()

	var e ListEntry
	require.Error(t, json.Unmarshal([]byte(`{"x":1}`), &e))
	require.Error(t, json.Unmarshal([]byte(`""`), &e))
}

func TestParseListEntry(t *testing.T) {
	t.Parallel()

	e, err := ParseListEntry(" 12 ")
	require.NoError(t, err)
	require.Equal(t, Loose(12), e)
	require.False(t, e.IsGroup())

	e, err = ParseListEntry("grp-1")
	require.NoError(t, err)
	require.Equal(t, GroupRef("grp-1"), e)
	require.True(t, e.IsGroup())

	_, err = ParseListEntry("  ")
	require.Error(t, err)
}

func TestQuantity_JSON(t *testing.T) {
	t.Parallel()

	var reqs []Requirement
	raw := `[{"id":1,"order":1,"name":"A","qtd":"-","category":"guard"},
	         {"id":2,"order":2,"name":"B","qtd":"TODOS","category":"guard"},
	         {"id":3,"order":3,"name":"C","qtd":4,"category":"guard"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &reqs))

	require.Equal(t, "-", reqs[0].Qtd.String())
	require.True(t, reqs[1].Qtd.IsAll())
	n, ok := reqs[2].Qtd.Count()
	require.True(t, ok)
	require.Equal(t, 4, n)

	b, err := json.Marshal(reqs)
	require.NoError(t, err)
	require.JSONEq(t, raw, string(b))

	var q Quantity
	require.Error(t, json.Unmarshal([]byte(`"some"`), &q))
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	s, err := ParseStatus(" Learning ")
	require.NoError(t, err)
	require.Equal(t, StatusLearning, s)

	_, err = ParseStatus("mastered")
	require.Error(t, err)
}

func TestRequirementState_CloneDoesNotAlias(t *testing.T) {
	t.Parallel()

	folder := "fld-1"
	notes := "grip"
	st := DefaultState(3)
	st.Media = append(st.Media, MediaItem{ID: "med-1", FolderID: &folder, Notes: &notes})
	st.Folders = append(st.Folders, MediaFolder{ID: folder, Name: "Drills"})

	cp := st.Clone()
	*cp.Media[0].FolderID = "other"
	*cp.Media[0].Notes = "changed"
	cp.Folders[0].Name = "X"

	require.Equal(t, "fld-1", *st.Media[0].FolderID)
	require.Equal(t, "grip", *st.Media[0].Notes)
	require.Equal(t, "Drills", st.Folders[0].Name)
}
