package cli

import (
	"strconv"

	"reqtrack/internal/engine"
	"reqtrack/internal/format"
	"reqtrack/internal/model"
)

// listRow is one line of the flattened list: a group header or a requirement.
type listRow struct {
	Kind        string          `json:"kind"`
	ID          int             `json:"id,omitempty"`
	GroupID     string          `json:"groupId,omitempty"`
	Name        string          `json:"name"`
	Category    model.Category  `json:"category,omitempty"`
	Qtd         *model.Quantity `json:"qtd,omitempty"`
	Status      model.Status    `json:"status,omitempty"`
	Collapsed   bool            `json:"collapsed,omitempty"`
	Selected    bool            `json:"selected,omitempty"`
	Active      bool            `json:"active,omitempty"`
	MemberCount int             `json:"memberCount,omitempty"`
}

type listView struct {
	Rows      []listRow       `json:"rows"`
	Selection model.Selection `json:"selection"`
}

func buildListView(e *engine.Engine) listView {
	reqs := map[int]model.Requirement{}
	for _, r := range e.Requirements() {
		reqs[r.ID] = r
	}
	sel := e.Selection()
	active, hasActive := e.ActiveRequirement()

	reqRow := func(id int, groupID string) listRow {
		r := reqs[id]
		q := r.Qtd
		return listRow{
			Kind:     "requirement",
			ID:       id,
			GroupID:  groupID,
			Name:     r.Name,
			Category: r.Category,
			Qtd:      &q,
			Status:   e.State(id).Status,
			Selected: sel.Contains(id),
			Active:   hasActive && active == id,
		}
	}

	groups := map[string]model.Group{}
	for _, g := range e.Groups() {
		groups[g.ID] = g
	}

	v := listView{Rows: []listRow{}, Selection: sel}
	for _, ent := range e.ListOrder() {
		if !ent.IsGroup() {
			v.Rows = append(v.Rows, reqRow(ent.RequirementID, ""))
			continue
		}
		g, ok := groups[ent.GroupID]
		if !ok {
			continue
		}
		v.Rows = append(v.Rows, listRow{
			Kind:        "group",
			GroupID:     g.ID,
			Name:        g.Name,
			Collapsed:   g.Collapsed,
			MemberCount: len(g.RequirementIDs),
		})
		for _, id := range g.RequirementIDs {
			v.Rows = append(v.Rows, reqRow(id, g.ID))
		}
	}
	return v
}

// Table hides members of collapsed groups; JSON output always lists them.
func (v listView) Table() format.TableData {
	t := format.TableData{
		Header: []string{"", "ID", "NAME", "CATEGORY", "QTD", "STATUS"},
		Faint:  map[int]bool{},
	}
	collapsed := map[string]bool{}
	for _, r := range v.Rows {
		if r.Kind == "group" {
			collapsed[r.GroupID] = r.Collapsed
			marker := "▾"
			if r.Collapsed {
				marker = "▸"
			}
			t.Rows = append(t.Rows, []string{marker, r.GroupID, r.Name + " (" + strconv.Itoa(r.MemberCount) + ")", "", "", ""})
			continue
		}
		if r.GroupID != "" && collapsed[r.GroupID] {
			continue
		}
		mark := ""
		if r.Selected {
			mark = "*"
		}
		if r.Active {
			mark += ">"
		}
		name := r.Name
		if r.GroupID != "" {
			name = "  " + name
		}
		qtd := ""
		if r.Qtd != nil {
			qtd = r.Qtd.String()
		}
		if r.Status == model.StatusDone {
			t.Faint[len(t.Rows)] = true
		}
		t.Rows = append(t.Rows, []string{mark, strconv.Itoa(r.ID), name, string(r.Category), qtd, string(r.Status)})
	}
	return t
}

type detailView struct {
	Requirement model.Requirement      `json:"requirement"`
	State       model.RequirementState `json:"state"`
}

func (v detailView) Table() format.TableData {
	t := format.TableData{
		Title:  strconv.Itoa(v.Requirement.ID) + ". " + v.Requirement.Name,
		Header: []string{"FIELD", "VALUE"},
	}
	t.Rows = append(t.Rows,
		[]string{"category", string(v.Requirement.Category)},
		[]string{"qtd", v.Requirement.Qtd.String()},
		[]string{"status", string(v.State.Status)},
		[]string{"notes", v.State.Notes},
		[]string{"media", strconv.Itoa(len(v.State.Media))},
		[]string{"folders", strconv.Itoa(len(v.State.Folders))},
	)
	return t
}

type mediaView struct {
	ReqID    int               `json:"reqId"`
	FolderID *string           `json:"folderId"`
	Items    []model.MediaItem `json:"items"`
}

func (v mediaView) Table() format.TableData {
	title := "Media (root)"
	if v.FolderID != nil {
		title = "Media (" + *v.FolderID + ")"
	}
	t := format.TableData{Title: title, Header: []string{"#", "ID", "TYPE", "TITLE", "URL"}}
	for _, m := range v.Items {
		t.Rows = append(t.Rows, []string{strconv.Itoa(m.DisplayOrder), m.ID, string(m.Type), m.Title, m.URL})
	}
	return t
}

type groupsView []model.Group

func (v groupsView) Table() format.TableData {
	t := format.TableData{Header: []string{"ID", "NAME", "MEMBERS", "COLLAPSED"}}
	for _, g := range v {
		t.Rows = append(t.Rows, []string{g.ID, g.Name, joinInts(g.RequirementIDs), strconv.FormatBool(g.Collapsed)})
	}
	return t
}

func joinInts(xs []int) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ","
		}
		out += strconv.Itoa(x)
	}
	return out
}
