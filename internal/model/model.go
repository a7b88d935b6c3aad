package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo     Status = "todo"
	StatusLearning Status = "learning"
	StatusDone     Status = "done"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusTodo:
		return StatusTodo, nil
	case StatusLearning:
		return StatusLearning, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status: %q (expected todo|learning|done)", s)
	}
}

type Category string

const (
	CategoryTakedowns   Category = "takedowns"
	CategoryGuard       Category = "guard"
	CategoryPasses      Category = "passes"
	CategorySweeps      Category = "sweeps"
	CategoryEscapes     Category = "escapes"
	CategorySubmissions Category = "submissions"
	CategoryPositions   Category = "positions"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTakedowns, CategoryGuard, CategoryPasses, CategorySweeps,
		CategoryEscapes, CategorySubmissions, CategoryPositions:
		return true
	}
	return false
}

// Requirement is one graded syllabus item. Requirements come from the static
// catalog and are never mutated at runtime.
type Requirement struct {
	ID       int      `json:"id"`
	Order    int      `json:"order"`
	Name     string   `json:"name"`
	Qtd      Quantity `json:"qtd"`
	Category Category `json:"category"`
}

type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaLink  MediaType = "link"
)

func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaVideo:
		return MediaVideo, nil
	case MediaLink:
		return MediaLink, nil
	default:
		return "", fmt.Errorf("invalid media type: %q (expected video|link)", s)
	}
}

type MediaFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MediaItem struct {
	ID    string    `json:"id"`
	Type  MediaType `json:"type"`
	Title string    `json:"title"`
	URL   string    `json:"url"`
	Notes *string   `json:"notes,omitempty"`

	// FolderID references a folder of the same requirement. Nil means the item is loose (root).
	FolderID *string `json:"folderId,omitempty"`

	// DisplayOrder orders items within their subset (root or one folder).
	DisplayOrder int `json:"displayOrder"`
}

// InFolder reports whether the item belongs to the subset identified by folderID
// (nil selects the root subset).
func (m MediaItem) InFolder(folderID *string) bool {
	if folderID == nil {
		return m.FolderID == nil
	}
	return m.FolderID != nil && *m.FolderID == *folderID
}

type RequirementState struct {
	ReqID   int           `json:"reqId"`
	Status  Status        `json:"status"`
	Notes   string        `json:"notes"`
	Media   []MediaItem   `json:"media"`
	Folders []MediaFolder `json:"folders"`
}

func DefaultState(reqID int) RequirementState {
	return RequirementState{
		ReqID:   reqID,
		Status:  StatusTodo,
		Notes:   "",
		Media:   []MediaItem{},
		Folders: []MediaFolder{},
	}
}

// Clone returns a deep copy so callers can't alias the engine's slices.
func (s RequirementState) Clone() RequirementState {
	out := s
	out.Media = make([]MediaItem, len(s.Media))
	for i, m := range s.Media {
		out.Media[i] = m.Clone()
	}
	out.Folders = append([]MediaFolder{}, s.Folders...)
	return out
}

func (m MediaItem) Clone() MediaItem {
	out := m
	if m.Notes != nil {
		n := *m.Notes
		out.Notes = &n
	}
	if m.FolderID != nil {
		f := *m.FolderID
		out.FolderID = &f
	}
	return out
}

type Group struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	RequirementIDs []int  `json:"requirementIds"`
	Collapsed      bool   `json:"collapsed"`
}

func (g Group) Clone() Group {
	out := g
	out.RequirementIDs = append([]int{}, g.RequirementIDs...)
	return out
}

type Selection struct {
	SelectedIDs    []int `json:"selectedIds"`
	LastSelectedID *int  `json:"lastSelectedId"`
}

func (s Selection) Contains(id int) bool {
	for _, x := range s.SelectedIDs {
		if x == id {
			return true
		}
	}
	return false
}

// Settings is persisted as one opaque blob per user.
type Settings struct {
	ListOrder           []ListEntry `json:"list_order"`
	SelectedIDs         []int       `json:"selected_ids"`
	LastSelectedID      *int        `json:"last_selected_id,omitempty"`
	ActiveRequirementID *int        `json:"active_requirement_id"`
}

// RemoteState is everything the remote store holds for one user.
type RemoteState struct {
	States   []RequirementState `json:"states"`
	Groups   []Group            `json:"groups"`
	Settings *Settings          `json:"settings,omitempty"`
}

// Snapshot is the export/import document.
type Snapshot struct {
	Version      int                         `json:"version"`
	ExportedAt   time.Time                   `json:"exportedAt"`
	Requirements []Requirement               `json:"requirements"`
	UserState    map[string]RequirementState `json:"userState"`
	Groups       map[string]Group            `json:"groups"`
	ListOrder    []ListEntry                 `json:"listOrder,omitempty"`
}

const SnapshotVersion = 1

func StateKey(reqID int) string { return strconv.Itoa(reqID) }

// Quantity is the "qtd" of a requirement: "-" (not counted), "TODOS" (all of them),
// or an explicit count.
type Quantity struct {
	kind  quantityKind
	count int
}

type quantityKind uint8

const (
	quantityNone quantityKind = iota
	quantityAll
	quantityCount
)

func QuantityNone() Quantity    { return Quantity{kind: quantityNone} }
func QuantityAll() Quantity     { return Quantity{kind: quantityAll} }
func QuantityOf(n int) Quantity { return Quantity{kind: quantityCount, count: n} }

func (q Quantity) IsAll() bool { return q.kind == quantityAll }

func (q Quantity) Count() (int, bool) { return q.count, q.kind == quantityCount }

func (q Quantity) String() string {
	switch q.kind {
	case quantityAll:
		return "TODOS"
	case quantityCount:
		return strconv.Itoa(q.count)
	default:
		return "-"
	}
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.kind == quantityCount {
		return []byte(strconv.Itoa(q.count)), nil
	}
	return json.Marshal(q.String())
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*q = QuantityOf(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("qtd: expected integer, \"-\" or \"TODOS\": %s", string(b))
	}
	switch strings.TrimSpace(s) {
	case "-", "":
		*q = QuantityNone()
	case "TODOS":
		*q = QuantityAll()
	default:
		return fmt.Errorf("qtd: unexpected value %q", s)
	}
	return nil
}
