package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

type EntryKind uint8

const (
	EntryRequirement EntryKind = iota + 1
	EntryGroup
)

// ListEntry is one element of the top-level list order: either a loose
// requirement or a reference to a group.
//
// On the wire an entry is a bare integer (requirement) or a bare string (group id).
type ListEntry struct {
	Kind          EntryKind
	RequirementID int
	GroupID       string
}

func Loose(reqID int) ListEntry {
	return ListEntry{Kind: EntryRequirement, RequirementID: reqID}
}

func GroupRef(groupID string) ListEntry {
	return ListEntry{Kind: EntryGroup, GroupID: groupID}
}

func (e ListEntry) IsGroup() bool { return e.Kind == EntryGroup }

func (e ListEntry) String() string {
	switch e.Kind {
	case EntryRequirement:
		return strconv.Itoa(e.RequirementID)
	case EntryGroup:
		return e.GroupID
	default:
		return "<invalid>"
	}
}

// ParseListEntry interprets CLI input: integers are requirement ids, anything else a group id.
func ParseListEntry(s string) (ListEntry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ListEntry{}, errors.New("empty list entry")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Loose(n), nil
	}
	return GroupRef(s), nil
}

func (e ListEntry) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EntryRequirement:
		return []byte(strconv.Itoa(e.RequirementID)), nil
	case EntryGroup:
		return json.Marshal(e.GroupID)
	default:
		return nil, errors.New("list entry: unknown kind")
	}
}

func (e *ListEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return errors.New("list entry: empty group id")
		}
		*e = GroupRef(s)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("list entry: expected integer or string")
	}
	*e = Loose(n)
	return nil
}
