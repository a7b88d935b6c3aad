// Package format renders command results as JSON (the default and the stable
// contract for scripts) or as a colored text table for people.
package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
)

const (
	JSON  = "json"
	Table = "table"
)

// Tabler is implemented by results that have a table rendering.
type Tabler interface {
	Table() TableData
}

type TableData struct {
	Title  string
	Header []string
	Rows   [][]string
	// Faint marks rows rendered dimmed (done items, collapsed members).
	Faint map[int]bool
}

// Write writes v in the requested format. Values without a table rendering
// fall back to indented JSON under the table format.
func Write(w io.Writer, v any, format string, pretty bool, colorize bool) error {
	switch format {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case Table:
		if t, ok := v.(Tabler); ok {
			return WriteTable(w, t.Table(), colorize)
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON, one document per call.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

func WriteTable(w io.Writer, t TableData, colorize bool) error {
	bold := color.New(color.Bold)
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)
	if !colorize {
		bold.DisableColor()
		title.DisableColor()
		faint.DisableColor()
	}

	if t.Title != "" {
		if _, err := title.Fprintln(w, t.Title); err != nil {
			return err
		}
	}
	if len(t.Rows) == 0 {
		_, err := faint.Fprintln(w, " none")
		return err
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	if len(t.Header) > 0 {
		hdr := make([]any, len(t.Header))
		for i, h := range t.Header {
			hdr[i] = bold.Sprint(h)
		}
		tbl.AddRow(hdr...)
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, c := range row {
			if t.Faint[i] {
				cells[j] = faint.Sprint(c)
			} else {
				cells[j] = c
			}
		}
		tbl.AddRow(cells...)
	}
	_, err := fmt.Fprintln(w, tbl)
	return err
}
