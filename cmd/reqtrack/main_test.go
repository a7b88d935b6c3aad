package main

import (
	"reflect"
	"testing"
)

func TestRewriteShowShortcut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "no args", in: []string{"reqtrack"}, want: []string{"reqtrack"}},
		{
			name: "id first token",
			in:   []string{"reqtrack", "12"},
			want: []string{"reqtrack", "show", "12"},
		},
		{
			name: "id after value flag",
			in:   []string{"reqtrack", "--dsn", "/tmp/r.sqlite", "12"},
			want: []string{"reqtrack", "--dsn", "/tmp/r.sqlite", "show", "12"},
		},
		{
			name: "id after equals flag",
			in:   []string{"reqtrack", "--format=table", "12"},
			want: []string{"reqtrack", "--format=table", "show", "12"},
		},
		{
			name: "id after bool flag",
			in:   []string{"reqtrack", "--no-session", "12"},
			want: []string{"reqtrack", "--no-session", "show", "12"},
		},
		{
			name: "id after double dash",
			in:   []string{"reqtrack", "--user", "u1", "--", "12"},
			want: []string{"reqtrack", "--user", "u1", "--", "show", "12"},
		},
		{
			name: "value flag that looks like an id",
			in:   []string{"reqtrack", "--user", "7", "list"},
			want: []string{"reqtrack", "--user", "7", "list"},
		},
		{
			name: "subcommand not rewritten",
			in:   []string{"reqtrack", "status", "12", "done"},
			want: []string{"reqtrack", "status", "12", "done"},
		},
		{
			name: "zero and negative are not ids",
			in:   []string{"reqtrack", "0"},
			want: []string{"reqtrack", "0"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"reqtrack", "wat"},
			want: []string{"reqtrack", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteShowShortcut(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteShowShortcut:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
