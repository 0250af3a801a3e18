package main

import (
	"strings"
	"testing"
	"time"

	"github.com/pbaille/tasker/internal/domain"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"", time.Time{}, false},
		{"2024-01-31", time.Date(2024, 1, 31, 0, 0, 0, 0, time.Local), false},
		{"31/01/2024", time.Time{}, true},
		{"2024-02-30", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("line one\nline two", 11); got != "line one..." {
		t.Errorf("truncate() = %q, want %q", got, "line one...")
	}
}

func TestRenderEntry(t *testing.T) {
	e := domain.NewTaskEntry("Respond to emails", time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local))
	e.ID = "entry-1"
	e.Notes = "inbox zero"
	e.Tags = []domain.Tag{{Title: "Work", IsDefault: true}}
	e.Links = []domain.TaskEntryLink{{Link: "https://mail"}}

	out := renderEntry(e)
	for _, want := range []string{"entry-1", "Respond To Emails", e.Slug, "Created", "Work", "inbox zero", "https://mail"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderEntry() missing %q:\n%s", want, out)
		}
	}

	list := renderEntries([]*domain.TaskEntry{e})
	if !strings.Contains(list, "Respond To Emails") || !strings.Contains(list, "Title") {
		t.Errorf("renderEntries() = \n%s", list)
	}
}
