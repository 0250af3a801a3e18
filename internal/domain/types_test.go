package domain

import (
	"testing"
	"time"
)

func TestTaskTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"respond to emails", "Respond To Emails"},
		{"  RESPOND to EMAILS ", "Respond To Emails"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TaskTitle(tt.in); got != tt.want {
			t.Errorf("TaskTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTagTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"work", "Work"},
		{" WORK, ", "Work"},
		{"side.project;", "Sideproject"},
		{"a|b", "Ab"},
		{"home office", "Home Office"},
	}
	for _, tt := range tests {
		if got := TagTitle(tt.in); got != tt.want {
			t.Errorf("TagTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTaskEntry(t *testing.T) {
	day := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	e := NewTaskEntry("respond to emails", day)

	if e.Title != "Respond To Emails" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.Status != StatusCreated {
		t.Errorf("Status = %v, want Created", e.Status)
	}
	if e.Slug == "" {
		t.Fatal("Slug is empty")
	}
	if !e.IsNew() {
		t.Error("new entry should report IsNew")
	}

	other := NewTaskEntry("Respond To Emails", day.Add(5*time.Hour))
	if other.Slug != e.Slug {
		t.Errorf("same-day slugs differ: %q vs %q", other.Slug, e.Slug)
	}
}

func TestParseStatus(t *testing.T) {
	for i, name := range statusNames {
		got, err := ParseStatus(" " + name + " ")
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", name, err)
		}
		if got != Status(i) {
			t.Errorf("ParseStatus(%q) = %v, want %v", name, got, Status(i))
		}
	}

	if _, err := ParseStatus("done"); err == nil {
		t.Error("ParseStatus(done) should fail")
	}
	if Status(9).Valid() {
		t.Error("Status(9) should be invalid")
	}
	if got := StatusCompleted.String(); got != "Completed" {
		t.Errorf("String() = %q", got)
	}
}
