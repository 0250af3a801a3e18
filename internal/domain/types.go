package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/tasker/internal/slug"
)

// EntityBase holds the fields every persisted record carries. An empty ID
// means the record has not been saved yet.
type EntityBase struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"` // reserved, never written
}

// Base gives generic code access to the embedded fields.
func (b *EntityBase) Base() *EntityBase { return b }

// IsNew reports whether the record still needs an insert.
func (b *EntityBase) IsNew() bool { return b.ID == "" }

// Status is the lifecycle state of a task entry
type Status int

const (
	StatusCreated Status = iota
	StatusStarted
	StatusDelayed
	StatusRejected
	StatusCompleted
)

var statusNames = [...]string{"Created", "Started", "Delayed", "Rejected", "Completed"}

func (s Status) String() string {
	if s.Valid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	return s >= StatusCreated && int(s) < len(statusNames)
}

// ParseStatus accepts a status name in any case.
func ParseStatus(name string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", name)
}

// TaskEntry is a tracked task with its tags and links
type TaskEntry struct {
	EntityBase
	Title  string          `json:"title"`
	Slug   string          `json:"slug"`
	Status Status          `json:"status"`
	Notes  string          `json:"notes"`
	Tags   []Tag           `json:"tags,omitempty"`
	Links  []TaskEntryLink `json:"links,omitempty"`
}

// NewTaskEntry builds an unsaved entry whose slug belongs to day.
func NewTaskEntry(title string, day time.Time) *TaskEntry {
	e := &TaskEntry{Status: StatusCreated}
	e.SetTitle(title, day)
	return e
}

// SetTitle normalizes title and recomputes the slug for day.
func (e *TaskEntry) SetTitle(title string, day time.Time) {
	e.Title = TaskTitle(title)
	e.Slug = slug.Make(title, day)
}

// TagTitles returns the titles of the entry's tags.
func (e *TaskEntry) TagTitles() []string {
	titles := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		titles[i] = t.Title
	}
	return titles
}

// Tag is a label shared between task entries
type Tag struct {
	EntityBase
	Title     string `json:"title"`
	IsDefault bool   `json:"is_default"`
}

// NewTag builds an unsaved tag with a normalized title.
func NewTag(title string) *Tag {
	return &Tag{Title: TagTitle(title)}
}

// TagRef pairs a tag with whether it should be associated with the entry
// being saved.
type TagRef struct {
	Tag       *Tag
	Associate bool
}

// TaskEntryLink is a URL or reference owned by a single task entry
type TaskEntryLink struct {
	EntityBase
	TaskEntryID string `json:"task_entry_id"`
	Link        string `json:"link"`
}
