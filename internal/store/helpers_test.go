package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pbaille/tasker/internal/domain"
)

// fakeClock is a settable time source
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Set(t time.Time)         { c.now = t }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testStore struct {
	gw      *Gateway
	clock   *fakeClock
	tags    *Tags
	links   *Links
	entries *TaskEntries
}

// createTestStore opens a fresh database file in a temp dir with the clock
// pinned to start.
func createTestStore(t *testing.T, start time.Time, opts ...Option) *testStore {
	t.Helper()

	clock := &fakeClock{now: start}
	path := filepath.Join(t.TempDir(), "tasks.sqlite")

	gw, err := Open(context.Background(), path, append([]Option{WithClock(clock.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { gw.Close() })

	tags := NewTags(gw)
	links := NewLinks(gw)
	return &testStore{
		gw:      gw,
		clock:   clock,
		tags:    tags,
		links:   links,
		entries: NewTaskEntries(gw, tags, links),
	}
}

func day(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.Local)
}

// countRows counts the rows of table matching where.
func countRows(t *testing.T, s *testStore, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := s.gw.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// saveEntry stores a new entry with the given tag titles and links.
func saveEntry(t *testing.T, s *testStore, title string, tags []string, links ...string) *domain.TaskEntry {
	t.Helper()

	e := domain.NewTaskEntry(title, s.clock.Now())
	for _, tag := range tags {
		e.Tags = append(e.Tags, *domain.NewTag(tag))
	}
	for _, l := range links {
		e.Links = append(e.Links, domain.TaskEntryLink{Link: l})
	}

	saved, err := s.entries.Save(context.Background(), e, SaveOptions{})
	if err != nil {
		t.Fatalf("Failed to save %q: %v", title, err)
	}
	return saved
}

func tagSet(tags []domain.Tag) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t.Title] = true
	}
	return set
}

func entryIDs(entries []*domain.TaskEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}
