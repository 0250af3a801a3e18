package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pbaille/tasker/internal/domain"
)

func TestOpenCreatesSchemaAndSeeds(t *testing.T) {
	s := createTestStore(t, day(2024, 1, 1, 9, 0, 0))

	for _, table := range []string{"task_entries", "tags", "task_entry_links", "task_entries_tags"} {
		if n := countRows(t, s, "sqlite_master", "type = 'table' AND name = ?", table); n != 1 {
			t.Errorf("table %s missing", table)
		}
	}

	tags, err := s.tags.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d seed tags, want 2", len(tags))
	}
	if tags[0].Title != "Work" || !tags[0].IsDefault {
		t.Errorf("first seed = %+v, want default Work", tags[0])
	}
	if tags[1].Title != "Personal" || tags[1].IsDefault {
		t.Errorf("second seed = %+v, want Personal", tags[1])
	}
}

func TestOpenSeedsOnlyOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.sqlite")

	for i := 0; i < 2; i++ {
		gw, err := Open(ctx, path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		tags, err := NewTags(gw).List(ctx)
		gw.Close()
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(tags) != 2 {
			t.Fatalf("Open #%d: got %d tags, want 2", i+1, len(tags))
		}
	}
}

func TestOpenBootstrapRollsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.sqlite")

	// duplicate titles violate the unique constraint on the second insert
	bad := []domain.Tag{{Title: "work", IsDefault: true}, {Title: "Work"}}
	if _, err := Open(ctx, path, WithSeedTags(bad)); err == nil {
		t.Fatal("Open() should fail with duplicate seed tags")
	}

	gw, err := Open(ctx, path, WithSeedTags([]domain.Tag{{Title: "chores", IsDefault: true}}))
	if err != nil {
		t.Fatalf("Open() after failed bootstrap: %v", err)
	}
	defer gw.Close()

	tags, err := NewTags(gw).List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(tags) != 1 || tags[0].Title != "Chores" {
		t.Errorf("tags = %+v, want only Chores", tags)
	}
}

func TestDayBounds(t *testing.T) {
	start, end := dayBounds(day(2024, 3, 5, 14, 30, 0))
	if !start.Equal(day(2024, 3, 5, 0, 0, 0)) {
		t.Errorf("start = %v", start)
	}
	if !end.After(day(2024, 3, 5, 23, 59, 59)) || !end.Before(day(2024, 3, 6, 0, 0, 0)) {
		t.Errorf("end = %v, want last instant of the day", end)
	}
}
