package store

import (
	"context"

	"github.com/pbaille/tasker/internal/domain"
)

// Links persists the links owned by task entries
type Links struct {
	*Repository[*domain.TaskEntryLink]
}

// NewLinks creates the link repository.
func NewLinks(gw *Gateway) *Links {
	return &Links{Repository: newRepository(gw, linksTable)}
}

// SaveLinks inserts new links under parentID and updates existing ones,
// on the caller's transaction.
func (l *Links) SaveLinks(ctx context.Context, q querier, links []*domain.TaskEntryLink, parentID string) error {
	if len(links) == 0 {
		return nil
	}

	sorted := l.sortLists(links)
	for _, link := range sorted.toInsert {
		link.TaskEntryID = parentID
	}

	if err := l.insertAll(ctx, q, sorted.toInsert); err != nil {
		return err
	}
	return l.updateAll(ctx, q, sorted.toUpdate)
}

// forEntry returns the links of entryID in insertion order.
func (l *Links) forEntry(ctx context.Context, q querier, entryID string) ([]*domain.TaskEntryLink, error) {
	return l.query(ctx, q,
		"SELECT "+l.t.selectColumns("l")+" FROM task_entry_links l WHERE l.task_entry_id = ? ORDER BY l.rowid",
		entryID,
	)
}
