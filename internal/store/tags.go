package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pbaille/tasker/internal/domain"
)

// Tags persists tags and their association with task entries
type Tags struct {
	*Repository[*domain.Tag]
}

// NewTags creates the tag repository.
func NewTags(gw *Gateway) *Tags {
	return &Tags{Repository: newRepository(gw, tagsTable)}
}

// Default returns the tag assigned to entries saved without tags.
func (t *Tags) Default(ctx context.Context) (*domain.Tag, error) {
	conn, err := t.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tag, err := t.t.scan(conn.QueryRowContext(ctx,
		"SELECT "+t.t.selectColumns("t")+" FROM tags t WHERE t.is_default = 1 ORDER BY t.rowid LIMIT 1",
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tags", "default")
	}
	if err != nil {
		return nil, fmt.Errorf("get default tag: %w", err)
	}
	return tag, nil
}

// ByTitles returns the stored tags whose normalized title is in titles.
func (t *Tags) ByTitles(ctx context.Context, titles []string) ([]*domain.Tag, error) {
	normalized := normalizeTitles(titles)
	if len(normalized) == 0 {
		return nil, nil
	}

	conn, err := t.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	query, args := inClause("SELECT "+t.t.selectColumns("t")+" FROM tags t WHERE t.title IN (%s) ORDER BY t.title", normalized)
	return t.query(ctx, conn, query, args...)
}

// SaveTags persists the tags in refs and links those marked Associate to
// parentID. It runs on the caller's transaction.
func (t *Tags) SaveTags(ctx context.Context, q querier, refs []domain.TagRef, parentID string) error {
	refs = uniqueRefs(refs)
	if len(refs) == 0 {
		return nil
	}

	batch := make([]*domain.Tag, len(refs))
	for i, ref := range refs {
		if err := t.adopt(ctx, q, ref.Tag); err != nil {
			return err
		}
		batch[i] = ref.Tag
	}

	sorted := t.sortLists(batch)
	if err := t.insertAll(ctx, q, sorted.toInsert); err != nil {
		return err
	}
	if err := t.updateAll(ctx, q, sorted.toUpdate); err != nil {
		return err
	}

	for _, ref := range refs {
		if !ref.Associate {
			continue
		}
		if err := t.associate(ctx, q, parentID, ref.Tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// adopt gives a new tag the id of a stored tag with the same title.
func (t *Tags) adopt(ctx context.Context, q querier, tag *domain.Tag) error {
	tag.Title = domain.TagTitle(tag.Title)
	if !tag.IsNew() {
		return nil
	}

	stored, err := t.t.scan(q.QueryRowContext(ctx,
		"SELECT "+t.t.selectColumns("t")+" FROM tags t WHERE t.title = ?", tag.Title,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find tag %s: %w", tag.Title, err)
	}

	*tag = *stored
	return nil
}

func (t *Tags) associate(ctx context.Context, q querier, entryID, tagID string) error {
	_, err := q.ExecContext(ctx,
		"INSERT OR IGNORE INTO task_entries_tags (id, task_entry_id, tag_id) VALUES (?, ?, ?)",
		uuid.New().String(), entryID, tagID,
	)
	if err != nil {
		return fmt.Errorf("link entry tag: %w", err)
	}
	return nil
}

// clearAssociations removes every join row of entryID.
func (t *Tags) clearAssociations(ctx context.Context, q querier, entryID string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM task_entries_tags WHERE task_entry_id = ?", entryID); err != nil {
		return fmt.Errorf("clear entry tags: %w", err)
	}
	return nil
}

// forEntry returns the tags associated with entryID, ordered by title.
func (t *Tags) forEntry(ctx context.Context, q querier, entryID string) ([]*domain.Tag, error) {
	return t.query(ctx, q, `
		SELECT `+t.t.selectColumns("t")+`
		FROM tags t
		JOIN task_entries_tags et ON t.id = et.tag_id
		WHERE et.task_entry_id = ?
		ORDER BY t.title
	`, entryID)
}

func uniqueRefs(refs []domain.TagRef) []domain.TagRef {
	seen := make(map[string]int, len(refs))
	out := make([]domain.TagRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Tag == nil {
			continue
		}
		key := domain.TagTitle(ref.Tag.Title)
		if i, ok := seen[key]; ok {
			out[i].Associate = out[i].Associate || ref.Associate
			continue
		}
		seen[key] = len(out)
		out = append(out, ref)
	}
	return out
}

func normalizeTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, title := range titles {
		if n := domain.TagTitle(title); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// inClause expands the single %s in query to one placeholder per value.
func inClause(query string, values []string) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return fmt.Sprintf(query, placeholders), args
}
