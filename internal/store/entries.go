package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/tasker/internal/domain"
	"github.com/pbaille/tasker/internal/logger"
)

// TagPolicy decides what happens to the tags of an entry that already
// exists when it is saved again.
type TagPolicy int

const (
	// TagsReplace makes the saved tags exactly the ones on the entry.
	TagsReplace TagPolicy = iota
	// TagsNarrow keeps only the given tags the entry already has. When
	// none of them match, the stored tags are left alone.
	TagsNarrow
)

// SaveOptions tunes a TaskEntries.Save call
type SaveOptions struct {
	TagPolicy TagPolicy
}

// DateRange bounds a listing by creation day. Zero values mean "today"
// for From and "open ended" for To; both ends are inclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// openEndedYears is how far an unset upper bound reaches.
const openEndedYears = 10

// TaskEntries persists task entries together with their tags and links
type TaskEntries struct {
	*Repository[*domain.TaskEntry]
	tags  *Tags
	links *Links
	log   logger.Logger
}

// NewTaskEntries creates the task entry repository on top of the tag and
// link repositories it saves through.
func NewTaskEntries(gw *Gateway, tags *Tags, links *Links) *TaskEntries {
	return &TaskEntries{
		Repository: newRepository(gw, taskEntriesTable),
		tags:       tags,
		links:      links,
		log:        gw.log,
	}
}

// Save writes the entry, its tags and its links in one transaction.
// Nothing is written when any step fails.
func (r *TaskEntries) Save(ctx context.Context, entry *domain.TaskEntry, opts SaveOptions) (*domain.TaskEntry, error) {
	if strings.TrimSpace(entry.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if entry.Slug == "" {
		return nil, &ValidationError{Field: "title", Reason: "needs at least one letter or digit"}
	}
	if !entry.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: entry.Status.String()}
	}

	op, ref := "update", entry.ID
	if entry.IsNew() {
		op, ref = "insert", entry.Slug
	}

	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return nil, &TxError{Op: op, ID: ref, Err: err}
	}
	defer conn.Close()

	snap := snapshot(entry)
	fail := func(err error) (*domain.TaskEntry, error) {
		snap.restore(entry)
		r.log.Error("save task entry",
			logger.String("op", op),
			logger.String("id", ref),
			logger.String("slug", entry.Slug),
			logger.Error(err),
		)
		return nil, &TxError{Op: op, ID: ref, Err: err}
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("begin: %w", err))
	}

	if err := r.saveTx(ctx, tx, entry, opts); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Warn("rollback task entry", logger.String("id", ref), logger.Error(rbErr))
		}
		return fail(err)
	}

	if err := tx.Commit(); err != nil {
		return fail(fmt.Errorf("commit: %w", err))
	}

	r.log.Debug("saved task entry",
		logger.String("op", op),
		logger.String("id", entry.ID),
		logger.Int("tags", len(entry.Tags)),
		logger.Int("links", len(entry.Links)),
	)
	return entry, nil
}

func (r *TaskEntries) saveTx(ctx context.Context, tx *sql.Tx, entry *domain.TaskEntry, opts SaveOptions) error {
	isNew := entry.IsNew()
	if err := r.save(ctx, tx, entry); err != nil {
		return err
	}

	refs, err := r.tagRefs(ctx, tx, entry, isNew, opts.TagPolicy)
	if err != nil {
		return err
	}
	if err := r.tags.SaveTags(ctx, tx, refs, entry.ID); err != nil {
		return err
	}

	links := make([]*domain.TaskEntryLink, len(entry.Links))
	for i := range entry.Links {
		links[i] = &entry.Links[i]
	}
	return r.links.SaveLinks(ctx, tx, links, entry.ID)
}

// tagRefs applies the tag policy and returns the tags to persist and
// associate with the entry.
func (r *TaskEntries) tagRefs(ctx context.Context, q querier, entry *domain.TaskEntry, isNew bool, policy TagPolicy) ([]domain.TagRef, error) {
	if !isNew {
		if policy == TagsNarrow {
			current, err := r.tags.forEntry(ctx, q, entry.ID)
			if err != nil {
				return nil, err
			}
			kept := narrow(entry.Tags, current)
			if len(kept) == 0 {
				entry.Tags = values(current)
				return nil, nil
			}
			entry.Tags = kept
		}
		if err := r.tags.clearAssociations(ctx, q, entry.ID); err != nil {
			return nil, err
		}
	}

	refs := make([]domain.TagRef, len(entry.Tags))
	for i := range entry.Tags {
		refs[i] = domain.TagRef{Tag: &entry.Tags[i], Associate: true}
	}
	return refs, nil
}

// narrow keeps the stored version of every wanted tag that is already
// in current.
func narrow(wanted []domain.Tag, current []*domain.Tag) []domain.Tag {
	byTitle := make(map[string]*domain.Tag, len(current))
	for _, t := range current {
		byTitle[t.Title] = t
	}

	var kept []domain.Tag
	for _, w := range wanted {
		if t, ok := byTitle[domain.TagTitle(w.Title)]; ok {
			kept = append(kept, *t)
			delete(byTitle, t.Title)
		}
	}
	return kept
}

// Get returns the entry with its tags and links, or ErrNotFound.
func (r *TaskEntries) Get(ctx context.Context, id string) (*domain.TaskEntry, error) {
	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// one read transaction so the entry and its children agree
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()

	entry, err := r.get(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, tx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *TaskEntries) loadChildren(ctx context.Context, q querier, entry *domain.TaskEntry) error {
	tags, err := r.tags.forEntry(ctx, q, entry.ID)
	if err != nil {
		return err
	}
	links, err := r.links.forEntry(ctx, q, entry.ID)
	if err != nil {
		return err
	}
	entry.Tags = values(tags)
	entry.Links = values(links)
	return nil
}

// Now reads the store clock.
func (r *TaskEntries) Now() time.Time {
	return r.gw.Now()
}

// ExistsToday returns the id of the entry created today with slug, or ""
// when there is none.
func (r *TaskEntries) ExistsToday(ctx context.Context, slug string) (string, error) {
	return r.ExistsOn(ctx, slug, r.gw.now())
}

// ExistsOn is ExistsToday for the local calendar day of day.
func (r *TaskEntries) ExistsOn(ctx context.Context, slug string, day time.Time) (string, error) {
	start, end := dayBounds(day)

	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	var id string
	err = conn.QueryRowContext(ctx, `
		SELECT id FROM task_entries
		WHERE slug = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at
		LIMIT 1
	`, slug, start.UTC(), end.UTC()).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find slug %s: %w", slug, err)
	}
	return id, nil
}

// DateRangeTags lists entries created within rng. When tags is not empty
// only entries carrying at least one of them are returned.
func (r *TaskEntries) DateRangeTags(ctx context.Context, rng DateRange, tags []string) ([]*domain.TaskEntry, error) {
	from, to := r.bounds(rng)
	if from.After(to) {
		return nil, &ValidationError{Field: "date range", Reason: "from is after to"}
	}

	query := "SELECT " + r.t.selectColumns("e") + " FROM task_entries e WHERE e.created_at >= ? AND e.created_at <= ?"
	args := []any{from.UTC(), to.UTC()}

	if titles := normalizeTitles(tags); len(titles) > 0 {
		clause, tagArgs := inClause(` AND e.id IN (
			SELECT et.task_entry_id
			FROM task_entries_tags et
			JOIN tags t ON t.id = et.tag_id
			WHERE t.title IN (%s)
		)`, titles)
		query += clause
		args = append(args, tagArgs...)
	}
	query += " ORDER BY e.created_at, e.rowid"

	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	entries, err := r.query(ctx, conn, query, args...)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := r.loadChildren(ctx, conn, e); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// bounds expands rng to whole local days.
func (r *TaskEntries) bounds(rng DateRange) (time.Time, time.Time) {
	now := r.gw.now()

	from := rng.From
	if from.IsZero() {
		from = now
	}
	to := rng.To
	if to.IsZero() {
		to = now.AddDate(openEndedYears, 0, 0)
	}

	_, end := dayBounds(to)
	return startOfDay(from), end
}

// saveSnapshot remembers an entry's state so a failed save leaves it as
// the caller built it.
type saveSnapshot struct {
	base  domain.EntityBase
	tags  []domain.Tag
	links []domain.TaskEntryLink
}

func snapshot(e *domain.TaskEntry) saveSnapshot {
	return saveSnapshot{
		base:  e.EntityBase,
		tags:  append([]domain.Tag(nil), e.Tags...),
		links: append([]domain.TaskEntryLink(nil), e.Links...),
	}
}

func (s saveSnapshot) restore(e *domain.TaskEntry) {
	e.EntityBase = s.base
	e.Tags = s.tags
	e.Links = s.links
}

func values[T any](ptrs []*T) []T {
	if len(ptrs) == 0 {
		return nil
	}
	out := make([]T, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}
