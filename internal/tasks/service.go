// Package tasks is the entry point the command line uses to create, find
// and list task entries.
package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/pbaille/tasker/internal/domain"
	"github.com/pbaille/tasker/internal/logger"
	"github.com/pbaille/tasker/internal/store"
)

// NewTask is the input of CreateTask
type NewTask struct {
	Title string
	Notes string
	Tags  []string
	Links []string
}

// CreateResult carries the saved entry, or the entry that already existed
// today with the same slug when Duplicate is set.
type CreateResult struct {
	Entry     *domain.TaskEntry
	Duplicate bool
}

// Service runs task operations against the store. Days are read from the
// store clock so slugs and creation dates agree.
type Service struct {
	entries *store.TaskEntries
	tags    *store.Tags
	log     logger.Logger
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used for task events.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service over the entry and tag repositories.
func New(entries *store.TaskEntries, tags *store.Tags, opts ...Option) *Service {
	s := &Service{
		entries: entries,
		tags:    tags,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateTask saves a new entry unless one with the same title was already
// created today, in which case that entry is returned instead.
func (s *Service) CreateTask(ctx context.Context, in NewTask) (*CreateResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &store.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	day := s.entries.Now()
	entry := domain.NewTaskEntry(in.Title, day)
	if entry.Slug == "" {
		return nil, &store.ValidationError{Field: "title", Reason: "needs at least one letter or digit"}
	}

	existing, err := s.entries.ExistsOn(ctx, entry.Slug, day)
	if err != nil {
		return nil, err
	}
	if existing != "" {
		s.log.Info("task already exists", logger.String("id", existing), logger.String("slug", entry.Slug))
		found, err := s.entries.Get(ctx, existing)
		if err != nil {
			return nil, err
		}
		return &CreateResult{Entry: found, Duplicate: true}, nil
	}

	entry.Notes = strings.TrimSpace(in.Notes)

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	entry.Tags = tags

	for _, l := range in.Links {
		if l = strings.TrimSpace(l); l != "" {
			entry.Links = append(entry.Links, domain.TaskEntryLink{Link: l})
		}
	}

	if _, err := s.entries.Save(ctx, entry, store.SaveOptions{}); err != nil {
		return nil, err
	}
	s.log.Info("task created", logger.String("id", entry.ID), logger.String("slug", entry.Slug))

	saved, err := s.entries.Get(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	return &CreateResult{Entry: saved}, nil
}

// resolveTags maps names onto stored tags, creating the missing ones at
// save time. Names that normalize to nothing are dropped; no names left
// means the default tag.
func (s *Service) resolveTags(ctx context.Context, names []string) ([]domain.Tag, error) {
	var titles []string
	for _, name := range SplitTags(names) {
		if title := domain.TagTitle(name); title != "" {
			titles = append(titles, title)
		}
	}
	if len(titles) == 0 {
		def, err := s.tags.Default(ctx)
		if err != nil {
			return nil, err
		}
		return []domain.Tag{*def}, nil
	}

	stored, err := s.tags.ByTitles(ctx, titles)
	if err != nil {
		return nil, err
	}
	byTitle := make(map[string]domain.Tag, len(stored))
	for _, t := range stored {
		byTitle[t.Title] = *t
	}

	var tags []domain.Tag
	seen := make(map[string]bool)
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true
		if t, ok := byTitle[title]; ok {
			tags = append(tags, t)
			continue
		}
		tags = append(tags, *domain.NewTag(title))
	}
	return tags, nil
}

// ListTasks returns the entries created between from and to, inclusive
// by day, that carry any of tags. Zero dates fall back to today and an
// open upper bound.
func (s *Service) ListTasks(ctx context.Context, from, to time.Time, tags []string) ([]*domain.TaskEntry, error) {
	tags = SplitTags(tags)
	s.log.Debug("list tasks", logger.Time("from", from), logger.Time("to", to), logger.Strings("tags", tags))
	return s.entries.DateRangeTags(ctx, store.DateRange{From: from, To: to}, tags)
}

// GetTask returns one entry with its tags and links.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.TaskEntry, error) {
	return s.entries.Get(ctx, id)
}

// RetagTask changes the tags of an existing entry according to policy.
func (s *Service) RetagTask(ctx context.Context, id string, names []string, policy store.TagPolicy) (*domain.TaskEntry, error) {
	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, names)
	if err != nil {
		return nil, err
	}
	entry.Tags = tags

	if _, err := s.entries.Save(ctx, entry, store.SaveOptions{TagPolicy: policy}); err != nil {
		return nil, err
	}
	return s.entries.Get(ctx, id)
}

// SetStatus moves an entry to status.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.TaskEntry, error) {
	if !status.Valid() {
		return nil, &store.ValidationError{Field: "status", Reason: status.String()}
	}

	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Status = status

	if _, err := s.entries.Save(ctx, entry, store.SaveOptions{}); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteTask removes an entry and its links. Unknown ids are ignored.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("task deleted", logger.String("id", id))
	return nil
}

// ListTags returns every tag when size is zero, otherwise one page.
func (s *Service) ListTags(ctx context.Context, page, size int) ([]*domain.Tag, error) {
	if size <= 0 {
		return s.tags.List(ctx)
	}
	return s.tags.Page(ctx, page, size)
}

// SplitTags accepts tags the way they are typed on the command line: a
// single argument may hold several names separated by commas or spaces.
func SplitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, name := range strings.FieldsFunc(r, func(c rune) bool { return c == ',' || c == ' ' || c == '\t' }) {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
