package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/pbaille/tasker/internal/domain"
)

// entity is implemented by pointers to the domain records.
type entity interface {
	Base() *domain.EntityBase
}

// operation enumerates the statements every table supports
type operation int

const (
	opList operation = iota
	opPage
	opGet
	opInsert
	opUpdate
	opDelete
)

// table describes how one entity kind maps onto its SQLite table. The
// statements are built once from the column list.
type table[E entity] struct {
	name    string
	columns []string // columns[0] must be id
	newRow  func() E
	fields  func(E) []any // scan destinations, in column order
	values  func(E) []any // bind values, in column order

	stmts   map[operation]string
	updates []int // indexes of the columns written by an update
}

func newTable[E entity](name string, columns []string, newRow func() E, fields, values func(E) []any) *table[E] {
	t := &table[E]{
		name:    name,
		columns: columns,
		newRow:  newRow,
		fields:  fields,
		values:  values,
	}

	var sets []string
	for i, c := range columns {
		if c == "id" || c == "created_at" {
			continue
		}
		sets = append(sets, c+" = ?")
		t.updates = append(t.updates, i)
	}

	cols := strings.Join(columns, ", ")
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")

	t.stmts = map[operation]string{
		opList:   fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", cols, name),
		opPage:   fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid LIMIT ? OFFSET ?", cols, name),
		opGet:    fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", cols, name),
		opInsert: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, cols, placeholders),
		opUpdate: fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", name, strings.Join(sets, ", ")),
		opDelete: fmt.Sprintf("DELETE FROM %s WHERE id = ?", name),
	}
	return t
}

func (t *table[E]) stmt(op operation) string {
	return t.stmts[op]
}

// selectColumns returns the column list qualified with alias.
func (t *table[E]) selectColumns(alias string) string {
	qualified := make([]string, len(t.columns))
	for i, c := range t.columns {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

func (t *table[E]) insertArgs(e E) []any {
	return t.values(e)
}

func (t *table[E]) updateArgs(e E) []any {
	values := t.values(e)
	args := make([]any, 0, len(t.updates)+1)
	for _, i := range t.updates {
		args = append(args, values[i])
	}
	return append(args, e.Base().ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func (t *table[E]) scan(s scanner) (E, error) {
	e := t.newRow()
	if err := s.Scan(t.fields(e)...); err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}

// Per-entity configuration.

var taskEntriesTable = newTable("task_entries",
	[]string{"id", "title", "slug", "status", "notes", "created_at", "updated_at", "deleted_at"},
	func() *domain.TaskEntry { return &domain.TaskEntry{} },
	func(e *domain.TaskEntry) []any {
		return []any{&e.ID, &e.Title, &e.Slug, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt}
	},
	func(e *domain.TaskEntry) []any {
		return []any{e.ID, e.Title, e.Slug, int(e.Status), e.Notes, utc(e.CreatedAt), utc(e.UpdatedAt), nullTime(e.DeletedAt)}
	},
)

var tagsTable = newTable("tags",
	[]string{"id", "title", "is_default", "created_at", "updated_at", "deleted_at"},
	func() *domain.Tag { return &domain.Tag{} },
	func(t *domain.Tag) []any {
		return []any{&t.ID, &t.Title, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt}
	},
	func(t *domain.Tag) []any {
		return []any{t.ID, t.Title, t.IsDefault, utc(t.CreatedAt), utc(t.UpdatedAt), nullTime(t.DeletedAt)}
	},
)

var linksTable = newTable("task_entry_links",
	[]string{"id", "task_entry_id", "link", "created_at", "updated_at", "deleted_at"},
	func() *domain.TaskEntryLink { return &domain.TaskEntryLink{} },
	func(l *domain.TaskEntryLink) []any {
		return []any{&l.ID, &l.TaskEntryID, &l.Link, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt}
	},
	func(l *domain.TaskEntryLink) []any {
		return []any{l.ID, l.TaskEntryID, l.Link, utc(l.CreatedAt), utc(l.UpdatedAt), nullTime(l.DeletedAt)}
	},
)

// Timestamps are stored in UTC so that text comparison orders them.
func utc(t time.Time) time.Time { return t.UTC() }

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
