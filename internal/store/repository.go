package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const defaultPageSize = 10

// Repository provides the CRUD primitives shared by every entity kind
type Repository[E entity] struct {
	gw *Gateway
	t  *table[E]
}

func newRepository[E entity](gw *Gateway, t *table[E]) *Repository[E] {
	return &Repository[E]{gw: gw, t: t}
}

// toSave is a child batch split by whether rows already exist
type toSave[E entity] struct {
	toInsert []E
	toUpdate []E
}

func (s toSave[E]) combined() []E {
	all := make([]E, 0, len(s.toInsert)+len(s.toUpdate))
	all = append(all, s.toInsert...)
	return append(all, s.toUpdate...)
}

// List returns every row in storage order.
func (r *Repository[E]) List(ctx context.Context) ([]E, error) {
	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return r.query(ctx, conn, r.t.stmt(opList))
}

// Page returns one page of rows. Pages start at 1.
func (r *Repository[E]) Page(ctx context.Context, page, size int) ([]E, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}

	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return r.query(ctx, conn, r.t.stmt(opPage), size, size*(page-1))
}

// Get returns the row with id or ErrNotFound.
func (r *Repository[E]) Get(ctx context.Context, id string) (E, error) {
	conn, err := r.gw.Conn(ctx)
	if err != nil {
		var zero E
		return zero, err
	}
	defer conn.Close()

	return r.get(ctx, conn, id)
}

// Save inserts e when it has no id and updates it otherwise.
func (r *Repository[E]) Save(ctx context.Context, e E) (E, error) {
	conn, err := r.gw.Conn(ctx)
	if err != nil {
		var zero E
		return zero, err
	}
	defer conn.Close()

	if err := r.save(ctx, conn, e); err != nil {
		var zero E
		return zero, err
	}
	return e, nil
}

// Delete removes the row with id. Missing rows are not an error.
func (r *Repository[E]) Delete(ctx context.Context, id string) error {
	conn, err := r.gw.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, r.t.stmt(opDelete), id); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.t.name, id, err)
	}
	return nil
}

func (r *Repository[E]) get(ctx context.Context, q querier, id string) (E, error) {
	e, err := r.t.scan(q.QueryRowContext(ctx, r.t.stmt(opGet), id))
	if errors.Is(err, sql.ErrNoRows) {
		return e, notFound(r.t.name, id)
	}
	if err != nil {
		return e, fmt.Errorf("get %s %s: %w", r.t.name, id, err)
	}
	return e, nil
}

func (r *Repository[E]) query(ctx context.Context, q querier, query string, args ...any) ([]E, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.name, err)
	}
	defer rows.Close()

	var list []E
	for rows.Next() {
		e, err := r.t.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.t.name, err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.t.name, err)
	}
	return list, nil
}

// save writes e. On failure e keeps the id and timestamps it came with, so
// a new entity can be saved again as an insert.
func (r *Repository[E]) save(ctx context.Context, q querier, e E) error {
	b := e.Base()
	prev := *b
	now := r.gw.now()
	b.UpdatedAt = now

	if b.IsNew() {
		b.ID = uuid.New().String()
		b.CreatedAt = now
		if _, err := q.ExecContext(ctx, r.t.stmt(opInsert), r.t.insertArgs(e)...); err != nil {
			*b = prev
			return fmt.Errorf("insert %s: %w", r.t.name, err)
		}
		return nil
	}

	if err := r.update(ctx, q, e); err != nil {
		*b = prev
		return err
	}
	return nil
}

func (r *Repository[E]) update(ctx context.Context, q querier, e E) error {
	id := e.Base().ID
	res, err := q.ExecContext(ctx, r.t.stmt(opUpdate), r.t.updateArgs(e)...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", r.t.name, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %s: %w", r.t.name, id, err)
	}
	if n == 0 {
		return notFound(r.t.name, id)
	}
	return nil
}

// sortLists splits a batch into rows to insert and rows to update. Rows
// to insert get a fresh id and timestamps.
func (r *Repository[E]) sortLists(batch []E) toSave[E] {
	var sorted toSave[E]
	now := r.gw.now()

	for _, e := range batch {
		b := e.Base()
		b.UpdatedAt = now
		if b.IsNew() {
			b.ID = uuid.New().String()
			b.CreatedAt = now
			sorted.toInsert = append(sorted.toInsert, e)
			continue
		}
		sorted.toUpdate = append(sorted.toUpdate, e)
	}
	return sorted
}

// insertAll inserts a batch through one prepared statement.
func (r *Repository[E]) insertAll(ctx context.Context, q querier, batch []E) error {
	if len(batch) == 0 {
		return nil
	}

	stmt, err := q.PrepareContext(ctx, r.t.stmt(opInsert))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", r.t.name, err)
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.ExecContext(ctx, r.t.insertArgs(e)...); err != nil {
			return fmt.Errorf("insert %s: %w", r.t.name, err)
		}
	}
	return nil
}

func (r *Repository[E]) updateAll(ctx context.Context, q querier, batch []E) error {
	for _, e := range batch {
		if err := r.update(ctx, q, e); err != nil {
			return err
		}
	}
	return nil
}
