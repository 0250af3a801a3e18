package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pbaille/tasker/internal/domain"
	"github.com/pbaille/tasker/internal/logger"
)

//go:embed schema.sql
var schema string

// markerTable is checked to decide whether the schema needs creating.
const markerTable = "task_entries"

// querier is satisfied by *sql.Conn and *sql.Tx so repository primitives
// can run inside a caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Gateway owns the database file and hands out connections
type Gateway struct {
	db    *sql.DB
	path  string
	now   func() time.Time
	seeds []domain.Tag
	log   logger.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithClock replaces time.Now for every timestamp the store writes or
// compares against.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithSeedTags sets the tags inserted when the schema is created.
func WithSeedTags(tags []domain.Tag) Option {
	return func(g *Gateway) { g.seeds = tags }
}

// WithLogger sets the logger for schema and save events.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// DefaultSeedTags are inserted into a fresh database unless WithSeedTags
// says otherwise.
func DefaultSeedTags() []domain.Tag {
	return []domain.Tag{
		{Title: "Work", IsDefault: true},
		{Title: "Personal"},
	}
}

// Open opens the database at path and creates the schema on first use.
func Open(ctx context.Context, path string, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		path:  path,
		now:   time.Now,
		seeds: DefaultSeedTags(),
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000&_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	g.db = db

	if err := g.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return g, nil
}

// Close closes the database
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Conn returns a dedicated connection. The caller must close it.
func (g *Gateway) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := g.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return conn, nil
}

// bootstrap creates every table and the seed tags in one transaction when
// the marker table is missing.
func (g *Gateway) bootstrap(ctx context.Context) error {
	conn, err := g.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var n int
	err = conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		markerTable,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if n > 0 {
		return nil
	}

	g.log.Info("creating schema", logger.String("path", g.path))

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bootstrap: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	now := g.now().UTC()
	for _, seed := range g.seeds {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO tags (id, title, is_default, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			uuid.New().String(), domain.TagTitle(seed.Title), seed.IsDefault, now, now,
		)
		if err != nil {
			return fmt.Errorf("seed tag %s: %w", seed.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}

// Now is the clock every timestamp written or compared by the store comes
// from.
func (g *Gateway) Now() time.Time {
	return g.now()
}

// dayBounds returns the first and last instant of the local day of t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := startOfDay(t)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
