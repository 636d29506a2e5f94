package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

// columns replaced on conflict; id, slug and created_at survive
var upsertColumns = []string{
	"name", "region", "state", "latitude", "longitude",
	"base_depth", "summit_depth", "new_snow_24h", "new_snow_48h",
	"trails_open", "trails_total", "lifts_open", "lifts_total", "acres_open",
	"is_open", "conditions_updated", "source_url", "last_refreshed",
}

// SQLStore keeps resorts in SQLite
type SQLStore struct {
	db  *bun.DB
	now func() time.Time
}

// OpenSQL opens (creating if needed) the SQLite database at path and ensures
// the schema exists. Pass MemoryDSN for a throwaway database.
func OpenSQL(ctx context.Context, path string, debug bool) (*SQLStore, error) {
	if path != MemoryDSN {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = expanded
	}

	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// in-memory databases are per connection
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	s := &SQLStore{db: db, now: time.Now}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createSchema(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*resort.Resort)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("creating resorts table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*resort.Resort)(nil)).
		Index("resorts_last_refreshed_idx").
		Column("last_refreshed").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("creating refresh index: %w", err)
	}
	return nil
}

// Upsert inserts r or updates the record with the same slug. On return r
// carries the stored ID and creation time.
func (s *SQLStore) Upsert(ctx context.Context, r *resort.Resort) error {
	if r.Slug == "" {
		return errors.New("resort has no slug")
	}
	stamp(r, s.now().UTC())

	q := s.db.NewInsert().Model(r).On("CONFLICT (slug) DO UPDATE")
	for _, col := range upsertColumns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(col), bun.Ident(col))
	}
	if _, err := q.Returning("id, created_at").Exec(ctx); err != nil {
		return fmt.Errorf("upserting %s: %w", r.Slug, err)
	}
	return nil
}

// Get returns the record with the given slug
func (s *SQLStore) Get(ctx context.Context, slug string) (*resort.Resort, error) {
	r := new(resort.Resort)
	err := s.db.NewSelect().Model(r).Where("slug = ?", slug).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", slug, err)
	}
	return r, nil
}

// All returns every record ordered by name
func (s *SQLStore) All(ctx context.Context) ([]*resort.Resort, error) {
	var out []*resort.Resort
	if err := s.db.NewSelect().Model(&out).Order("name ASC", "slug ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("loading resorts: %w", err)
	}
	if out == nil {
		out = []*resort.Resort{}
	}
	return out, nil
}

// CountFreshSince counts records refreshed at or after t
func (s *SQLStore) CountFreshSince(ctx context.Context, t time.Time) (int, error) {
	n, err := s.db.NewSelect().
		Model((*resort.Resort)(nil)).
		Where("last_refreshed >= ?", t.UTC()).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting fresh resorts: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
