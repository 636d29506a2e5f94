package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

var t0 = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func sample(slug, name string, refreshed time.Time) *resort.Resort {
	return &resort.Resort{
		Slug:          slug,
		Name:          name,
		State:         "Colorado",
		Region:        "Rocky Mountains",
		Latitude:      resort.Float(39.6403),
		Longitude:     resort.Float(-106.3742),
		BaseDepth:     resort.Int(48),
		NewSnow24h:    resort.Int(6),
		TrailsOpen:    resort.Int(195),
		TrailsTotal:   resort.Int(195),
		IsOpen:        true,
		SourceURL:     "https://snow.example.com/" + slug,
		LastRefreshed: refreshed,
	}
}

type storeFactory func(t *testing.T) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"sql": func(t *testing.T) Store {
			s, err := OpenSQL(context.Background(), MemoryDSN, false)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"file": func(t *testing.T) Store {
			s, err := OpenFile(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}
}

func TestStore_UpsertAndGet(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			r := sample("vail", "Vail", t0)
			require.NoError(t, s.Upsert(ctx, r))
			assert.NotZero(t, r.ID)

			got, err := s.Get(ctx, "vail")
			require.NoError(t, err)
			assert.Equal(t, "Vail", got.Name)
			assert.Equal(t, 48, *got.BaseDepth)
			assert.Nil(t, got.SummitDepth)
			assert.InDelta(t, 39.6403, *got.Latitude, 1e-9)
			assert.True(t, got.IsOpen)
			assert.True(t, t0.Equal(got.LastRefreshed))
			assert.True(t, t0.Equal(got.CreatedAt))

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_UpsertReplacesBySlug(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			first := sample("vail", "Vail", t0)
			require.NoError(t, s.Upsert(ctx, first))

			later := t0.Add(time.Hour)
			second := sample("vail", "Vail Mountain", later)
			second.BaseDepth = nil
			second.TrailsOpen = resort.Int(0)
			second.IsOpen = false
			require.NoError(t, s.Upsert(ctx, second))

			all, err := s.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 1, "same slug must not create a second record")

			got := all[0]
			assert.Equal(t, first.ID, got.ID)
			assert.Equal(t, "Vail Mountain", got.Name)
			assert.Nil(t, got.BaseDepth, "fields are fully replaced, including with nulls")
			assert.Equal(t, 0, *got.TrailsOpen)
			assert.False(t, got.IsOpen)
			assert.True(t, later.Equal(got.LastRefreshed))
			assert.True(t, t0.Equal(got.CreatedAt), "creation time survives upserts")
		})
	}
}

func TestStore_AllOrderedByName(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			empty, err := s.All(ctx)
			require.NoError(t, err)
			assert.NotNil(t, empty)
			assert.Empty(t, empty)

			for _, r := range []*resort.Resort{
				sample("stowe", "Stowe", t0),
				sample("alta", "Alta", t0),
				sample("killington", "Killington", t0),
			} {
				require.NoError(t, s.Upsert(ctx, r))
			}

			all, err := s.All(ctx)
			require.NoError(t, err)
			var names []string
			for _, r := range all {
				names = append(names, r.Name)
			}
			assert.Equal(t, []string{"Alta", "Killington", "Stowe"}, names)
		})
	}
}

func TestStore_CountFreshSince(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			require.NoError(t, s.Upsert(ctx, sample("old", "Old", t0.Add(-2*time.Hour))))
			require.NoError(t, s.Upsert(ctx, sample("edge", "Edge", t0)))
			require.NoError(t, s.Upsert(ctx, sample("new", "New", t0.Add(30*time.Minute))))

			n, err := s.CountFreshSince(ctx, t0)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = s.CountFreshSince(ctx, t0.Add(-24*time.Hour))
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			n, err = s.CountFreshSince(ctx, t0.Add(time.Hour))
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestStore_ConcurrentUpserts(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			slugs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
			var wg sync.WaitGroup
			for _, slug := range slugs {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, s.Upsert(ctx, sample(slug, slug, t0)))
				}()
			}
			wg.Wait()

			all, err := s.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, len(slugs))
		})
	}
}

func TestStore_RejectsEmptySlug(t *testing.T) {
	for name, newStore := range factories() {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, newStore(t).Upsert(context.Background(), &resort.Resort{Name: "No Slug"}))
		})
	}
}

func TestFileStore_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, sample("vail", "Vail", t0)))
	require.NoError(t, s.Upsert(ctx, sample("alta", "Alta", t0)))

	_, err = os.Stat(filepath.Join(dir, "resorts.json"))
	require.NoError(t, err)

	reopened, err := OpenFile(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "vail")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)

	// IDs keep counting from the highest stored one
	r := sample("stowe", "Stowe", t0)
	require.NoError(t, reopened.Upsert(ctx, r))
	assert.Equal(t, int64(3), r.ID)
}

func TestFileStore_CorruptSnapshot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resorts.json"), []byte("{not json"), 0644))

	_, err := OpenFile(dir)
	assert.Error(t, err)
}

func TestSQLStore_OnDisk(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "skispot.db")

	s, err := OpenSQL(ctx, path, false)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, sample("vail", "Vail", t0)))
	require.NoError(t, s.Close())

	reopened, err := OpenSQL(ctx, path, false)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "vail")
	require.NoError(t, err)
	assert.Equal(t, "Vail", got.Name)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), got)

	got, err = ExpandPath("/tmp/data")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/data", got)
}
