package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// DefaultDataDir is where the CLI keeps its data unless configured otherwise
const DefaultDataDir = "~/.local/share/ski-spot"

// ErrNotFound is returned when no record has the requested slug
var ErrNotFound = errors.New("resort not found")

// Store is the persistent resort cache
type Store interface {
	// Upsert inserts r or replaces the record with the same slug
	Upsert(ctx context.Context, r *resort.Resort) error
	// Get returns the record with the given slug or ErrNotFound
	Get(ctx context.Context, slug string) (*resort.Resort, error)
	// All returns every record ordered by name
	All(ctx context.Context) ([]*resort.Resort, error)
	// CountFreshSince counts records refreshed at or after t
	CountFreshSince(ctx context.Context, t time.Time) (int, error)
	Close() error
}

// ExpandPath expands a leading ~/ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// stamp prepares r for writing: times in UTC, creation time set on first write
func stamp(r *resort.Resort, now time.Time) {
	if r.LastRefreshed.IsZero() {
		r.LastRefreshed = now
	}
	r.LastRefreshed = r.LastRefreshed.UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = r.LastRefreshed
	}
	r.CreatedAt = r.CreatedAt.UTC()
	if r.ConditionsUpdated != nil {
		t := r.ConditionsUpdated.UTC()
		r.ConditionsUpdated = &t
	}
}
