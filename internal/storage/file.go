package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pfrederiksen/ski-spot/internal/resort"
)

// snapshot is the on-disk shape of a FileStore
type snapshot struct {
	UpdatedAt string           `json:"updated_at"`
	Resorts   []*resort.Resort `json:"resorts"`
}

// FileStore keeps resorts in a JSON snapshot file (resorts.json under the
// data directory). The whole snapshot is rewritten on every upsert.
type FileStore struct {
	mu      sync.RWMutex
	path    string
	records map[string]*resort.Resort
	nextID  int64
	now     func() time.Time
}

// OpenFile loads the snapshot in dataDir, starting empty when none exists
func OpenFile(dataDir string) (*FileStore, error) {
	dataDir, err := ExpandPath(dataDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &FileStore{
		path:    filepath.Join(dataDir, "resorts.json"),
		records: make(map[string]*resort.Resort),
		now:     time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing snapshot: %w", err)
	}
	for _, r := range snap.Resorts {
		if r == nil || r.Slug == "" {
			continue
		}
		s.records[r.Slug] = r
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}
	return nil
}

// save writes the snapshot through a temp file so readers never see a
// partial file. Callers hold the write lock.
func (s *FileStore) save() error {
	snap := snapshot{
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
		Resorts:   s.sorted(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Upsert inserts r or replaces the record with the same slug
func (s *FileStore) Upsert(_ context.Context, r *resort.Resort) error {
	if r.Slug == "" {
		return errors.New("resort has no slug")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(r, s.now().UTC())
	if prev, ok := s.records[r.Slug]; ok {
		r.ID = prev.ID
		r.CreatedAt = prev.CreatedAt
	} else {
		s.nextID++
		r.ID = s.nextID
	}

	cp := *r
	s.records[r.Slug] = &cp
	return s.save()
}

// Get returns a copy of the record with the given slug
func (s *FileStore) Get(_ context.Context, slug string) (*resort.Resort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// All returns copies of every record ordered by name
func (s *FileStore) All(_ context.Context) ([]*resort.Resort, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := s.sorted()
	out := make([]*resort.Resort, len(sorted))
	for i, r := range sorted {
		cp := *r
		out[i] = &cp
	}
	return out, nil
}

// CountFreshSince counts records refreshed at or after t
func (s *FileStore) CountFreshSince(_ context.Context, t time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.records {
		if !r.LastRefreshed.Before(t) {
			n++
		}
	}
	return n, nil
}

// Close is a no-op; every upsert is already on disk
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) sorted() []*resort.Resort {
	out := make([]*resort.Resort, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
