// Package registry implements the JSON-file-backed component registry.
//
// The whole registry is one file holding a map from component_id to record.
// An in-memory copy is the source of truth for reads; every mutation
// rewrites the file atomically (temp file, fsync, rename) before returning,
// so a crash mid-write never leaves a partially written registry.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ostrander/smithy/internal/apperr"
	"github.com/ostrander/smithy/internal/models"
)

// Limit bounds for list pagination.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ListFilter narrows a list operation. Empty fields match everything.
type ListFilter struct {
	Platform string
	Category string
	Limit    int
	Offset   int
}

// Store owns the registry file and serializes writers.
type Store struct {
	path string

	mu      sync.RWMutex
	records map[string]models.ComponentRecord
	now     func() time.Time
}

// Open loads the registry file at path, creating an empty one if absent.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		records: make(map[string]models.ComponentRecord),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("registry: create dir: %w", err)
		}
		if err := s.persistLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &s.records); err != nil {
			return nil, fmt.Errorf("registry: parse %s: %w", path, err)
		}
	}
	return s, nil
}

// Register assigns a fresh identifier and timestamps, persists, and returns
// the stored record. Server-assigned fields on the input are ignored.
func (s *Store) Register(rec models.ComponentRecord) (models.ComponentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec.ComponentID = uuid.NewString()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = models.StatusGenerated
	}
	if rec.Platform == "" {
		rec.Platform = models.DefaultPlatform
	}
	if rec.Version == "" {
		rec.Version = "1.0.0"
	}
	if rec.Dependencies == nil {
		rec.Dependencies = []string{}
	}

	s.records[rec.ComponentID] = rec
	if err := s.persistLocked(); err != nil {
		delete(s.records, rec.ComponentID)
		return models.ComponentRecord{}, err
	}
	return rec, nil
}

// Get returns the record with the given identifier.
func (s *Store) Get(id string) (models.ComponentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return models.ComponentRecord{}, apperr.ErrNotFound
	}
	return rec, nil
}

// GetByName returns the most recently created record with the given name.
func (s *Store) GetByName(name string) (models.ComponentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best models.ComponentRecord
	found := false
	for _, rec := range s.records {
		if rec.Name != name {
			continue
		}
		if !found || rec.CreatedAt.After(best.CreatedAt) {
			best = rec
			found = true
		}
	}
	if !found {
		return models.ComponentRecord{}, apperr.ErrNotFound
	}
	return best, nil
}

// List returns the page of records matching the filter, newest first, and
// the total match count independent of pagination. An out-of-range offset
// yields an empty page.
func (s *Store) List(f ListFilter) ([]models.ComponentRecord, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.ComponentRecord, 0, len(s.records))
	for _, rec := range s.records {
		if f.Platform != "" && rec.Platform != f.Platform {
			continue
		}
		if f.Category != "" && rec.Category != f.Category {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ComponentID < matched[j].ComponentID
	})

	total := len(matched)
	if offset >= total {
		return []models.ComponentRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// UpdateDeploymentStatus sets deployment_status and bumps updated_at.
// Any status value may follow any other; there is no state machine.
func (s *Store) UpdateDeploymentStatus(id, status string) (models.ComponentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return models.ComponentRecord{}, apperr.ErrNotFound
	}
	prev := rec
	rec.DeploymentStatus = &status
	rec.UpdatedAt = s.now().UTC()
	s.records[id] = rec
	if err := s.persistLocked(); err != nil {
		s.records[id] = prev
		return models.ComponentRecord{}, err
	}
	return rec, nil
}

// Delete removes a record. Deleting a missing id returns ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return apperr.ErrNotFound
	}
	delete(s.records, id)
	if err := s.persistLocked(); err != nil {
		s.records[id] = rec
		return err
	}
	return nil
}

// Stats aggregates the registry contents.
func (s *Store) Stats() models.RegistryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.RegistryStats{
		ByPlatform: map[string]int{},
		ByCategory: map[string]int{},
		ByStatus:   map[string]int{},
	}
	for _, rec := range s.records {
		stats.TotalComponents++
		stats.ByPlatform[rec.Platform]++
		stats.ByCategory[rec.Category]++
		stats.ByStatus[rec.Status]++
		stats.TotalCodeSize += rec.CodeSize
	}
	return stats
}

// persistLocked writes the registry atomically: tmp file → fsync → rename.
// Callers must hold the write lock.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".registry-tmp-*")
	if err != nil {
		return fmt.Errorf("registry: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("registry: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("registry: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("registry: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("registry: rename: %w", err)
	}
	success = true
	return nil
}
