// Package store persists the pin set in a single JSON file. All
// mutations hold a mutex and rewrite the file atomically, so a crash
// never leaves a half-written pin set behind.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"pinmap/internal/datetime"
	appLog "pinmap/internal/log"
	"pinmap/internal/model"
)

// ErrNotFound is returned when no pin with the requested ID exists.
var ErrNotFound = errors.New("pin not found")

// fileFormat is the on-disk shape of the store.
type fileFormat struct {
	Pins []model.Pin `json:"pins"`
}

// Store is a mutex-guarded, file-backed pin collection.
type Store struct {
	path string

	mu   sync.RWMutex
	pins map[string]model.Pin
}

// Open loads the pin set from path, or starts empty if the file does
// not exist yet. The parent directory is created so the first save
// succeeds.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	s := &Store{
		path: path,
		pins: make(map[string]model.Pin),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("decode pin store %s: %w", path, err)
	}
	for _, p := range ff.Pins {
		if p.ID == "" {
			continue
		}
		s.pins[p.ID] = p
	}

	appLog.Info("pin store opened", "path", path, "pin_count", len(s.pins))
	return s, nil
}

// List returns all pins, oldest first.
func (s *Store) List() []model.Pin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Pin, 0, len(s.pins))
	for _, p := range s.pins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns the pin with the given ID.
func (s *Store) Get(id string) (model.Pin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pins[id]
	return p, ok
}

// Create assigns the pin a fresh ID and timestamps, stores it and
// persists the set.
func (s *Store) Create(p model.Pin) (model.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.pins[p.ID] = p
	if err := s.persistLocked(); err != nil {
		delete(s.pins, p.ID)
		return model.Pin{}, err
	}
	return p, nil
}

// Update replaces the mutable fields of an existing pin, keeping its
// ID and creation time.
func (s *Store) Update(id string, p model.Pin) (model.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pins[id]
	if !ok {
		return model.Pin{}, ErrNotFound
	}

	p.ID = prev.ID
	p.CreatedAt = prev.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.pins[id] = p
	if err := s.persistLocked(); err != nil {
		s.pins[id] = prev
		return model.Pin{}, err
	}
	return p, nil
}

// Delete removes a pin and persists the set.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.pins[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.pins, id)
	if err := s.persistLocked(); err != nil {
		s.pins[id] = prev
		return err
	}
	return nil
}

// PruneExpired removes one-time pins whose end passed more than
// keepDays days before at, judged in each pin's own timezone. Pins
// without a timezone, without a parsable end, or with a recurrence
// rule are never pruned. Returns the number of pins removed.
func (s *Store) PruneExpired(at time.Time, keepDays int) (int, error) {
	if keepDays < 0 {
		keepDays = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.pins {
		if !expiredBy(p, at, keepDays) {
			continue
		}
		delete(s.pins, id)
		removed++
		appLog.Debug("pruned expired pin", "id", id, "title", p.Title, "end_time", p.EndTime)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := s.persistLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}

func expiredBy(p model.Pin, at time.Time, keepDays int) bool {
	if p.Kind == model.KindScheduled || p.ScheduleRule != "" {
		return false
	}
	end, ok := datetime.ParseDateTime(p.EndTime)
	if !ok {
		return false
	}
	now, ok := datetime.PartsIn(at, p.Timezone)
	if !ok {
		return false
	}
	cutoff := datetime.AddHours(end, keepDays*24)
	return datetime.Compare(cutoff, now) < 0
}

// persistLocked writes the current pin set to disk. Callers must hold
// the write lock.
func (s *Store) persistLocked() error {
	ff := fileFormat{Pins: make([]model.Pin, 0, len(s.pins))}
	for _, p := range s.pins {
		ff.Pins = append(ff.Pins, p)
	}
	sort.Slice(ff.Pins, func(i, j int) bool {
		if !ff.Pins[i].CreatedAt.Equal(ff.Pins[j].CreatedAt) {
			return ff.Pins[i].CreatedAt.Before(ff.Pins[j].CreatedAt)
		}
		return ff.Pins[i].ID < ff.Pins[j].ID
	})

	data, err := json.MarshalIndent(ff, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write pin store %s: %w", s.path, err)
	}
	return nil
}
