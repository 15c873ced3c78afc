// Package store persists fetched weather observations in a single flat JSON
// file keyed by station and day. The key space is small and bounded
// (stations × a few days), so the whole file is read on Get and rewritten on
// Put rather than using an embedded database.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/weather"
)

// ErrCorrupt is returned when the cache file exists but cannot be decoded.
// The file is left untouched; repair is the operator's call.
var ErrCorrupt = errors.New("weather cache file is corrupt")

// FileStore is a concurrency-safe file-backed implementation of the weather
// store. It is the sole owner of the cache file: no other component may read
// or write it.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore persisting to path. The file is created
// lazily on the first Put.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Key builds the canonical cache key for a station name and day. Station
// names are used verbatim; the resolver emits canonical names.
func Key(stationName string, day time.Time) string {
	return fmt.Sprintf("%s_%s", stationName, day.Format("2006-01-02"))
}

// Get returns the cached observation for (station, day). An absent key is
// not an error: it yields (nil, nil). An unreadable file yields ErrCorrupt.
func (s *FileStore) Get(stationName string, day time.Time) (weather.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	return entries[Key(stationName, day)], nil
}

// Put stores an observation for (station, day). Existing keys are left
// untouched: content for a fixed key is deterministic, so the first write
// wins and a repeated Put is a no-op.
func (s *FileStore) Put(stationName string, day time.Time, obs weather.Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	key := Key(stationName, day)
	if _, ok := entries[key]; ok {
		return nil
	}
	entries[key] = obs

	return s.write(entries)
}

// load reads and decodes the whole cache file. Callers must hold s.mu.
func (s *FileStore) load() (map[string]weather.Observation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]weather.Observation), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	entries := make(map[string]weather.Observation)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}

// write encodes the full entry map to a temp file and atomically renames it
// over the cache path, so readers never observe a partially written file.
// Callers must hold s.mu.
func (s *FileStore) write(entries map[string]weather.Observation) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode weather cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
