package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Record is one cached payload with its fetch time in unix milliseconds.
type Record[T any] struct {
	TS   int64 `json:"ts"`
	Data T     `json:"data"`
}

// IsFresh reports whether a record fetched at ts is still within ttl at now.
// A zero timestamp is never fresh.
func IsFresh(ts int64, now time.Time, ttl time.Duration) bool {
	if ts == 0 {
		return false
	}
	return now.UnixMilli()-ts < ttl.Milliseconds()
}

// Snapshot is a TTL-aware symbol keyed map of one record kind.
type Snapshot[T any] struct {
	mu      sync.RWMutex
	name    string
	entries map[string]Record[T]
	ttl     time.Duration
	now     func() time.Time
	valid   func(T) bool
}

// NewSnapshot creates an empty snapshot. valid filters out empty payloads on
// load; nil accepts everything.
func NewSnapshot[T any](name string, ttl time.Duration, now func() time.Time, valid func(T) bool) *Snapshot[T] {
	if now == nil {
		now = time.Now
	}
	if valid == nil {
		valid = func(T) bool { return true }
	}
	return &Snapshot[T]{
		name:    name,
		entries: make(map[string]Record[T]),
		ttl:     ttl,
		now:     now,
		valid:   valid,
	}
}

// Name returns the record kind.
func (s *Snapshot[T]) Name() string { return s.name }

// Get returns the payload for symbol if a fresh record exists.
func (s *Snapshot[T]) Get(symbol string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entries[symbol]
	if !ok || !IsFresh(rec.TS, s.now(), s.ttl) {
		var zero T
		return zero, false
	}
	return rec.Data, true
}

// Put replaces the record for symbol, stamped with the current time.
func (s *Snapshot[T]) Put(symbol string, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = Record[T]{TS: s.now().UnixMilli(), Data: data}
}

// Len returns the number of records, fresh or not.
func (s *Snapshot[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Counts returns the number of fresh and stale records.
func (s *Snapshot[T]) Counts() (fresh, stale int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	for _, rec := range s.entries {
		if IsFresh(rec.TS, now, s.ttl) {
			fresh++
		} else {
			stale++
		}
	}
	return fresh, stale
}

// Symbols returns the cached symbols in sorted order.
func (s *Snapshot[T]) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	for sym := range s.entries {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Load replaces the in-memory records with the contents of path. A missing
// file is not an error.
func (s *Snapshot[T]) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s cache: %w", s.name, err)
	}

	var raw map[string]Record[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s cache: %w", s.name, err)
	}

	entries := make(map[string]Record[T], len(raw))
	for sym, rec := range raw {
		if s.valid(rec.Data) {
			entries[sym] = rec
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Save rewrites path with every record. The file is replaced atomically.
func (s *Snapshot[T]) Save(path string) error {
	s.mu.RLock()
	out := make(map[string]Record[T], len(s.entries))
	now := s.now().UnixMilli()
	for sym, rec := range s.entries {
		if !s.valid(rec.Data) {
			continue
		}
		if rec.TS == 0 {
			rec.TS = now
		}
		out[sym] = rec
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s cache: %w", s.name, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s cache: %w", s.name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s cache: %w", s.name, err)
	}
	return nil
}
