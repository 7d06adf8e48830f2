package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"spendtrail/internal/audit"
	"spendtrail/internal/event"
)

// Store keeps audit records in memory. It intentionally favors clarity over
// performance: every query copies and sorts, which is plenty for tests and
// local development.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	records []audit.Record
	byKey   map[string]struct{}
}

func New() *Store {
	return &Store{byKey: make(map[string]struct{})}
}

func (s *Store) Append(_ context.Context, rec audit.Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.NaturalKey()
	if _, ok := s.byKey[key]; ok {
		return false, nil
	}
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	s.byKey[key] = struct{}{}
	return true, nil
}

func (s *Store) ListByEntity(_ context.Context, entityID string) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return r.EntityID == entityID }), nil
}

func (s *Store) ListByUser(_ context.Context, userID string) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return r.UserID == userID }), nil
}

func (s *Store) ListByWindow(_ context.Context, start, end time.Time) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool {
		return !r.Timestamp.Before(start) && !r.Timestamp.After(end)
	}), nil
}

func (s *Store) ListRecent(_ context.Context, since time.Time) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return !r.Timestamp.Before(since) }), nil
}

func (s *Store) ListByAction(_ context.Context, action event.Action) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool { return r.Action == action }), nil
}

func (s *Store) ListByEntityAndAction(_ context.Context, entityID string, action event.Action) ([]audit.Record, error) {
	return s.filter(func(r audit.Record) bool {
		return r.EntityID == entityID && r.Action == action
	}), nil
}

// filter copies matching records and returns them timestamp-ascending, with
// insertion order breaking ties so per-partition order survives equal stamps.
func (s *Store) filter(match func(audit.Record) bool) []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Record, 0)
	for _, r := range s.records {
		if match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
