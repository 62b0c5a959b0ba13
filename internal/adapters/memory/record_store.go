// Package memory provides in-process stores for development and single-instance deployments.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	domainaccess "github.com/target/gatekeeper/internal/domain/access"
)

// RecordStore is a mutex-guarded map of authorization records.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domainaccess.Record
}

// NewRecordStore returns an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]domainaccess.Record)}
}

func (s *RecordStore) Get(ctx context.Context, key string) (domainaccess.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return domainaccess.Record{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *RecordStore) Put(ctx context.Context, key string, rec domainaccess.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Email = key
	s.mu.Lock()
	s.records[key] = rec
	s.mu.Unlock()
	return nil
}

func (s *RecordStore) List(ctx context.Context, limit int) ([]domainaccess.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domainaccess.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domainaccess.Record) int { return strings.Compare(a.Email, b.Email) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
