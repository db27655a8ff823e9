package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/clinicore/intake/internal/cache"
	"github.com/clinicore/intake/internal/model"
)

// CachedStore wraps a Store with a read-through cache for
// FindByPatientAndKind. Inserts invalidate the touched (patient, kind)
// key, so reconciliation reads within a turn see a snapshot as of turn
// start and never a half-written one. Cache failures are ignored: the
// cache is an optimization, never a source of truth.
type CachedStore struct {
	inner Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedStore wraps inner with a read-through cache
func NewCachedStore(inner Store, c cache.Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: c, ttl: ttl}
}

// Name returns the underlying store identifier
func (s *CachedStore) Name() model.StoreName {
	return s.inner.Name()
}

// Insert appends via the underlying store and invalidates the lookup key
func (s *CachedStore) Insert(ctx context.Context, rec *model.Record) error {
	if err := s.inner.Insert(ctx, rec); err != nil {
		return err
	}
	_ = s.cache.Delete(cache.LookupKey(string(s.Name()), rec.PatientID, string(rec.Kind)))
	return nil
}

// FindByPatientAndKind serves from cache when possible
func (s *CachedStore) FindByPatientAndKind(ctx context.Context, patientID string, kind model.Kind) ([]model.Record, error) {
	key := cache.LookupKey(string(s.Name()), patientID, string(kind))
	if data, found := s.cache.Get(key); found {
		var records []model.Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		_ = s.cache.Delete(key)
	}

	records, err := s.inner.FindByPatientAndKind(ctx, patientID, kind)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(records); err == nil {
		_ = s.cache.Set(key, data, s.ttl)
	}
	return records, nil
}

// Close closes the underlying store
func (s *CachedStore) Close() error {
	return s.inner.Close()
}
