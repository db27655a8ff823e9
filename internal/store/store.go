// Package store provides the persistence layer for the three memory
// stores. Each store owns one SQLite database file and its schema; the
// engine only ever uses the narrow Store contract: append-only inserts
// and ordered per-patient lookups, never free-form queries.
package store

import (
	"context"
	"fmt"

	"github.com/clinicore/intake/internal/model"
)

// Store is the access contract every memory store exposes
type Store interface {
	// Name identifies the store
	Name() model.StoreName

	// Insert appends a record. Writes for the same
	// (patient_id, kind, normalized text) key are serialized so the same
	// fact reported twice in quick succession cannot race into duplicates.
	Insert(ctx context.Context, rec *model.Record) error

	// FindByPatientAndKind returns the patient's records of one kind in
	// creation order
	FindByPatientAndKind(ctx context.Context, patientID string, kind model.Kind) ([]model.Record, error)

	// Close releases the underlying database
	Close() error
}

// OpenAll opens the three memory stores from configuration
func OpenAll(cfg model.StoresConfig) (map[model.StoreName]Store, error) {
	paths := map[model.StoreName]string{
		model.StoreEpisodic:   cfg.EpisodicPath,
		model.StoreSemantic:   cfg.SemanticPath,
		model.StoreBehavioral: cfg.BehavioralPath,
	}

	stores := make(map[model.StoreName]Store, len(paths))
	for name, path := range paths {
		s, err := Open(name, path)
		if err != nil {
			for _, opened := range stores {
				_ = opened.Close()
			}
			return nil, fmt.Errorf("open %s store: %w", name, err)
		}
		stores[name] = s
	}
	return stores, nil
}

// CloseAll closes every store, returning the first error encountered
func CloseAll(stores map[model.StoreName]Store) error {
	var firstErr error
	for _, s := range stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
