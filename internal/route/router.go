// Package route maps each scored candidate to exactly one memory store.
package route

import (
	"fmt"

	"github.com/clinicore/intake/internal/model"
)

// storeByKind is the exhaustive kind → store table. "note" is absent on
// purpose: it routes to the caller-configured default store.
var storeByKind = map[model.Kind]model.StoreName{
	model.KindAllergy:            model.StoreSemantic,
	model.KindCondition:          model.StoreSemantic,
	model.KindMedication:         model.StoreSemantic,
	model.KindCriticalMedication: model.StoreSemantic,
	model.KindFamilyHistory:      model.StoreSemantic,
	model.KindEmergencySymptom:   model.StoreEpisodic,
	model.KindSymptom:            model.StoreEpisodic,
	model.KindBehavioralPattern:  model.StoreBehavioral,
	model.KindPreference:         model.StoreBehavioral,
}

// Router resolves the target store for a candidate
type Router struct {
	defaultStore model.StoreName
}

// NewRouter creates a router. defaultStore receives "note" candidates.
func NewRouter(defaultStore model.StoreName) (*Router, error) {
	if !defaultStore.Valid() {
		return nil, fmt.Errorf("unknown default store: %s (supported: episodic, semantic, behavioral)", defaultStore)
	}
	return &Router{defaultStore: defaultStore}, nil
}

// Route returns the store a candidate of the given kind belongs in.
func (r *Router) Route(kind model.Kind) (model.StoreName, error) {
	if kind == model.KindNote {
		return r.defaultStore, nil
	}
	store, ok := storeByKind[kind]
	if !ok {
		return "", fmt.Errorf("no store mapping for kind: %s", kind)
	}
	return store, nil
}
