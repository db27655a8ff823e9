// Package engine orchestrates one conversational turn: pattern and model
// extraction in parallel, merge, classification, routing, reconciliation,
// and store writes. One candidate set is produced, scored and routed
// before the next turn begins; no candidate outlives a turn.
package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/clinicore/intake/internal/classify"
	"github.com/clinicore/intake/internal/extract"
	"github.com/clinicore/intake/internal/llm"
	"github.com/clinicore/intake/internal/model"
	"github.com/clinicore/intake/internal/reconcile"
	"github.com/clinicore/intake/internal/route"
	"github.com/clinicore/intake/internal/store"
)

// Engine is the memory extraction and routing engine
type Engine struct {
	pattern    *extract.PatternExtractor
	modelEx    *llm.Extractor
	merger     *extract.Merger
	classifier *classify.Classifier
	router     *route.Router
	reconciler *reconcile.Reconciler
	stores     map[model.StoreName]store.Store

	minConfidence float64
	verbose       bool
}

// New wires the pipeline from configuration. modelEx may be a disabled
// extractor (nil provider); the engine then runs pattern-only.
func New(cfg *model.Config, stores map[model.StoreName]store.Store, modelEx *llm.Extractor) (*Engine, error) {
	router, err := route.NewRouter(cfg.Stores.Default)
	if err != nil {
		return nil, err
	}
	for _, name := range model.StoreNames() {
		if _, ok := stores[name]; !ok {
			return nil, fmt.Errorf("missing %s store", name)
		}
	}

	return &Engine{
		pattern:       extract.NewPatternExtractor(),
		modelEx:       modelEx,
		merger:        extract.NewMerger(cfg.Engine.SimilarityThreshold),
		classifier:    classify.NewClassifier(),
		router:        router,
		reconciler:    reconcile.NewReconciler(cfg.Engine.ConsistencyBonus, cfg.Engine.SimilarityThreshold),
		stores:        stores,
		minConfidence: cfg.Engine.MinConfidence,
		verbose:       cfg.Output.Verbose,
	}, nil
}

// ProcessTurn runs one utterance through the full pipeline and returns the
// persisted records and contradiction flags. The only hard failure is a
// failed write of a critical-priority candidate; every other degradation
// surfaces as a warning on the result.
func (e *Engine) ProcessTurn(ctx context.Context, patientID, text string, conv model.ConversationContext) (*model.TurnResult, error) {
	if patientID == "" {
		return nil, fmt.Errorf("patient id is required")
	}

	result := &model.TurnResult{PatientID: patientID}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	// Pattern and model extraction are independent reads of the same
	// input; they fan out and join before the merge. The model path
	// enforces its own timeout and degrades to an empty set on failure.
	var patternCands, modelCands []model.FactCandidate
	var modelErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		modelCands, modelErr = e.modelEx.Extract(ctx, text, conv)
	}()
	patternCands = e.pattern.Extract(text, conv)
	wg.Wait()

	if modelErr != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("turn completed pattern-only: %v", modelErr))
	}

	merged := e.merger.Merge(patternCands, modelCands)

	for _, cand := range merged {
		cand.PatientID = patientID
		cand = e.classifier.Classify(cand)

		target, err := e.router.Route(cand.Kind)
		if err != nil {
			// Unreachable for validated candidates; dropped, never fatal.
			e.logf("dropping unroutable candidate %q: %v", cand.Text, err)
			continue
		}
		st := e.stores[target]

		cand, flags, err := e.reconciler.Reconcile(ctx, cand, st)
		if err != nil {
			// Store lookup failure degrades to "no prior record found".
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("reconciliation lookup failed for %q in %s store: %v", cand.Text, target, err))
		}
		result.Flags = append(result.Flags, flags...)

		if cand.Confidence < e.minConfidence {
			e.logf("discarding low-confidence candidate %q (%.2f)", cand.Text, cand.Confidence)
			continue
		}

		rec := recordFrom(cand, target)
		if err := st.Insert(ctx, &rec); err != nil {
			if cand.Priority == model.PriorityCritical {
				return nil, &CriticalWriteError{Candidate: cand, Store: target, Err: err}
			}
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("record %q (%s) not persisted to %s store: %v", cand.Text, cand.Kind, target, err))
			continue
		}
		result.Persisted = append(result.Persisted, rec)
	}

	return result, nil
}

// recordFrom builds the store record for a scored candidate
func recordFrom(cand model.FactCandidate, target model.StoreName) model.Record {
	rec := model.Record{
		PatientID:  cand.PatientID,
		Kind:       cand.Kind,
		Text:       cand.Text,
		Source:     cand.Source,
		Confidence: cand.Confidence,
		Priority:   cand.Priority,
		CreatedAt:  cand.Timestamp,
		Store:      target,
	}
	if target == model.StoreEpisodic && !cand.Timestamp.IsZero() {
		t := cand.Timestamp
		rec.EventDate = &t
	}
	return rec
}

func (e *Engine) logf(format string, args ...interface{}) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
