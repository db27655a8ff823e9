package extract

import (
	"github.com/clinicore/intake/internal/model"
)

// Merger collapses pattern- and model-sourced candidates that describe the
// same fact. Candidates of different kinds are never merged, whatever the
// text overlap.
type Merger struct {
	similarityThreshold float64
}

// NewMerger creates a merger. threshold is the token-overlap ratio above
// which two texts of the same kind are judged duplicates.
func NewMerger(threshold float64) *Merger {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	return &Merger{similarityThreshold: threshold}
}

// Merge unions the two candidate sets. On a duplicate the pattern-sourced
// text wins (exact span, more auditable) and the merged candidate records
// both sources. Merging is idempotent: merging a merged set with an empty
// set returns the same set.
func (m *Merger) Merge(patternCands, modelCands []model.FactCandidate) []model.FactCandidate {
	merged := make([]model.FactCandidate, len(patternCands))
	copy(merged, patternCands)

	for _, mc := range modelCands {
		matched := false
		for i := range merged {
			if merged[i].Kind != mc.Kind {
				continue
			}
			if Similarity(merged[i].Text, mc.Text) >= m.similarityThreshold {
				// Pattern text kept; both sources recorded. A both-sourced
				// candidate absorbing another duplicate stays both-sourced.
				if merged[i].Source != mc.Source {
					merged[i].Source = model.SourceBoth
				}
				matched = true
				break
			}
		}
		if !matched {
			merged = append(merged, mc)
		}
	}

	return dedupeCandidates(merged)
}
