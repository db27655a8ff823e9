// Package reconcile compares new candidates against a patient's existing
// records in the target store, boosting confidence on agreement and
// flagging contradictions. Flags, not confidence suppression, are the
// signaling mechanism: critical new information must never be hidden
// behind stale prior data.
package reconcile

import (
	"context"
	"time"

	"github.com/clinicore/intake/internal/classify"
	"github.com/clinicore/intake/internal/extract"
	"github.com/clinicore/intake/internal/model"
	"github.com/clinicore/intake/internal/store"
)

// Reconciler adjusts candidate confidence against prior records
type Reconciler struct {
	consistencyBonus    float64
	similarityThreshold float64
}

// NewReconciler creates a reconciler. bonus is added once when a prior
// record agrees; threshold is the token-overlap ratio for topic matching.
func NewReconciler(bonus, threshold float64) *Reconciler {
	if bonus <= 0 {
		bonus = 0.1
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.5
	}
	return &Reconciler{consistencyBonus: bonus, similarityThreshold: threshold}
}

// Reconcile looks up the patient's records of the candidate's kind and
// compares polarity. Outcomes:
//   - no prior record on the same topic: confidence unchanged, no flag
//   - prior record agrees: confidence boosted once, clamped to 1.0
//   - prior record contradicts: a flag carrying both texts, confidence
//     left exactly as the classifier computed it
//
// A lookup failure is returned to the caller, which degrades to
// "no prior record found" rather than aborting the turn.
func (r *Reconciler) Reconcile(ctx context.Context, cand model.FactCandidate, st store.Store) (model.FactCandidate, []model.ContradictionFlag, error) {
	priors, err := st.FindByPatientAndKind(ctx, cand.PatientID, cand.Kind)
	if err != nil {
		return cand, nil, err
	}

	var flags []model.ContradictionFlag
	boosted := false
	candNegated := extract.Negated(cand.Text)

	for _, prior := range priors {
		if !r.sameTopic(cand, prior) {
			continue
		}

		if extract.Negated(prior.Text) == candNegated {
			// Same polarity: independent agreement, boost once.
			if !boosted {
				cand.Confidence = classify.Clamp(cand.Confidence + r.consistencyBonus)
				boosted = true
			}
			continue
		}

		flags = append(flags, model.ContradictionFlag{
			PatientID:     cand.PatientID,
			Kind:          cand.Kind,
			PriorRecordID: prior.ID,
			PriorText:     prior.Text,
			NewText:       cand.Text,
			DetectedAt:    time.Now().UTC(),
		})
	}

	cand.Confidence = classify.Clamp(cand.Confidence)
	return cand, flags, nil
}

// sameTopic reports whether a prior record speaks about the same fact as
// the candidate. Token overlap covers the ordinary case; a blanket
// statement ("no known allergies") matches any candidate of its kind,
// since it asserts something about the whole category.
func (r *Reconciler) sameTopic(cand model.FactCandidate, prior model.Record) bool {
	if extract.Similarity(cand.Text, prior.Text) >= r.similarityThreshold {
		return true
	}
	return isBlanket(prior.Text) || isBlanket(cand.Text)
}

// isBlanket detects category-wide statements: after stripping negation and
// stopwords, at most one token remains (the category word itself).
func isBlanket(text string) bool {
	return extract.Negated(text) && len(extract.Tokens(text)) <= 1
}
