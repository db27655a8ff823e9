// Package classify assigns priority tiers and confidence scores to merged
// fact candidates. Priority is a pure function of kind; confidence starts
// from a per-source baseline and is clamped after every later adjustment.
package classify

import (
	"strings"

	"github.com/clinicore/intake/internal/model"
)

// Confidence baselines by provenance. A pattern match is an explicit
// lexical hit; a model extraction is inferred; agreement of both sources
// is the strongest signal.
const (
	BaselinePattern = 0.85
	BaselineModel   = 0.65
	BaselineMerged  = 0.95
)

// priorityByKind is the exhaustive kind → urgency table
var priorityByKind = map[model.Kind]model.Priority{
	model.KindAllergy:            model.PriorityCritical,
	model.KindEmergencySymptom:   model.PriorityCritical,
	model.KindCriticalMedication: model.PriorityCritical,
	model.KindCondition:          model.PriorityHigh,
	model.KindMedication:         model.PriorityHigh,
	model.KindFamilyHistory:      model.PriorityHigh,
	model.KindSymptom:            model.PriorityMedium,
	model.KindBehavioralPattern:  model.PriorityMedium,
	model.KindPreference:         model.PriorityLow,
	model.KindNote:               model.PriorityLow,
}

// severityKeywords escalate a medium-priority candidate to high when they
// appear in the raw span the candidate was extracted from
var severityKeywords = []string{
	"severe", "unbearable", "excruciating", "can't breathe", "cannot breathe",
	"crushing", "worst",
}

// Classifier scores candidates. It is stateless and safe for concurrent use.
type Classifier struct{}

// NewClassifier creates a classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify returns the candidate with priority and confidence set.
func (c *Classifier) Classify(cand model.FactCandidate) model.FactCandidate {
	cand.Priority = priorityFor(cand)
	cand.Confidence = Clamp(baselineFor(cand.Source))
	return cand
}

func priorityFor(cand model.FactCandidate) model.Priority {
	p, ok := priorityByKind[cand.Kind]
	if !ok {
		return model.PriorityLow
	}
	if p == model.PriorityMedium && hasSeverityKeyword(cand.RawSpan) {
		return model.PriorityHigh
	}
	return p
}

func baselineFor(source model.Source) float64 {
	switch source {
	case model.SourceBoth:
		return BaselineMerged
	case model.SourcePattern:
		return BaselinePattern
	default:
		return BaselineModel
	}
}

func hasSeverityKeyword(rawSpan string) bool {
	lower := strings.ToLower(rawSpan)
	for _, kw := range severityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Clamp bounds a confidence value to [0,1]. Every adjustment to
// confidence, including reconciliation bonuses, goes through here.
func Clamp(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
