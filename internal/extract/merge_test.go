package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/clinicore/intake/internal/model"
)

func candAt(kind model.Kind, text string, source model.Source) model.FactCandidate {
	return model.FactCandidate{
		Kind:      kind,
		Text:      text,
		Source:    source,
		Timestamp: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
	}
}

func TestMerger_CollapsesDuplicateAcrossSources(t *testing.T) {
	m := NewMerger(0.5)

	pattern := []model.FactCandidate{candAt(model.KindAllergy, "penicillin allergy", model.SourcePattern)}
	mdl := []model.FactCandidate{candAt(model.KindAllergy, "allergy to penicillin", model.SourceModel)}

	merged := m.Merge(pattern, mdl)

	if len(merged) != 1 {
		t.Fatalf("expected 1 merged candidate, got %d (%v)", len(merged), merged)
	}
	if merged[0].Text != "penicillin allergy" {
		t.Errorf("expected pattern text to win, got %q", merged[0].Text)
	}
	if merged[0].Source != model.SourceBoth {
		t.Errorf("expected both sources recorded, got %q", merged[0].Source)
	}
}

func TestMerger_DifferentKindsNeverMerge(t *testing.T) {
	m := NewMerger(0.5)

	pattern := []model.FactCandidate{candAt(model.KindSymptom, "chest pain", model.SourcePattern)}
	mdl := []model.FactCandidate{candAt(model.KindEmergencySymptom, "chest pain", model.SourceModel)}

	merged := m.Merge(pattern, mdl)

	if len(merged) != 2 {
		t.Fatalf("expected 2 candidates (different kinds), got %d", len(merged))
	}
	for _, c := range merged {
		if c.Source == model.SourceBoth {
			t.Errorf("expected no merged source across kinds, got %v", c)
		}
	}
}

func TestMerger_DissimilarTextsKeptSeparate(t *testing.T) {
	m := NewMerger(0.5)

	pattern := []model.FactCandidate{candAt(model.KindAllergy, "penicillin allergy", model.SourcePattern)}
	mdl := []model.FactCandidate{candAt(model.KindAllergy, "latex allergy", model.SourceModel)}

	merged := m.Merge(pattern, mdl)

	if len(merged) != 2 {
		t.Fatalf("expected 2 distinct allergy candidates, got %d (%v)", len(merged), merged)
	}
}

func TestMerger_ModelOnlyCandidatePassesThrough(t *testing.T) {
	m := NewMerger(0.5)

	mdl := []model.FactCandidate{candAt(model.KindNote, "recently moved cities", model.SourceModel)}

	merged := m.Merge(nil, mdl)

	if len(merged) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(merged))
	}
	if merged[0].Source != model.SourceModel {
		t.Errorf("expected model source preserved, got %q", merged[0].Source)
	}
}

func TestMerger_Idempotent(t *testing.T) {
	m := NewMerger(0.5)

	pattern := []model.FactCandidate{
		candAt(model.KindAllergy, "penicillin allergy", model.SourcePattern),
		candAt(model.KindCondition, "diabetes", model.SourcePattern),
	}
	mdl := []model.FactCandidate{
		candAt(model.KindAllergy, "allergy to penicillin", model.SourceModel),
		candAt(model.KindSymptom, "headache", model.SourceModel),
	}

	once := m.Merge(pattern, mdl)
	again := m.Merge(once, nil)

	if !reflect.DeepEqual(once, again) {
		t.Errorf("merge not idempotent:\nonce:  %v\nagain: %v", once, again)
	}
}

func TestMerger_BothSourcedAbsorbsFurtherDuplicates(t *testing.T) {
	m := NewMerger(0.5)

	pattern := []model.FactCandidate{candAt(model.KindAllergy, "penicillin allergy", model.SourcePattern)}
	mdl := []model.FactCandidate{
		candAt(model.KindAllergy, "allergy to penicillin", model.SourceModel),
		candAt(model.KindAllergy, "penicillin allergy", model.SourceModel),
	}

	merged := m.Merge(pattern, mdl)

	if len(merged) != 1 {
		t.Fatalf("expected 1 candidate, got %d (%v)", len(merged), merged)
	}
	if merged[0].Source != model.SourceBoth {
		t.Errorf("expected both sources, got %q", merged[0].Source)
	}
}

func TestNewMerger_InvalidThresholdDefaults(t *testing.T) {
	for _, threshold := range []float64{0, -1, 1.5} {
		m := NewMerger(threshold)
		if m.similarityThreshold != 0.5 {
			t.Errorf("expected default threshold 0.5 for input %f, got %f", threshold, m.similarityThreshold)
		}
	}
}
