package classify

import (
	"testing"

	"github.com/clinicore/intake/internal/model"
)

func TestClassifier_PriorityByKind(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		kind model.Kind
		want model.Priority
	}{
		{model.KindAllergy, model.PriorityCritical},
		{model.KindEmergencySymptom, model.PriorityCritical},
		{model.KindCriticalMedication, model.PriorityCritical},
		{model.KindCondition, model.PriorityHigh},
		{model.KindMedication, model.PriorityHigh},
		{model.KindFamilyHistory, model.PriorityHigh},
		{model.KindSymptom, model.PriorityMedium},
		{model.KindBehavioralPattern, model.PriorityMedium},
		{model.KindPreference, model.PriorityLow},
		{model.KindNote, model.PriorityLow},
	}

	for _, tc := range cases {
		got := c.Classify(model.FactCandidate{Kind: tc.kind, Source: model.SourcePattern})
		if got.Priority != tc.want {
			t.Errorf("kind %s: expected priority %s, got %s", tc.kind, tc.want, got.Priority)
		}
	}
}

func TestClassifier_ConfidenceBaselines(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		source model.Source
		want   float64
	}{
		{model.SourcePattern, BaselinePattern},
		{model.SourceModel, BaselineModel},
		{model.SourceBoth, BaselineMerged},
	}

	for _, tc := range cases {
		got := c.Classify(model.FactCandidate{Kind: model.KindCondition, Source: tc.source})
		if got.Confidence != tc.want {
			t.Errorf("source %s: expected confidence %f, got %f", tc.source, tc.want, got.Confidence)
		}
	}
}

func TestClassifier_SeverityEscalatesMediumToHigh(t *testing.T) {
	c := NewClassifier()

	got := c.Classify(model.FactCandidate{
		Kind:    model.KindSymptom,
		Text:    "severe headaches",
		RawSpan: "severe headaches",
		Source:  model.SourcePattern,
	})
	if got.Priority != model.PriorityHigh {
		t.Errorf("expected severity escalation to high, got %s", got.Priority)
	}

	plain := c.Classify(model.FactCandidate{
		Kind:    model.KindSymptom,
		Text:    "headache",
		RawSpan: "a mild headache",
		Source:  model.SourcePattern,
	})
	if plain.Priority != model.PriorityMedium {
		t.Errorf("expected medium priority without severity keyword, got %s", plain.Priority)
	}
}

func TestClassifier_SeverityNeverDemotesCritical(t *testing.T) {
	c := NewClassifier()

	got := c.Classify(model.FactCandidate{
		Kind:    model.KindAllergy,
		Text:    "penicillin allergy",
		RawSpan: "mild reaction to penicillin",
		Source:  model.SourcePattern,
	})
	if got.Priority != model.PriorityCritical {
		t.Errorf("expected critical priority regardless of span wording, got %s", got.Priority)
	}
}

func TestClassifier_SeverityDoesNotEscalateLow(t *testing.T) {
	c := NewClassifier()

	got := c.Classify(model.FactCandidate{
		Kind:    model.KindPreference,
		Text:    "prefers morning appointments",
		RawSpan: "I have severe scheduling problems",
		Source:  model.SourcePattern,
	})
	if got.Priority != model.PriorityLow {
		t.Errorf("expected low priority, got %s", got.Priority)
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.05, 1},
	}
	for _, tc := range cases {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
