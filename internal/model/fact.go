package model

import "time"

// Kind categorizes the semantic nature of an extracted fact
type Kind string

const (
	KindAllergy            Kind = "allergy"             // Allergies and adverse reactions
	KindEmergencySymptom   Kind = "emergency_symptom"   // Symptoms requiring urgent attention
	KindCriticalMedication Kind = "critical_medication" // High-risk medications (insulin, anticoagulants)
	KindCondition          Kind = "condition"           // Chronic diseases and diagnoses
	KindMedication         Kind = "medication"          // Regular medications and treatments
	KindFamilyHistory      Kind = "family_history"      // Conditions in the patient's family
	KindSymptom            Kind = "symptom"             // Current complaints
	KindBehavioralPattern  Kind = "behavioral_pattern"  // Habits and recurring behaviors
	KindPreference         Kind = "preference"          // Appointment/communication preferences
	KindNote               Kind = "note"                // Catch-all observations
)

// Kinds returns the closed enumeration of fact kinds
func Kinds() []Kind {
	return []Kind{
		KindAllergy, KindEmergencySymptom, KindCriticalMedication,
		KindCondition, KindMedication, KindFamilyHistory,
		KindSymptom, KindBehavioralPattern, KindPreference, KindNote,
	}
}

// Valid reports whether k belongs to the closed enumeration
func (k Kind) Valid() bool {
	switch k {
	case KindAllergy, KindEmergencySymptom, KindCriticalMedication,
		KindCondition, KindMedication, KindFamilyHistory,
		KindSymptom, KindBehavioralPattern, KindPreference, KindNote:
		return true
	}
	return false
}

// Source records the provenance of an extraction
type Source string

const (
	SourcePattern Source = "pattern" // Deterministic lexicon/regex match
	SourceModel   Source = "model"   // LLM extraction
	SourceBoth    Source = "both"    // Pattern and model agreed (merged)
)

// Priority is the urgency tier assigned by the classifier
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// FactCandidate is a proposed, not-yet-persisted extracted fact.
// Priority and Confidence are zero until the classifier runs; the
// reconciler always re-adjusts Confidence before persistence.
type FactCandidate struct {
	PatientID  string    `json:"patient_id"`
	Kind       Kind      `json:"kind"`
	Text       string    `json:"text"`
	Source     Source    `json:"source"`
	RawSpan    string    `json:"raw_span,omitempty"`
	Priority   Priority  `json:"priority,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
