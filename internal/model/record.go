package model

import "time"

// StoreName identifies one of the three memory stores
type StoreName string

const (
	StoreEpisodic   StoreName = "episodic"   // Time-bound occurrences (symptoms, visits)
	StoreSemantic   StoreName = "semantic"   // Durable medical facts
	StoreBehavioral StoreName = "behavioral" // Habits and preferences
)

// StoreNames returns all store identifiers
func StoreNames() []StoreName {
	return []StoreName{StoreEpisodic, StoreSemantic, StoreBehavioral}
}

// Valid reports whether n names a known store
func (n StoreName) Valid() bool {
	switch n {
	case StoreEpisodic, StoreSemantic, StoreBehavioral:
		return true
	}
	return false
}

// Record is a persisted fact as a store owns it. Records are append-only
// from the engine's perspective: corrections create a new record plus a
// contradiction flag, never an in-place overwrite.
type Record struct {
	ID         int64     `json:"id"`
	PatientID  string    `json:"patient_id"`
	Kind       Kind      `json:"kind"`
	Text       string    `json:"text"`
	Source     Source    `json:"source"`
	Confidence float64   `json:"confidence"`
	Priority   Priority  `json:"priority"`
	CreatedAt  time.Time `json:"created_at"`

	// Store identifies which memory store holds the record.
	Store StoreName `json:"store"`

	// EventDate is set for episodic records only: the conversation turn
	// time the occurrence was reported at.
	EventDate *time.Time `json:"event_date,omitempty"`

	// PatternStrength is set for behavioral records only: how many times
	// the same normalized fact has been observed, this record included.
	PatternStrength int `json:"pattern_strength,omitempty"`
}

// ContradictionFlag signals that a new candidate disagrees with a
// previously stored record for the same patient and kind. It is a normal
// surfaced result, not an error.
type ContradictionFlag struct {
	PatientID     string    `json:"patient_id"`
	Kind          Kind      `json:"kind"`
	PriorRecordID int64     `json:"prior_record_id"`
	PriorText     string    `json:"prior_text"`
	NewText       string    `json:"new_text"`
	DetectedAt    time.Time `json:"detected_at"`
}

// TurnResult is what one call to the engine returns to the dialogue layer.
type TurnResult struct {
	PatientID string              `json:"patient_id"`
	Persisted []Record            `json:"persisted"`
	Flags     []ContradictionFlag `json:"flags,omitempty"`

	// Warnings carries non-fatal degradations: model extractor failures,
	// store lookup failures, non-critical write failures.
	Warnings []string `json:"warnings,omitempty"`
}
