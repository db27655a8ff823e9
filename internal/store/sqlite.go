package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clinicore/intake/internal/model"
)

// baseSchema holds the columns every store shares. Episodic adds
// event_date, behavioral adds pattern_strength; each store owns its schema.
const baseSchema = `
CREATE TABLE IF NOT EXISTS records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	text TEXT NOT NULL,
	text_norm TEXT NOT NULL,
	source TEXT NOT NULL,
	confidence REAL NOT NULL,
	priority TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL%s
);
CREATE INDEX IF NOT EXISTS idx_records_patient_kind ON records(patient_id, kind);
`

// SQLiteStore is a Store backed by a single SQLite database file
type SQLiteStore struct {
	name  model.StoreName
	db    *sql.DB
	locks keyedMutex
}

// Open opens (creating if needed) the database for one memory store
func Open(name model.StoreName, path string) (*SQLiteStore, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("unknown store name: %s", name)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY churn under concurrent sessions.
	db.SetMaxOpenConns(1)

	extra := ""
	switch name {
	case model.StoreEpisodic:
		extra = ",\n\tevent_date TIMESTAMP"
	case model.StoreBehavioral:
		extra = ",\n\tpattern_strength INTEGER NOT NULL DEFAULT 1"
	}
	if _, err := db.Exec(fmt.Sprintf(baseSchema, extra)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema for %s: %w", name, err)
	}

	return &SQLiteStore{name: name, db: db}, nil
}

// Name returns the store identifier
func (s *SQLiteStore) Name() model.StoreName {
	return s.name
}

// Insert appends a record, serialized per (patient, kind, normalized text)
// key. Records are never updated or deleted through this interface.
func (s *SQLiteStore) Insert(ctx context.Context, rec *model.Record) error {
	norm := normalizeKey(rec.Text)
	unlock := s.locks.lock(rec.PatientID + "|" + string(rec.Kind) + "|" + norm)
	defer unlock()

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.Store = s.name

	var result sql.Result
	var err error
	switch s.name {
	case model.StoreEpisodic:
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO records (patient_id, kind, text, text_norm, source, confidence, priority, created_at, event_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PatientID, rec.Kind, rec.Text, norm, rec.Source,
			rec.Confidence, rec.Priority, rec.CreatedAt, rec.EventDate)
	case model.StoreBehavioral:
		// pattern_strength counts observations of the same normalized
		// fact, this row included; rows stay append-only
		var prior int
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM records WHERE patient_id = ? AND kind = ? AND text_norm = ?`,
			rec.PatientID, rec.Kind, norm).Scan(&prior)
		if err != nil {
			return fmt.Errorf("counting prior observations: %w", err)
		}
		rec.PatternStrength = prior + 1
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO records (patient_id, kind, text, text_norm, source, confidence, priority, created_at, pattern_strength)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PatientID, rec.Kind, rec.Text, norm, rec.Source,
			rec.Confidence, rec.Priority, rec.CreatedAt, rec.PatternStrength)
	default:
		result, err = s.db.ExecContext(ctx,
			`INSERT INTO records (patient_id, kind, text, text_norm, source, confidence, priority, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.PatientID, rec.Kind, rec.Text, norm, rec.Source,
			rec.Confidence, rec.Priority, rec.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// FindByPatientAndKind returns the patient's records of one kind, oldest
// first (creation order).
func (s *SQLiteStore) FindByPatientAndKind(ctx context.Context, patientID string, kind model.Kind) ([]model.Record, error) {
	cols := `id, patient_id, kind, text, source, confidence, priority, created_at`
	switch s.name {
	case model.StoreEpisodic:
		cols += `, event_date`
	case model.StoreBehavioral:
		cols += `, pattern_strength`
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+cols+` FROM records WHERE patient_id = ? AND kind = ? ORDER BY id ASC`,
		patientID, kind)
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", s.name, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		dest := []interface{}{
			&rec.ID, &rec.PatientID, &rec.Kind, &rec.Text, &rec.Source,
			&rec.Confidence, &rec.Priority, &rec.CreatedAt,
		}
		switch s.name {
		case model.StoreEpisodic:
			dest = append(dest, &rec.EventDate)
		case model.StoreBehavioral:
			dest = append(dest, &rec.PatternStrength)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Store = s.name
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// normalizeKey lowercases and collapses whitespace for write serialization
// and behavioral strength counting
func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// keyedMutex serializes critical sections per string key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
