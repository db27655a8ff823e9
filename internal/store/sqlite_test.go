package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/clinicore/intake/internal/model"
)

func openTestStore(t *testing.T, name model.StoreName) *SQLiteStore {
	t.Helper()
	s, err := Open(name, filepath.Join(t.TempDir(), string(name)+".db"))
	if err != nil {
		t.Fatalf("expected store to open, got %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(patientID string, kind model.Kind, text string) model.Record {
	return model.Record{
		PatientID:  patientID,
		Kind:       kind,
		Text:       text,
		Source:     model.SourcePattern,
		Confidence: 0.85,
		Priority:   model.PriorityHigh,
	}
}

func TestOpen_UnknownStoreName(t *testing.T) {
	if _, err := Open(model.StoreName("archive"), filepath.Join(t.TempDir(), "x.db")); err == nil {
		t.Error("expected error for unknown store name, got nil")
	}
}

func TestSQLiteStore_InsertAndFind(t *testing.T) {
	s := openTestStore(t, model.StoreSemantic)
	ctx := context.Background()

	rec := testRecord("P-1", model.KindAllergy, "penicillin allergy")
	if err := s.Insert(ctx, &rec); err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected assigned record id")
	}
	if rec.Store != model.StoreSemantic {
		t.Errorf("expected store name set on record, got %q", rec.Store)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindAllergy)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 record, got %d", len(found))
	}
	if found[0].Text != "penicillin allergy" {
		t.Errorf("expected text round-trip, got %q", found[0].Text)
	}
	if found[0].Confidence != 0.85 {
		t.Errorf("expected confidence round-trip, got %f", found[0].Confidence)
	}
}

func TestSQLiteStore_FindReturnsCreationOrder(t *testing.T) {
	s := openTestStore(t, model.StoreSemantic)
	ctx := context.Background()

	texts := []string{"penicillin allergy", "latex allergy", "shellfish allergy"}
	for _, text := range texts {
		rec := testRecord("P-1", model.KindAllergy, text)
		if err := s.Insert(ctx, &rec); err != nil {
			t.Fatalf("expected insert to succeed, got %v", err)
		}
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindAllergy)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != len(texts) {
		t.Fatalf("expected %d records, got %d", len(texts), len(found))
	}
	for i, text := range texts {
		if found[i].Text != text {
			t.Errorf("position %d: expected %q, got %q", i, text, found[i].Text)
		}
		if i > 0 && found[i].ID <= found[i-1].ID {
			t.Errorf("expected ascending ids, got %d after %d", found[i].ID, found[i-1].ID)
		}
	}
}

func TestSQLiteStore_FindScopedToPatientAndKind(t *testing.T) {
	s := openTestStore(t, model.StoreSemantic)
	ctx := context.Background()

	for _, rec := range []model.Record{
		testRecord("P-1", model.KindAllergy, "penicillin allergy"),
		testRecord("P-1", model.KindCondition, "diabetes"),
		testRecord("P-2", model.KindAllergy, "latex allergy"),
	} {
		r := rec
		if err := s.Insert(ctx, &r); err != nil {
			t.Fatalf("expected insert to succeed, got %v", err)
		}
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindAllergy)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != 1 || found[0].Text != "penicillin allergy" {
		t.Errorf("expected only P-1's allergy, got %v", found)
	}
}

func TestSQLiteStore_AppendOnly(t *testing.T) {
	s := openTestStore(t, model.StoreSemantic)
	ctx := context.Background()

	first := testRecord("P-1", model.KindAllergy, "penicillin allergy")
	if err := s.Insert(ctx, &first); err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	// Same fact again: a second row, never an update of the first.
	second := testRecord("P-1", model.KindAllergy, "penicillin allergy")
	if err := s.Insert(ctx, &second); err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindAllergy)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 append-only rows, got %d", len(found))
	}
}

func TestSQLiteStore_EpisodicEventDate(t *testing.T) {
	s := openTestStore(t, model.StoreEpisodic)
	ctx := context.Background()

	event := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	rec := testRecord("P-1", model.KindSymptom, "headache")
	rec.EventDate = &event
	if err := s.Insert(ctx, &rec); err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindSymptom)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 record, got %d", len(found))
	}
	if found[0].EventDate == nil {
		t.Fatal("expected event date to round-trip")
	}
	if !found[0].EventDate.Equal(event) {
		t.Errorf("expected event date %v, got %v", event, found[0].EventDate)
	}
}

func TestSQLiteStore_BehavioralPatternStrength(t *testing.T) {
	s := openTestStore(t, model.StoreBehavioral)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		rec := testRecord("P-1", model.KindBehavioralPattern, "misses appointments")
		if err := s.Insert(ctx, &rec); err != nil {
			t.Fatalf("insert %d: expected success, got %v", i, err)
		}
		if rec.PatternStrength != i {
			t.Errorf("insert %d: expected pattern strength %d, got %d", i, i, rec.PatternStrength)
		}
	}

	// A different normalized fact starts its own count
	other := testRecord("P-1", model.KindBehavioralPattern, "smokes regularly")
	if err := s.Insert(ctx, &other); err != nil {
		t.Fatalf("expected insert to succeed, got %v", err)
	}
	if other.PatternStrength != 1 {
		t.Errorf("expected fresh pattern strength 1, got %d", other.PatternStrength)
	}

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindBehavioralPattern)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != 4 {
		t.Errorf("expected 4 append-only rows, got %d", len(found))
	}
}

func TestSQLiteStore_ConcurrentSameKeyInserts(t *testing.T) {
	s := openTestStore(t, model.StoreBehavioral)
	ctx := context.Background()

	const writers = 10
	strengths := make([]int, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := testRecord("P-1", model.KindBehavioralPattern, "Misses Appointments")
			if err := s.Insert(ctx, &rec); err != nil {
				t.Errorf("concurrent insert: expected success, got %v", err)
				return
			}
			strengths[i] = rec.PatternStrength
		}(i)
	}
	wg.Wait()

	found, err := s.FindByPatientAndKind(ctx, "P-1", model.KindBehavioralPattern)
	if err != nil {
		t.Fatalf("expected find to succeed, got %v", err)
	}
	if len(found) != writers {
		t.Fatalf("expected %d rows, got %d", writers, len(found))
	}

	// Serialized count-then-insert must hand out each strength exactly once
	seen := make(map[int]bool)
	for _, strength := range strengths {
		if strength < 1 || strength > writers {
			t.Errorf("pattern strength %d out of range", strength)
		}
		if seen[strength] {
			t.Errorf("pattern strength %d handed out twice", strength)
		}
		seen[strength] = true
	}
}

func TestOpenAllAndCloseAll(t *testing.T) {
	dir := t.TempDir()
	stores, err := OpenAll(model.StoresConfig{
		EpisodicPath:   filepath.Join(dir, "episodic.db"),
		SemanticPath:   filepath.Join(dir, "semantic.db"),
		BehavioralPath: filepath.Join(dir, "behavioral.db"),
		Default:        model.StoreSemantic,
	})
	if err != nil {
		t.Fatalf("expected stores to open, got %v", err)
	}

	for _, name := range model.StoreNames() {
		st, ok := stores[name]
		if !ok {
			t.Errorf("expected %s store to be opened", name)
			continue
		}
		if st.Name() != name {
			t.Errorf("expected store name %s, got %s", name, st.Name())
		}
	}

	if err := CloseAll(stores); err != nil {
		t.Errorf("expected clean close, got %v", err)
	}
}
