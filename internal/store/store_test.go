package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/estateluxe/estateluxe/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := New(db)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := s.MigrationVersion()
	if err != nil {
		t.Fatal(err)
	}
	if v != len(migrations) {
		t.Errorf("migration version = %d, want %d", v, len(migrations))
	}
}

func TestSavePropertyDeduplicates(t *testing.T) {
	s := newTestStore(t)
	p := models.SavedProperty{
		Address: "Bandra West, Mumbai",
		Price:   "₹24,007,000",
		Details: "4 bed, 3 bath, 2500 sqft",
	}

	inserted, err := s.SaveProperty(p)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Fatal("first save should insert")
	}

	inserted, err = s.SaveProperty(p)
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Error("same address and price should not insert twice")
	}

	got, err := s.GetSavedProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("saved count = %d, want 1", len(got))
	}
	if got[0].ID != "Bandra West, Mumbai-₹24,007,000" {
		t.Errorf("id = %q", got[0].ID)
	}
}

func TestSavePropertyNewPriceIsNewEntry(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveProperty(models.SavedProperty{Address: "10 Main St", Price: "$485,000"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveProperty(models.SavedProperty{Address: "10 Main St", Price: "$490,000"}); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSavedProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("saved count = %d, want 2 (price is part of the key)", len(got))
	}
}

func TestSavedPropertiesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, addr := range []string{"1 First St", "2 Second St", "3 Third St"} {
		_, err := s.SaveProperty(models.SavedProperty{
			Address:   addr,
			Price:     "$100,000",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.GetSavedProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Address != "3 Third St" {
		t.Errorf("expected newest first, got %+v", got)
	}
}

func TestDeleteSavedProperty(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.SaveProperty(models.SavedProperty{Address: "10 Main St", Price: "$485,000"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSavedProperty(PropertyID("10 Main St", "$485,000")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSavedProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("saved count = %d after delete, want 0", len(got))
	}
}

func TestCountryPreference(t *testing.T) {
	s := newTestStore(t)

	c, err := s.GetCountry()
	if err != nil {
		t.Fatal(err)
	}
	if c != models.CountryUS {
		t.Errorf("default country = %s, want US", c)
	}

	if err := s.SetCountry(models.CountryIN); err != nil {
		t.Fatal(err)
	}
	c, err = s.GetCountry()
	if err != nil {
		t.Fatal(err)
	}
	if c != models.CountryIN {
		t.Errorf("country = %s, want IN", c)
	}

	// Overwrite, not accumulate.
	if err := s.SetCountry(models.CountryAE); err != nil {
		t.Fatal(err)
	}
	c, _ = s.GetCountry()
	if c != models.CountryAE {
		t.Errorf("country = %s, want AE", c)
	}

	if err := s.SetCountry("XX"); err == nil {
		t.Error("unknown country should be rejected")
	}
}

func TestValuationAuditLog(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertValuation(models.ValuationRecord{
		Address:      "Bandra West, Mumbai",
		Country:      models.CountryIN,
		CurrentValue: 24007000,
		Low:          21126160,
		High:         26887840,
		Confidence:   90,
		Source:       "heuristic",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	records, err := s.GetRecentValuations(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("record count = %d, want 1", len(records))
	}
	r := records[0]
	if r.ID != id || r.Country != models.CountryIN || r.Source != "heuristic" {
		t.Errorf("record mismatch: %+v", r)
	}
	if r.CurrentValue != 24007000 || r.Confidence != 90 {
		t.Errorf("values mismatch: %+v", r)
	}
}

func TestRecentValuationsLimit(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := s.InsertValuation(models.ValuationRecord{
			Country:      models.CountryUS,
			CurrentValue: float64(100000 + i),
			Low:          90000,
			High:         110000,
			Confidence:   90,
			Source:       "heuristic",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	records, err := s.GetRecentValuations(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3", len(records))
	}
	if records[0].CurrentValue != 100004 {
		t.Errorf("expected newest first, got %+v", records[0])
	}
}
