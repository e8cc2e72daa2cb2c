package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/estateluxe/estateluxe/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveProperty inserts a property into the saved comparables list. The id is
// derived from address and formatted price, so saving the same valuation
// twice is a no-op rather than a duplicate row.
func (s *Store) SaveProperty(p models.SavedProperty) (bool, error) {
	if p.ID == "" {
		p.ID = PropertyID(p.Address, p.Price)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO saved_properties (id, address, price, details, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.ID, p.Address, p.Price, p.Details, p.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetSavedProperties() ([]models.SavedProperty, error) {
	rows, err := s.db.Query(`
		SELECT id, address, price, details, created_at
		FROM saved_properties
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.SavedProperty
	for rows.Next() {
		var p models.SavedProperty
		if err := rows.Scan(&p.ID, &p.Address, &p.Price, &p.Details, &p.CreatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (s *Store) DeleteSavedProperty(id string) error {
	_, err := s.db.Exec(`DELETE FROM saved_properties WHERE id = ?`, id)
	return err
}

// PropertyID builds the stable saved-property key. Formatted price is part of
// the key so the same address at a different valuation saves as a new entry.
func PropertyID(address, price string) string {
	return strings.TrimSpace(address) + "-" + price
}

// GetCountry returns the persisted country preference, or US when none has
// been set yet.
func (s *Store) GetCountry() (models.CountryCode, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = 'country'`).Scan(&v)
	if err == sql.ErrNoRows {
		return models.CountryUS, nil
	}
	if err != nil {
		return "", err
	}
	c := models.CountryCode(v)
	if !c.Valid() {
		return models.CountryUS, nil
	}
	return c, nil
}

func (s *Store) SetCountry(c models.CountryCode) error {
	if !c.Valid() {
		return fmt.Errorf("unknown country %q", c)
	}
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value)
		VALUES ('country', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, string(c))
	return err
}

// InsertValuation appends a row to the valuation audit log and returns the
// generated id.
func (s *Store) InsertValuation(r models.ValuationRecord) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO valuations (id, address, country, current_value, low, high, confidence, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Address, string(r.Country), r.CurrentValue, r.Low, r.High, r.Confidence, r.Source, r.CreatedAt)
	if err != nil {
		return "", err
	}
	return r.ID, nil
}

func (s *Store) GetRecentValuations(limit int) ([]models.ValuationRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, address, country, current_value, low, high, confidence, source, created_at
		FROM valuations
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ValuationRecord
	for rows.Next() {
		var r models.ValuationRecord
		var country string
		if err := rows.Scan(&r.ID, &r.Address, &country, &r.CurrentValue, &r.Low, &r.High, &r.Confidence, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Country = models.CountryCode(country)
		records = append(records, r)
	}
	return records, rows.Err()
}
