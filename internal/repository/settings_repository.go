package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
)

// SettingsRepository provides data access methods for the broker_settings
// table. The table holds at most one row.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetBrokerAPIKey returns the encrypted broker API key.
// Returns apperrors.ErrBrokerSettingsNotFound when none has been stored.
func (r *SettingsRepository) GetBrokerAPIKey() (string, time.Time, error) {
	var encrypted string
	var updatedAtStr string

	err := r.db.QueryRow(`
		SELECT api_key_encrypted, updated_at
		FROM broker_settings
		LIMIT 1
	`).Scan(&encrypted, &updatedAtStr)
	if err == sql.ErrNoRows {
		return "", time.Time{}, apperrors.ErrBrokerSettingsNotFound
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to query broker_settings table: %w", err)
	}

	updatedAt, err := ParseTime(updatedAtStr)
	if err != nil {
		return "", time.Time{}, err
	}
	return encrypted, updatedAt, nil
}

// SetBrokerAPIKey stores the encrypted broker API key, replacing any
// existing row.
func (r *SettingsRepository) SetBrokerAPIKey(id, encrypted string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(`DELETE FROM broker_settings`); err != nil {
		return fmt.Errorf("failed to clear broker_settings: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO broker_settings (id, api_key_encrypted, updated_at)
		VALUES (?, ?, ?)
	`, id, encrypted, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to insert broker_settings: %w", err)
	}

	return tx.Commit()
}
