package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// ReplacementRepository provides data access methods for the
// security_replacement table.
type ReplacementRepository struct {
	db *sql.DB
}

// NewReplacementRepository creates a new ReplacementRepository with the provided database connection.
func NewReplacementRepository(db *sql.DB) *ReplacementRepository {
	return &ReplacementRepository{db: db}
}

// GetReplacements retrieves the full replacement-candidate mapping.
func (r *ReplacementRepository) GetReplacements() ([]model.SecurityReplacement, error) {
	rows, err := r.db.Query(`
		SELECT id, original_ticker, replacement_ticker
		FROM security_replacement
		ORDER BY original_ticker ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query security_replacement table: %w", err)
	}
	defer rows.Close()

	replacements := []model.SecurityReplacement{}
	for rows.Next() {
		var replacement model.SecurityReplacement
		if err := rows.Scan(&replacement.ID, &replacement.OriginalTicker, &replacement.ReplacementTicker); err != nil {
			return nil, fmt.Errorf("failed to scan security_replacement results: %w", err)
		}
		replacements = append(replacements, replacement)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security_replacement table: %w", err)
	}

	return replacements, nil
}

// UpsertReplacement inserts or updates the replacement for a ticker.
func (r *ReplacementRepository) UpsertReplacement(replacement model.SecurityReplacement) error {
	_, err := r.db.Exec(`
		INSERT INTO security_replacement (id, original_ticker, replacement_ticker)
		VALUES (?, ?, ?)
		ON CONFLICT(original_ticker) DO UPDATE SET
			replacement_ticker = excluded.replacement_ticker
	`, replacement.ID, replacement.OriginalTicker, replacement.ReplacementTicker)
	if err != nil {
		return fmt.Errorf("failed to upsert security_replacement: %w", err)
	}
	return nil
}
