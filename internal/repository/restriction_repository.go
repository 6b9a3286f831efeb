package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// RestrictionRepository provides data access methods for the
// wash_sale_restriction table.
type RestrictionRepository struct {
	db *sql.DB
}

// NewRestrictionRepository creates a new RestrictionRepository with the provided database connection.
func NewRestrictionRepository(db *sql.DB) *RestrictionRepository {
	return &RestrictionRepository{db: db}
}

// GetActive retrieves all restrictions whose window is still open at now.
func (r *RestrictionRepository) GetActive(now time.Time) ([]model.WashSaleRestriction, error) {
	return r.query(`
		SELECT id, ticker, blocked_until, created_at
		FROM wash_sale_restriction
		WHERE blocked_until > ?
		ORDER BY ticker ASC
	`, now.UTC().Format(time.RFC3339))
}

// GetAll retrieves every restriction record, expired ones included.
func (r *RestrictionRepository) GetAll() ([]model.WashSaleRestriction, error) {
	return r.query(`
		SELECT id, ticker, blocked_until, created_at
		FROM wash_sale_restriction
		ORDER BY ticker ASC
	`)
}

func (r *RestrictionRepository) query(query string, args ...any) ([]model.WashSaleRestriction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wash_sale_restriction table: %w", err)
	}
	defer rows.Close()

	restrictions := []model.WashSaleRestriction{}
	for rows.Next() {
		var restriction model.WashSaleRestriction
		var blockedUntilStr string
		var createdAtStr sql.NullString
		if err := rows.Scan(&restriction.ID, &restriction.Ticker, &blockedUntilStr, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan wash_sale_restriction results: %w", err)
		}
		restriction.BlockedUntil, err = ParseTime(blockedUntilStr)
		if err != nil {
			return nil, err
		}
		if createdAtStr.Valid {
			restriction.CreatedAt, _ = ParseTime(createdAtStr.String)
		}
		restrictions = append(restrictions, restriction)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wash_sale_restriction table: %w", err)
	}

	return restrictions, nil
}

// CreateRestriction inserts a new restriction record.
func (r *RestrictionRepository) CreateRestriction(restriction model.WashSaleRestriction) error {
	_, err := r.db.Exec(`
		INSERT INTO wash_sale_restriction (id, ticker, blocked_until)
		VALUES (?, ?, ?)
	`, restriction.ID, restriction.Ticker, restriction.BlockedUntil.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert wash_sale_restriction: %w", err)
	}
	return nil
}

// DeleteRestriction removes a restriction by ID.
// Returns apperrors.ErrRestrictionNotFound when no row matched.
func (r *RestrictionRepository) DeleteRestriction(id string) error {
	result, err := r.db.Exec(`DELETE FROM wash_sale_restriction WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wash_sale_restriction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrRestrictionNotFound
	}
	return nil
}

// DeleteExpired removes every restriction whose window closed at or before
// now and returns how many rows were swept.
func (r *RestrictionRepository) DeleteExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM wash_sale_restriction
		WHERE blocked_until <= ?
	`, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired restrictions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
