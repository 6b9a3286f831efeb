package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetPositionsByPortfolio retrieves all positions of a portfolio, grouped
// by security ID. The grouping lets callers join positions to sleeve
// securities without re-scanning.
func (r *PositionRepository) GetPositionsByPortfolio(portfolioID string) (map[string][]model.Position, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, account_id, security_id, qty, price, is_taxable, unrealized_gain
		FROM position
		WHERE portfolio_id = ?
		ORDER BY security_id ASC, account_id ASC
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := make(map[string][]model.Position)
	for rows.Next() {
		var p model.Position
		var gain sql.NullFloat64
		err := rows.Scan(
			&p.ID,
			&p.PortfolioID,
			&p.AccountID,
			&p.SecurityID,
			&p.Qty,
			&p.Price,
			&p.IsTaxable,
			&gain,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		if gain.Valid {
			value := gain.Float64
			p.UnrealizedGain = &value
		}
		positions[p.SecurityID] = append(positions[p.SecurityID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetPrices returns the latest known price per security across all
// portfolios, used for quoting replacement candidates not currently held.
func (r *PositionRepository) GetPrices() (map[string]float64, error) {
	rows, err := r.db.Query(`
		SELECT security_id, MAX(price)
		FROM position
		GROUP BY security_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query position prices: %w", err)
	}
	defer rows.Close()

	prices := make(map[string]float64)
	for rows.Next() {
		var securityID string
		var price float64
		if err := rows.Scan(&securityID, &price); err != nil {
			return nil, fmt.Errorf("failed to scan position price results: %w", err)
		}
		prices[securityID] = price
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position prices: %w", err)
	}

	return prices, nil
}

// UpsertPosition inserts or updates a position, keyed on
// (portfolio_id, account_id, security_id).
func (r *PositionRepository) UpsertPosition(p model.Position) error {
	var gain sql.NullFloat64
	if p.UnrealizedGain != nil {
		gain = sql.NullFloat64{Float64: *p.UnrealizedGain, Valid: true}
	}
	_, err := r.db.Exec(`
		INSERT INTO position (id, portfolio_id, account_id, security_id, qty, price, is_taxable, unrealized_gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, account_id, security_id) DO UPDATE SET
			qty = excluded.qty,
			price = excluded.price,
			is_taxable = excluded.is_taxable,
			unrealized_gain = excluded.unrealized_gain
	`, p.ID, p.PortfolioID, p.AccountID, p.SecurityID, p.Qty, p.Price, p.IsTaxable, gain)
	if err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}
	return nil
}
