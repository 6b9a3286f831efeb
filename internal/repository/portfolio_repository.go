package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetPortfolios retrieves all portfolios, optionally including archived ones.
func (r *PortfolioRepository) GetPortfolios(includeArchived bool) ([]model.Portfolio, error) {
	query := `
		SELECT id, name, description, is_archived
		FROM portfolio
	`
	if !includeArchived {
		query += ` WHERE is_archived = FALSE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var p model.Portfolio
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.IsArchived); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		p.Description = description.String
		portfolios = append(portfolios, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetPortfolio retrieves a single portfolio by ID.
// Returns apperrors.ErrPortfolioNotFound when no row exists.
func (r *PortfolioRepository) GetPortfolio(id string) (model.Portfolio, error) {
	var p model.Portfolio
	var description sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, description, is_archived
		FROM portfolio
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &description, &p.IsArchived)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	p.Description = description.String
	return p, nil
}

// CreatePortfolio inserts a new portfolio.
func (r *PortfolioRepository) CreatePortfolio(p model.Portfolio) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio (id, name, description, is_archived)
		VALUES (?, ?, ?, ?)
	`, p.ID, p.Name, p.Description, p.IsArchived)
	if err != nil {
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}
	return nil
}
