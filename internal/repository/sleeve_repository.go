package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// SleeveRepository provides data access methods for the sleeve and
// sleeve_security tables.
type SleeveRepository struct {
	db *sql.DB
}

// NewSleeveRepository creates a new SleeveRepository with the provided database connection.
func NewSleeveRepository(db *sql.DB) *SleeveRepository {
	return &SleeveRepository{db: db}
}

// GetSleevesByPortfolio retrieves all sleeves of a portfolio together with
// their security assignments. Sleeves are ordered by name, securities by
// rank ascending so that the preferred security comes first.
func (r *SleeveRepository) GetSleevesByPortfolio(portfolioID string) ([]model.SleeveWithSecurities, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, name, target_pct, is_cash
		FROM sleeve
		WHERE portfolio_id = ?
		ORDER BY name ASC
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sleeve table: %w", err)
	}
	defer rows.Close()

	sleeves := []model.SleeveWithSecurities{}
	index := make(map[string]int)
	for rows.Next() {
		var s model.SleeveWithSecurities
		if err := rows.Scan(&s.ID, &s.PortfolioID, &s.Name, &s.TargetPct, &s.IsCash); err != nil {
			return nil, fmt.Errorf("failed to scan sleeve table results: %w", err)
		}
		s.Securities = []model.SleeveSecurity{}
		index[s.ID] = len(sleeves)
		sleeves = append(sleeves, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sleeve table: %w", err)
	}
	if len(sleeves) == 0 {
		return sleeves, nil
	}

	secRows, err := r.db.Query(`
		SELECT ss.id, ss.sleeve_id, ss.security_id, ss.rank, ss.target_pct, ss.is_legacy
		FROM sleeve_security ss
		JOIN sleeve s ON s.id = ss.sleeve_id
		WHERE s.portfolio_id = ?
		ORDER BY ss.rank ASC, ss.security_id ASC
	`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sleeve_security table: %w", err)
	}
	defer secRows.Close()

	for secRows.Next() {
		var sec model.SleeveSecurity
		if err := secRows.Scan(&sec.ID, &sec.SleeveID, &sec.SecurityID, &sec.Rank, &sec.TargetPct, &sec.IsLegacy); err != nil {
			return nil, fmt.Errorf("failed to scan sleeve_security table results: %w", err)
		}
		if i, ok := index[sec.SleeveID]; ok {
			sleeves[i].Securities = append(sleeves[i].Securities, sec)
		}
	}
	if err = secRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sleeve_security table: %w", err)
	}

	return sleeves, nil
}

// GetSleeve retrieves a single sleeve by ID.
// Returns apperrors.ErrSleeveNotFound when no row exists.
func (r *SleeveRepository) GetSleeve(id string) (model.Sleeve, error) {
	var s model.Sleeve
	err := r.db.QueryRow(`
		SELECT id, portfolio_id, name, target_pct, is_cash
		FROM sleeve
		WHERE id = ?
	`, id).Scan(&s.ID, &s.PortfolioID, &s.Name, &s.TargetPct, &s.IsCash)
	if err == sql.ErrNoRows {
		return model.Sleeve{}, apperrors.ErrSleeveNotFound
	}
	if err != nil {
		return model.Sleeve{}, fmt.Errorf("failed to query sleeve table: %w", err)
	}
	return s, nil
}

// CreateSleeve inserts a new sleeve.
func (r *SleeveRepository) CreateSleeve(s model.Sleeve) error {
	_, err := r.db.Exec(`
		INSERT INTO sleeve (id, portfolio_id, name, target_pct, is_cash)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.PortfolioID, s.Name, s.TargetPct, s.IsCash)
	if err != nil {
		return fmt.Errorf("failed to insert sleeve: %w", err)
	}
	return nil
}

// UpsertSleeveSecurity inserts or updates a sleeve's security assignment,
// keyed on (sleeve_id, security_id).
func (r *SleeveRepository) UpsertSleeveSecurity(sec model.SleeveSecurity) error {
	_, err := r.db.Exec(`
		INSERT INTO sleeve_security (id, sleeve_id, security_id, rank, target_pct, is_legacy)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sleeve_id, security_id) DO UPDATE SET
			rank = excluded.rank,
			target_pct = excluded.target_pct,
			is_legacy = excluded.is_legacy
	`, sec.ID, sec.SleeveID, sec.SecurityID, sec.Rank, sec.TargetPct, sec.IsLegacy)
	if err != nil {
		return fmt.Errorf("failed to upsert sleeve_security: %w", err)
	}
	return nil
}
