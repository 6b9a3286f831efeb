package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetRecentTransactions retrieves all transactions of a portfolio dated on
// or after since, sorted by date ascending. Recent sells feed the
// wash-sale restriction derivation.
func (r *TransactionRepository) GetRecentTransactions(portfolioID string, since time.Time) ([]model.Transaction, error) {
	rows, err := r.db.Query(`
		SELECT id, portfolio_id, ticker, date, type, shares, price_per_share, created_at
		FROM "transaction"
		WHERE portfolio_id = ?
		AND date >= ?
		ORDER BY date ASC
	`, portfolioID, since.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		var dateStr string
		var createdAtStr sql.NullString
		err := rows.Scan(
			&t.ID,
			&t.PortfolioID,
			&t.Ticker,
			&dateStr,
			&t.Type,
			&t.Shares,
			&t.PricePS,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		t.Date, err = ParseTime(dateStr)
		if err != nil || t.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if createdAtStr.Valid {
			t.CreatedAt, _ = ParseTime(createdAtStr.String)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// CreateTransaction inserts a new transaction record.
func (r *TransactionRepository) CreateTransaction(t model.Transaction) error {
	_, err := r.db.Exec(`
		INSERT INTO "transaction" (id, portfolio_id, ticker, date, type, shares, price_per_share)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.PortfolioID, t.Ticker, t.Date.Format("2006-01-02"), t.Type, t.Shares, t.PricePS)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}
