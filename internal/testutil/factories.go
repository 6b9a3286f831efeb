package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    Archived().
//	    Build(t, db)
type PortfolioBuilder struct {
	ID          string
	Name        string
	Description string
	IsArchived  bool
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:          MakeID(),
		Name:        MakePortfolioName("Test Portfolio"),
		Description: "Test description",
		IsArchived:  false,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// Archived marks the portfolio as archived.
func (b *PortfolioBuilder) Archived() *PortfolioBuilder {
	b.IsArchived = true
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, name, description, is_archived)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Name, b.Description, b.IsArchived)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsArchived:  b.IsArchived,
	}
}

// CreatePortfolio creates a portfolio with the given name and default values.
//
// Example usage:
//
//	portfolio := testutil.CreatePortfolio(t, db, "My Portfolio")
func CreatePortfolio(t *testing.T, db *sql.DB, name string) model.Portfolio {
	t.Helper()
	return NewPortfolio().WithName(name).Build(t, db)
}

// SleeveBuilder provides a fluent interface for creating test sleeves.
//
// Example usage:
//
//	sleeve := testutil.NewSleeve(portfolio.ID).
//	    WithName("US Equity").
//	    WithTargetPct(60).
//	    Build(t, db)
type SleeveBuilder struct {
	ID          string
	PortfolioID string
	Name        string
	TargetPct   float64
	IsCash      bool
}

// NewSleeve creates a SleeveBuilder with sensible defaults.
func NewSleeve(portfolioID string) *SleeveBuilder {
	return &SleeveBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Name:        "Sleeve " + randomAlphanumeric(6),
		TargetPct:   0,
		IsCash:      false,
	}
}

// WithID sets a custom ID.
func (b *SleeveBuilder) WithID(id string) *SleeveBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *SleeveBuilder) WithName(name string) *SleeveBuilder {
	b.Name = name
	return b
}

// WithTargetPct sets the sleeve's target percentage of portfolio value.
func (b *SleeveBuilder) WithTargetPct(pct float64) *SleeveBuilder {
	b.TargetPct = pct
	return b
}

// Cash marks the sleeve as the portfolio's cash sleeve.
func (b *SleeveBuilder) Cash() *SleeveBuilder {
	b.IsCash = true
	return b
}

// Build creates the sleeve in the database and returns it.
func (b *SleeveBuilder) Build(t *testing.T, db *sql.DB) model.Sleeve {
	t.Helper()

	query := `
		INSERT INTO sleeve (id, portfolio_id, name, target_pct, is_cash)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.Name, b.TargetPct, b.IsCash)
	if err != nil {
		t.Fatalf("Failed to create test sleeve: %v", err)
	}

	return model.Sleeve{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Name:        b.Name,
		TargetPct:   b.TargetPct,
		IsCash:      b.IsCash,
	}
}

// CreateSleeve creates a sleeve with the given name and target percentage.
func CreateSleeve(t *testing.T, db *sql.DB, portfolioID, name string, targetPct float64) model.Sleeve {
	t.Helper()
	return NewSleeve(portfolioID).WithName(name).WithTargetPct(targetPct).Build(t, db)
}

// CreateCashSleeve creates the portfolio's cash sleeve.
func CreateCashSleeve(t *testing.T, db *sql.DB, portfolioID string, targetPct float64) model.Sleeve {
	t.Helper()
	return NewSleeve(portfolioID).WithName("Cash").WithTargetPct(targetPct).Cash().Build(t, db)
}

// SleeveSecurityBuilder provides a fluent interface for assigning a
// security to a sleeve.
//
// Example usage:
//
//	testutil.NewSleeveSecurity(sleeve.ID, "VTI").
//	    WithRank(1).
//	    Build(t, db)
type SleeveSecurityBuilder struct {
	ID         string
	SleeveID   string
	SecurityID string
	Rank       int
	TargetPct  float64
	IsLegacy   bool
}

// NewSleeveSecurity creates a SleeveSecurityBuilder with sensible defaults.
func NewSleeveSecurity(sleeveID, securityID string) *SleeveSecurityBuilder {
	return &SleeveSecurityBuilder{
		ID:         MakeID(),
		SleeveID:   sleeveID,
		SecurityID: securityID,
		Rank:       999,
		TargetPct:  0,
		IsLegacy:   false,
	}
}

// WithRank sets the purchase rank (lower = preferred).
func (b *SleeveSecurityBuilder) WithRank(rank int) *SleeveSecurityBuilder {
	b.Rank = rank
	return b
}

// WithTargetPct sets the per-security target percentage.
func (b *SleeveSecurityBuilder) WithTargetPct(pct float64) *SleeveSecurityBuilder {
	b.TargetPct = pct
	return b
}

// Legacy marks the assignment as a grandfathered holding.
func (b *SleeveSecurityBuilder) Legacy() *SleeveSecurityBuilder {
	b.IsLegacy = true
	return b
}

// Build creates the sleeve-security assignment in the database.
func (b *SleeveSecurityBuilder) Build(t *testing.T, db *sql.DB) model.SleeveSecurity {
	t.Helper()

	query := `
		INSERT INTO sleeve_security (id, sleeve_id, security_id, rank, target_pct, is_legacy)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.SleeveID, b.SecurityID, b.Rank, b.TargetPct, b.IsLegacy)
	if err != nil {
		t.Fatalf("Failed to create test sleeve security: %v", err)
	}

	return model.SleeveSecurity{
		ID:         b.ID,
		SleeveID:   b.SleeveID,
		SecurityID: b.SecurityID,
		Rank:       b.Rank,
		TargetPct:  b.TargetPct,
		IsLegacy:   b.IsLegacy,
	}
}

// PositionBuilder provides a fluent interface for creating test positions.
//
// Example usage:
//
//	testutil.NewPosition(portfolio.ID, "acct-1", "VTI").
//	    WithQty(10).
//	    WithPrice(220).
//	    Taxable().
//	    Build(t, db)
type PositionBuilder struct {
	ID             string
	PortfolioID    string
	AccountID      string
	SecurityID     string
	Qty            float64
	Price          float64
	IsTaxable      bool
	UnrealizedGain *float64
}

// NewPosition creates a PositionBuilder with sensible defaults.
func NewPosition(portfolioID, accountID, securityID string) *PositionBuilder {
	return &PositionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		AccountID:   accountID,
		SecurityID:  securityID,
		Qty:         1,
		Price:       100,
	}
}

// WithQty sets the share quantity.
func (b *PositionBuilder) WithQty(qty float64) *PositionBuilder {
	b.Qty = qty
	return b
}

// WithPrice sets the latest price.
func (b *PositionBuilder) WithPrice(price float64) *PositionBuilder {
	b.Price = price
	return b
}

// Taxable marks the position as held in a taxable account.
func (b *PositionBuilder) Taxable() *PositionBuilder {
	b.IsTaxable = true
	return b
}

// WithUnrealizedGain sets the position's unrealized gain.
func (b *PositionBuilder) WithUnrealizedGain(gain float64) *PositionBuilder {
	b.UnrealizedGain = &gain
	return b
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (id, portfolio_id, account_id, security_id, qty, price, is_taxable, unrealized_gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.AccountID, b.SecurityID, b.Qty, b.Price, b.IsTaxable, b.UnrealizedGain)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:             b.ID,
		PortfolioID:    b.PortfolioID,
		AccountID:      b.AccountID,
		SecurityID:     b.SecurityID,
		Qty:            b.Qty,
		Price:          b.Price,
		IsTaxable:      b.IsTaxable,
		UnrealizedGain: b.UnrealizedGain,
	}
}

// RestrictionBuilder provides a fluent interface for creating wash-sale
// restrictions.
//
// Example usage:
//
//	testutil.NewRestriction("VTI").
//	    WithBlockedUntil(time.Now().Add(10 * 24 * time.Hour)).
//	    Build(t, db)
type RestrictionBuilder struct {
	ID           string
	Ticker       string
	BlockedUntil time.Time
}

// NewRestriction creates a RestrictionBuilder blocking the ticker for 30
// days from now.
func NewRestriction(ticker string) *RestrictionBuilder {
	return &RestrictionBuilder{
		ID:           MakeID(),
		Ticker:       ticker,
		BlockedUntil: time.Now().Add(30 * 24 * time.Hour),
	}
}

// WithBlockedUntil sets a custom expiry.
func (b *RestrictionBuilder) WithBlockedUntil(until time.Time) *RestrictionBuilder {
	b.BlockedUntil = until
	return b
}

// Expired sets the expiry in the past.
func (b *RestrictionBuilder) Expired() *RestrictionBuilder {
	b.BlockedUntil = time.Now().Add(-24 * time.Hour)
	return b
}

// Build creates the restriction in the database and returns it.
func (b *RestrictionBuilder) Build(t *testing.T, db *sql.DB) model.WashSaleRestriction {
	t.Helper()

	query := `
		INSERT INTO wash_sale_restriction (id, ticker, blocked_until)
		VALUES (?, ?, ?)
	`

	// Stored as RFC3339 so string comparison against now works
	_, err := db.Exec(query, b.ID, b.Ticker, b.BlockedUntil.UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test restriction: %v", err)
	}

	return model.WashSaleRestriction{
		ID:           b.ID,
		Ticker:       b.Ticker,
		BlockedUntil: b.BlockedUntil.UTC().Truncate(time.Second),
	}
}

// CreateRestriction creates an active restriction for the ticker.
func CreateRestriction(t *testing.T, db *sql.DB, ticker string) model.WashSaleRestriction {
	t.Helper()
	return NewRestriction(ticker).Build(t, db)
}

// CreateReplacement creates a replacement mapping for a ticker.
//
// Example usage:
//
//	testutil.CreateReplacement(t, db, "VTI", "ITOT")
func CreateReplacement(t *testing.T, db *sql.DB, original, replacement string) model.SecurityReplacement {
	t.Helper()

	id := MakeID()
	query := `
		INSERT INTO security_replacement (id, original_ticker, replacement_ticker)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, id, original, replacement)
	if err != nil {
		t.Fatalf("Failed to create test replacement: %v", err)
	}

	return model.SecurityReplacement{
		ID:                id,
		OriginalTicker:    original,
		ReplacementTicker: replacement,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transactions.
//
// Example usage:
//
//	testutil.NewTransaction(portfolio.ID, "VTI").
//	    WithType("sell").
//	    WithDate(time.Now().Add(-5 * 24 * time.Hour)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID          string
	PortfolioID string
	Ticker      string
	Date        time.Time
	Type        string
	Shares      float64
	PricePS     float64
}

// NewTransaction creates a TransactionBuilder with sensible defaults.
func NewTransaction(portfolioID, ticker string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:          MakeID(),
		PortfolioID: portfolioID,
		Ticker:      ticker,
		Date:        time.Now(),
		Type:        "buy",
		Shares:      10,
		PricePS:     100,
	}
}

// WithDate sets the transaction date.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	b.Date = date
	return b
}

// WithType sets the transaction type (buy or sell).
func (b *TransactionBuilder) WithType(txType string) *TransactionBuilder {
	b.Type = txType
	return b
}

// WithShares sets the share count.
func (b *TransactionBuilder) WithShares(shares float64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithPricePerShare sets the per-share price.
func (b *TransactionBuilder) WithPricePerShare(price float64) *TransactionBuilder {
	b.PricePS = price
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, portfolio_id, ticker, date, type, shares, price_per_share)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.PortfolioID, b.Ticker, b.Date.Format("2006-01-02"), b.Type, b.Shares, b.PricePS)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:          b.ID,
		PortfolioID: b.PortfolioID,
		Ticker:      b.Ticker,
		Date:        b.Date,
		Type:        b.Type,
		Shares:      b.Shares,
		PricePS:     b.PricePS,
	}
}
