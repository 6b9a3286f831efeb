package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
)

// NewTestRebalanceService wires a RebalanceService against the test
// database with a default overinvestment cap of 5 percent.
func NewTestRebalanceService(t *testing.T, db *sql.DB) *service.RebalanceService {
	t.Helper()

	return service.NewRebalanceService(
		repository.NewPortfolioRepository(db),
		repository.NewSleeveRepository(db),
		repository.NewPositionRepository(db),
		repository.NewRestrictionRepository(db),
		repository.NewReplacementRepository(db),
		repository.NewTransactionRepository(db),
		rebalance.NewEngine(nil),
		5.0,
	)
}

// NewTestSleeveService wires a SleeveService against the test database.
func NewTestSleeveService(t *testing.T, db *sql.DB) *service.SleeveService {
	t.Helper()

	return service.NewSleeveService(
		repository.NewSleeveRepository(db),
		repository.NewPortfolioRepository(db),
	)
}

// NewTestRestrictionService wires a RestrictionService against the test
// database.
func NewTestRestrictionService(t *testing.T, db *sql.DB) *service.RestrictionService {
	t.Helper()

	return service.NewRestrictionService(
		repository.NewRestrictionRepository(db),
	)
}

// NewTestSystemService wires a SystemService against the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a unique UUID for testing.
//
// Example usage:
//
//	id := testutil.MakeID()
func MakeID() string {
	return uuid.New().String()
}

// MakePortfolioName generates a unique portfolio name for testing.
//
// Example usage:
//
//	name := testutil.MakePortfolioName("Growth")
//	// Returns something like "Growth x7Kp2q"
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeTicker generates a random uppercase ticker symbol for testing.
func MakeTicker() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, 4)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// randomAlphanumeric generates a random alphanumeric string of length n.
func randomAlphanumeric(n int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}

// FloatPtr returns a pointer to the given float64. Useful for optional
// request fields.
func FloatPtr(v float64) *float64 {
	return &v
}
