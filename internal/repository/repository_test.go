package repository_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/testutil"
)

// TestPortfolioRepository tests portfolio persistence.
//
// WHY: Every preview starts by resolving the portfolio; the not-found
// sentinel must surface so the API layer can map it to a 404.
func TestPortfolioRepository(t *testing.T) {
	t.Run("returns sentinel for unknown portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		_, err := repo.GetPortfolio(testutil.MakeID())

		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("creates and retrieves a portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		p := model.Portfolio{ID: testutil.MakeID(), Name: "Growth", Description: "long-term"}
		if err := repo.CreatePortfolio(p); err != nil {
			t.Fatalf("CreatePortfolio() returned unexpected error: %v", err)
		}

		got, err := repo.GetPortfolio(p.ID)
		if err != nil {
			t.Fatalf("GetPortfolio() returned unexpected error: %v", err)
		}
		if got != p {
			t.Errorf("Expected %+v, got %+v", p, got)
		}
	})

	t.Run("excludes archived portfolios when asked", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPortfolioRepository(db)

		active := testutil.CreatePortfolio(t, db, "Active")
		testutil.NewPortfolio().WithName("Archived").Archived().Build(t, db)

		portfolios, err := repo.GetPortfolios(false)
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}
		if len(portfolios) != 1 || portfolios[0].ID != active.ID {
			t.Errorf("Expected only the active portfolio, got %+v", portfolios)
		}

		all, err := repo.GetPortfolios(true)
		if err != nil {
			t.Fatalf("GetPortfolios() returned unexpected error: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("Expected 2 portfolios including archived, got %d", len(all))
		}
	})
}

// TestSleeveRepository tests sleeve and sleeve-security persistence.
//
// WHY: The engine's input assembly depends on sleeves arriving with their
// security assignments ordered by rank, and on upserts replacing rather
// than duplicating assignments.
func TestSleeveRepository(t *testing.T) {
	t.Run("returns sleeves with rank-ordered securities", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSleeveRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		sleeve := testutil.CreateSleeve(t, db, portfolio.ID, "US Equity", 60)
		testutil.NewSleeveSecurity(sleeve.ID, "ZZZ").WithRank(2).Build(t, db)
		testutil.NewSleeveSecurity(sleeve.ID, "AAA").WithRank(1).Build(t, db)

		sleeves, err := repo.GetSleevesByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetSleevesByPortfolio() returned unexpected error: %v", err)
		}

		if len(sleeves) != 1 {
			t.Fatalf("Expected 1 sleeve, got %d", len(sleeves))
		}
		secs := sleeves[0].Securities
		if len(secs) != 2 {
			t.Fatalf("Expected 2 securities, got %d", len(secs))
		}
		if secs[0].SecurityID != "AAA" || secs[1].SecurityID != "ZZZ" {
			t.Errorf("Expected rank order [AAA ZZZ], got [%s %s]", secs[0].SecurityID, secs[1].SecurityID)
		}
	})

	t.Run("returns empty slice for portfolio without sleeves", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSleeveRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		sleeves, err := repo.GetSleevesByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetSleevesByPortfolio() returned unexpected error: %v", err)
		}
		if len(sleeves) != 0 {
			t.Errorf("Expected no sleeves, got %+v", sleeves)
		}
	})

	t.Run("returns sentinel for unknown sleeve", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSleeveRepository(db)

		_, err := repo.GetSleeve(testutil.MakeID())

		if !errors.Is(err, apperrors.ErrSleeveNotFound) {
			t.Errorf("Expected ErrSleeveNotFound, got %v", err)
		}
	})

	t.Run("upsert replaces an existing assignment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSleeveRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")
		sleeve := testutil.CreateSleeve(t, db, portfolio.ID, "US Equity", 60)

		first := model.SleeveSecurity{ID: testutil.MakeID(), SleeveID: sleeve.ID, SecurityID: "VTI", Rank: 5}
		if err := repo.UpsertSleeveSecurity(first); err != nil {
			t.Fatalf("UpsertSleeveSecurity() returned unexpected error: %v", err)
		}

		second := model.SleeveSecurity{ID: testutil.MakeID(), SleeveID: sleeve.ID, SecurityID: "VTI", Rank: 1, IsLegacy: true}
		if err := repo.UpsertSleeveSecurity(second); err != nil {
			t.Fatalf("UpsertSleeveSecurity() returned unexpected error: %v", err)
		}

		sleeves, err := repo.GetSleevesByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetSleevesByPortfolio() returned unexpected error: %v", err)
		}
		secs := sleeves[0].Securities
		if len(secs) != 1 {
			t.Fatalf("Expected 1 assignment after upsert, got %d", len(secs))
		}
		if secs[0].Rank != 1 || !secs[0].IsLegacy {
			t.Errorf("Expected updated rank 1 legacy, got %+v", secs[0])
		}
	})
}

// TestPositionRepository tests position persistence and price lookups.
//
// WHY: Positions feed the engine grouped by security, nullable cost basis
// must round-trip as a nil pointer, and replacement quoting relies on the
// per-security latest price.
func TestPositionRepository(t *testing.T) {
	t.Run("groups positions by security", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		testutil.NewPosition(portfolio.ID, "acct-1", "VTI").WithQty(10).WithPrice(220).Build(t, db)
		testutil.NewPosition(portfolio.ID, "acct-2", "VTI").WithQty(5).WithPrice(220).Build(t, db)
		testutil.NewPosition(portfolio.ID, "acct-1", "BND").WithQty(3).WithPrice(70).Build(t, db)

		positions, err := repo.GetPositionsByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetPositionsByPortfolio() returned unexpected error: %v", err)
		}

		if len(positions["VTI"]) != 2 {
			t.Errorf("Expected 2 VTI positions, got %d", len(positions["VTI"]))
		}
		if len(positions["BND"]) != 1 {
			t.Errorf("Expected 1 BND position, got %d", len(positions["BND"]))
		}
	})

	t.Run("round-trips a nil unrealized gain", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		testutil.NewPosition(portfolio.ID, "acct-1", "VTI").Build(t, db)
		testutil.NewPosition(portfolio.ID, "acct-1", "BND").WithUnrealizedGain(-42.5).Build(t, db)

		positions, err := repo.GetPositionsByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetPositionsByPortfolio() returned unexpected error: %v", err)
		}

		if gain := positions["VTI"][0].UnrealizedGain; gain != nil {
			t.Errorf("Expected nil gain, got %v", *gain)
		}
		if gain := positions["BND"][0].UnrealizedGain; gain == nil || *gain != -42.5 {
			t.Errorf("Expected gain -42.5, got %v", gain)
		}
	})

	t.Run("returns latest price per security", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		p1 := testutil.CreatePortfolio(t, db, "P1")
		p2 := testutil.CreatePortfolio(t, db, "P2")

		testutil.NewPosition(p1.ID, "acct-1", "VTI").WithPrice(210).Build(t, db)
		testutil.NewPosition(p2.ID, "acct-1", "VTI").WithPrice(220).Build(t, db)

		prices, err := repo.GetPrices()
		if err != nil {
			t.Fatalf("GetPrices() returned unexpected error: %v", err)
		}
		if prices["VTI"] != 220 {
			t.Errorf("Expected price 220, got %v", prices["VTI"])
		}
	})

	t.Run("upsert replaces an existing position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPositionRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		p := testutil.NewPosition(portfolio.ID, "acct-1", "VTI").WithQty(10).WithPrice(200).Build(t, db)
		p.Qty = 12
		p.Price = 210
		p.ID = testutil.MakeID()
		if err := repo.UpsertPosition(p); err != nil {
			t.Fatalf("UpsertPosition() returned unexpected error: %v", err)
		}

		positions, err := repo.GetPositionsByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetPositionsByPortfolio() returned unexpected error: %v", err)
		}
		if len(positions["VTI"]) != 1 {
			t.Fatalf("Expected 1 position after upsert, got %d", len(positions["VTI"]))
		}
		if positions["VTI"][0].Qty != 12 || positions["VTI"][0].Price != 210 {
			t.Errorf("Expected updated qty 12 price 210, got %+v", positions["VTI"][0])
		}
	})
}

// TestRestrictionRepository tests wash-sale restriction persistence.
//
// WHY: The active/expired cut and the expiry sweep gate which tickers the
// engine may buy; an off-by-one here silently permits wash sales.
func TestRestrictionRepository(t *testing.T) {
	t.Run("GetActive excludes expired restrictions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRestrictionRepository(db)

		active := testutil.NewRestriction("VTI").Build(t, db)
		testutil.NewRestriction("ITOT").Expired().Build(t, db)

		restrictions, err := repo.GetActive(time.Now())
		if err != nil {
			t.Fatalf("GetActive() returned unexpected error: %v", err)
		}
		if len(restrictions) != 1 || restrictions[0].ID != active.ID {
			t.Errorf("Expected only the active restriction, got %+v", restrictions)
		}
	})

	t.Run("GetAll includes expired restrictions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRestrictionRepository(db)

		testutil.NewRestriction("VTI").Build(t, db)
		testutil.NewRestriction("ITOT").Expired().Build(t, db)

		restrictions, err := repo.GetAll()
		if err != nil {
			t.Fatalf("GetAll() returned unexpected error: %v", err)
		}
		if len(restrictions) != 2 {
			t.Errorf("Expected 2 restrictions, got %d", len(restrictions))
		}
	})

	t.Run("create and delete round-trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRestrictionRepository(db)

		restriction := model.WashSaleRestriction{
			ID:           testutil.MakeID(),
			Ticker:       "VTI",
			BlockedUntil: time.Now().Add(7 * 24 * time.Hour),
		}
		if err := repo.CreateRestriction(restriction); err != nil {
			t.Fatalf("CreateRestriction() returned unexpected error: %v", err)
		}
		if err := repo.DeleteRestriction(restriction.ID); err != nil {
			t.Fatalf("DeleteRestriction() returned unexpected error: %v", err)
		}

		restrictions, err := repo.GetAll()
		if err != nil {
			t.Fatalf("GetAll() returned unexpected error: %v", err)
		}
		if len(restrictions) != 0 {
			t.Errorf("Expected no restrictions after delete, got %+v", restrictions)
		}
	})

	t.Run("delete of unknown restriction returns sentinel", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRestrictionRepository(db)

		err := repo.DeleteRestriction(testutil.MakeID())

		if !errors.Is(err, apperrors.ErrRestrictionNotFound) {
			t.Errorf("Expected ErrRestrictionNotFound, got %v", err)
		}
	})

	t.Run("DeleteExpired sweeps only closed windows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRestrictionRepository(db)

		testutil.NewRestriction("VTI").Build(t, db)
		testutil.NewRestriction("ITOT").Expired().Build(t, db)
		testutil.NewRestriction("SCHB").Expired().Build(t, db)

		swept, err := repo.DeleteExpired(time.Now())
		if err != nil {
			t.Fatalf("DeleteExpired() returned unexpected error: %v", err)
		}
		if swept != 2 {
			t.Errorf("Expected 2 swept rows, got %d", swept)
		}

		remaining, err := repo.GetAll()
		if err != nil {
			t.Fatalf("GetAll() returned unexpected error: %v", err)
		}
		if len(remaining) != 1 || remaining[0].Ticker != "VTI" {
			t.Errorf("Expected only VTI to remain, got %+v", remaining)
		}
	})
}

// TestReplacementRepository tests the replacement-candidate mapping.
//
// WHY: The mapping is one-to-one on the original ticker; a second upsert
// must replace, not duplicate.
func TestReplacementRepository(t *testing.T) {
	t.Run("upsert replaces the mapping for a ticker", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewReplacementRepository(db)

		testutil.CreateReplacement(t, db, "VTI", "ITOT")
		err := repo.UpsertReplacement(model.SecurityReplacement{
			ID:                testutil.MakeID(),
			OriginalTicker:    "VTI",
			ReplacementTicker: "SCHB",
		})
		if err != nil {
			t.Fatalf("UpsertReplacement() returned unexpected error: %v", err)
		}

		replacements, err := repo.GetReplacements()
		if err != nil {
			t.Fatalf("GetReplacements() returned unexpected error: %v", err)
		}
		if len(replacements) != 1 {
			t.Fatalf("Expected 1 mapping, got %d", len(replacements))
		}
		if replacements[0].ReplacementTicker != "SCHB" {
			t.Errorf("Expected replacement SCHB, got %s", replacements[0].ReplacementTicker)
		}
	})
}

// TestTransactionRepository tests the recent-transaction window query.
//
// WHY: Only sells inside the lookback window feed wash-sale derivation;
// older transactions must be filtered at the query.
func TestTransactionRepository(t *testing.T) {
	t.Run("returns only transactions on or after since", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		portfolio := testutil.CreatePortfolio(t, db, "P")

		recent := testutil.NewTransaction(portfolio.ID, "VTI").
			WithType("sell").
			WithDate(time.Now().Add(-5 * 24 * time.Hour)).
			Build(t, db)
		testutil.NewTransaction(portfolio.ID, "ITOT").
			WithType("sell").
			WithDate(time.Now().Add(-90 * 24 * time.Hour)).
			Build(t, db)

		transactions, err := repo.GetRecentTransactions(portfolio.ID, time.Now().Add(-31*24*time.Hour))
		if err != nil {
			t.Fatalf("GetRecentTransactions() returned unexpected error: %v", err)
		}

		if len(transactions) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(transactions))
		}
		if transactions[0].ID != recent.ID {
			t.Errorf("Expected the recent transaction, got %+v", transactions[0])
		}
	})

	t.Run("scopes to the portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTransactionRepository(db)
		p1 := testutil.CreatePortfolio(t, db, "P1")
		p2 := testutil.CreatePortfolio(t, db, "P2")

		testutil.NewTransaction(p1.ID, "VTI").Build(t, db)
		testutil.NewTransaction(p2.ID, "VTI").Build(t, db)

		transactions, err := repo.GetRecentTransactions(p1.ID, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("GetRecentTransactions() returned unexpected error: %v", err)
		}
		if len(transactions) != 1 || transactions[0].PortfolioID != p1.ID {
			t.Errorf("Expected only the p1 transaction, got %+v", transactions)
		}
	})
}

// TestSettingsRepository tests broker settings persistence.
//
// WHY: The table is single-row by contract; storing twice must replace
// the previous key, and an empty table must surface the sentinel.
func TestSettingsRepository(t *testing.T) {
	t.Run("returns sentinel when nothing stored", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSettingsRepository(db)

		_, _, err := repo.GetBrokerAPIKey()

		if !errors.Is(err, apperrors.ErrBrokerSettingsNotFound) {
			t.Errorf("Expected ErrBrokerSettingsNotFound, got %v", err)
		}
	})

	t.Run("stores and replaces the key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewSettingsRepository(db)

		if err := repo.SetBrokerAPIKey(testutil.MakeID(), "cipher-one"); err != nil {
			t.Fatalf("SetBrokerAPIKey() returned unexpected error: %v", err)
		}
		if err := repo.SetBrokerAPIKey(testutil.MakeID(), "cipher-two"); err != nil {
			t.Fatalf("SetBrokerAPIKey() returned unexpected error: %v", err)
		}

		encrypted, updatedAt, err := repo.GetBrokerAPIKey()
		if err != nil {
			t.Fatalf("GetBrokerAPIKey() returned unexpected error: %v", err)
		}
		if encrypted != "cipher-two" {
			t.Errorf("Expected latest key, got %q", encrypted)
		}
		if updatedAt.IsZero() {
			t.Error("Expected a non-zero updated time")
		}
	})
}
