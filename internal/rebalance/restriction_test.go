package rebalance_test

import (
	"testing"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
)

// TestRestrictionChecker tests wash-sale restriction derivation.
//
// WHY: The checker is the single gate deciding whether a BUY may be
// generated. Both sources must feed it: explicit restriction records with
// an open window, and recent sells inside the 30-day wash-sale window.
// Expired records and old sells must not restrict.
func TestRestrictionChecker(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("active restriction record blocks the ticker", func(t *testing.T) {
		restrictions := []rebalance.WashSaleRestriction{
			{Ticker: "VTI", BlockedUntil: now.Add(5 * 24 * time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(restrictions, nil, now)

		restricted, reason := checker.IsRestricted("VTI")
		if !restricted {
			t.Fatal("Expected VTI to be restricted")
		}
		if reason == "" {
			t.Error("Expected a non-empty reason")
		}
	})

	t.Run("expired restriction record does not block", func(t *testing.T) {
		restrictions := []rebalance.WashSaleRestriction{
			{Ticker: "VTI", BlockedUntil: now.Add(-time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(restrictions, nil, now)

		if restricted, _ := checker.IsRestricted("VTI"); restricted {
			t.Error("Expected expired restriction to not block")
		}
	})

	t.Run("recent sell blocks the ticker", func(t *testing.T) {
		transactions := []rebalance.TransactionRecord{
			{Ticker: "ITOT", Action: rebalance.ActionSell, Date: now.Add(-10 * 24 * time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(nil, transactions, now)

		if restricted, _ := checker.IsRestricted("ITOT"); !restricted {
			t.Error("Expected ticker sold 10 days ago to be restricted")
		}
	})

	t.Run("sell outside the wash-sale window does not block", func(t *testing.T) {
		transactions := []rebalance.TransactionRecord{
			{Ticker: "ITOT", Action: rebalance.ActionSell, Date: now.Add(-31 * 24 * time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(nil, transactions, now)

		if restricted, _ := checker.IsRestricted("ITOT"); restricted {
			t.Error("Expected 31-day-old sell to not restrict")
		}
	})

	t.Run("buy transactions never restrict", func(t *testing.T) {
		transactions := []rebalance.TransactionRecord{
			{Ticker: "ITOT", Action: rebalance.ActionBuy, Date: now.Add(-time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(nil, transactions, now)

		if restricted, _ := checker.IsRestricted("ITOT"); restricted {
			t.Error("Expected recent buy to not restrict")
		}
	})

	t.Run("unknown ticker is not restricted", func(t *testing.T) {
		checker := rebalance.NewRestrictionChecker(nil, nil, now)

		if restricted, reason := checker.IsRestricted("ZZZ"); restricted || reason != "" {
			t.Errorf("Expected no restriction, got restricted=%v reason=%q", restricted, reason)
		}
	})

	t.Run("restricted tickers returns the full set", func(t *testing.T) {
		restrictions := []rebalance.WashSaleRestriction{
			{Ticker: "VTI", BlockedUntil: now.Add(24 * time.Hour)},
		}
		transactions := []rebalance.TransactionRecord{
			{Ticker: "ITOT", Action: rebalance.ActionSell, Date: now.Add(-24 * time.Hour)},
		}

		checker := rebalance.NewRestrictionChecker(restrictions, transactions, now)

		set := checker.RestrictedTickers()
		if len(set) != 2 {
			t.Fatalf("Expected 2 restricted tickers, got %d", len(set))
		}
		for _, ticker := range []string{"VTI", "ITOT"} {
			if _, ok := set[ticker]; !ok {
				t.Errorf("Expected %s in restricted set", ticker)
			}
		}
	})
}
