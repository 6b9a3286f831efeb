package rebalance_test

import (
	"testing"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
)

// TestEngine_InvestCash tests the fresh-cash deployment method.
//
// WHY: investCash must spread a cash injection across underweight sleeves
// cheapest-first without ever selling, must ignore cash and "Unassigned"
// sleeves, and must not buy past a sleeve's deficit.
func TestEngine_InvestCash(t *testing.T) {
	engine := newTestEngine()

	t.Run("zero cash produces no trades", func(t *testing.T) {
		cash := 0.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:  "sleeve-a",
					Name:      "US Equity",
					TargetPct: 100,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", Price: 100, Rank: 1},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}
		if len(result.Trades) != 0 {
			t.Errorf("Expected no trades, got %+v", result.Trades)
		}
	})

	t.Run("deploys cash cheapest-first across underweight sleeves", func(t *testing.T) {
		cash := 160.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:  "sleeve-a",
					Name:      "US Equity",
					TargetPct: 50,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", Price: 100, Rank: 1},
					},
				},
				{
					SleeveID:  "sleeve-b",
					Name:      "Intl Equity",
					TargetPct: 50,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "BBB", AccountID: "acct-1", Price: 30, Rank: 1},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}

		// Deficits are $80 each. Round robin starts at the cheaper BBB:
		// round 1 buys BBB and AAA, round 2 only BBB still fits the
		// remaining $30.
		qty := make(map[string]float64)
		for _, trade := range result.Trades {
			if trade.Action != rebalance.ActionBuy {
				t.Fatalf("investCash generated a non-buy trade: %+v", trade)
			}
			qty[trade.SecurityID] += trade.Qty
		}
		if qty["BBB"] != 2 {
			t.Errorf("Expected 2 shares of BBB, got %v", qty["BBB"])
		}
		if qty["AAA"] != 1 {
			t.Errorf("Expected 1 share of AAA, got %v", qty["AAA"])
		}
	})

	t.Run("stops at a sleeve's deficit", func(t *testing.T) {
		cash := 1000.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:     "sleeve-a",
					Name:         "US Equity",
					TargetPct:    10,
					CurrentValue: 0,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", Price: 10, Rank: 1},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}

		// Post-injection total is $1000, sleeve target 10% = $100, so
		// exactly 10 shares at $10 fill the deficit.
		if len(result.Trades) != 1 {
			t.Fatalf("Expected 1 consolidated buy, got %+v", result.Trades)
		}
		if result.Trades[0].SecurityID != "AAA" || result.Trades[0].Qty != 10 {
			t.Errorf("Expected BUY AAA 10, got %+v", result.Trades[0])
		}
	})

	t.Run("ignores cash and Unassigned sleeves", func(t *testing.T) {
		cash := 500.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:  "sleeve-u",
					Name:      "Unassigned",
					TargetPct: 50,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "UUU", AccountID: "acct-1", Price: 10, Rank: 1},
					},
				},
				{
					SleeveID:     "sleeve-cash",
					Name:         "Cash",
					TargetPct:    50,
					CurrentValue: 100,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: rebalance.CashSecurityID, AccountID: "acct-1", CurrentQty: 100, Price: 1},
					},
				},
				{
					SleeveID:  "sleeve-a",
					Name:      "US Equity",
					TargetPct: 50,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", Price: 50, Rank: 1},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}

		for _, trade := range result.Trades {
			if trade.SecurityID == "UUU" || trade.SecurityID == rebalance.CashSecurityID {
				t.Errorf("Bought into an excluded sleeve: %+v", trade)
			}
		}
	})

	t.Run("skips restricted securities within a sleeve", func(t *testing.T) {
		now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		cash := 100.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Now:         now,
			Restrictions: []rebalance.WashSaleRestriction{
				{Ticker: "AAA", BlockedUntil: now.Add(10 * 24 * time.Hour)},
			},
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:  "sleeve-a",
					Name:      "US Equity",
					TargetPct: 100,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", Price: 10, Rank: 1},
						{SecurityID: "BBB", AccountID: "acct-1", Price: 10, Rank: 2},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}

		if len(result.Trades) != 1 {
			t.Fatalf("Expected 1 consolidated buy, got %+v", result.Trades)
		}
		if result.Trades[0].SecurityID != "BBB" || result.Trades[0].Qty != 10 {
			t.Errorf("Expected BUY BBB 10, got %+v", result.Trades[0])
		}
	})

	t.Run("no underweight sleeve produces no trades", func(t *testing.T) {
		cash := 100.0
		req := rebalance.Request{
			PortfolioID: "p1",
			Method:      rebalance.MethodInvestCash,
			CashAmount:  &cash,
			Sleeves: []rebalance.SleeveAllocation{
				{
					SleeveID:     "sleeve-a",
					Name:         "US Equity",
					TargetPct:    10,
					CurrentValue: 5000,
					Securities: []rebalance.SecurityPosition{
						{SecurityID: "AAA", AccountID: "acct-1", CurrentQty: 50, Price: 100, Rank: 1},
					},
				},
			},
		}

		result, err := engine.Rebalance(req)
		if err != nil {
			t.Fatalf("Rebalance() returned unexpected error: %v", err)
		}
		if len(result.Trades) != 0 {
			t.Errorf("Expected no trades, got %+v", result.Trades)
		}
	})
}
