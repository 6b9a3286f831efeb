package rebalance

import (
	"math"
	"sort"
)

// valueEpsilon is the dollar tolerance under which a position or sleeve is
// considered on target.
const valueEpsilon = 0.01

// newSellTrade builds a sell of shares whole-or-fractional shares of p.
// shares must be positive; the trade's signed quantity is negative.
func newSellTrade(p SecurityPosition, shares float64) Trade {
	return Trade{
		AccountID:  p.AccountID,
		SecurityID: p.SecurityID,
		Action:     ActionSell,
		Qty:        -shares,
		EstPrice:   p.Price,
		EstValue:   -shares * p.Price,
	}
}

// newBuyTrade builds a buy of shares shares of p.
func newBuyTrade(p SecurityPosition, shares float64) Trade {
	return Trade{
		AccountID:  p.AccountID,
		SecurityID: p.SecurityID,
		Action:     ActionBuy,
		Qty:        shares,
		EstPrice:   p.Price,
		EstValue:   shares * p.Price,
	}
}

// legacySellBlocked reports whether the legacy-holding exemption forbids
// selling p: the position is legacy and either buy-restricted or selling
// it would realize a taxable gain. The check is OR-based, so a restricted
// loss-making legacy position is still skipped.
func legacySellBlocked(p SecurityPosition, checker *RestrictionChecker) bool {
	if !p.IsLegacy {
		return false
	}
	if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
		return true
	}
	if p.IsTaxable && p.UnrealizedGain != nil && *p.UnrealizedGain > 0 {
		return true
	}
	return false
}

// allocationRebalance runs the flat two-pass rebalance: sell every
// overweight position down to target, then buy underweight positions in
// descending-shortfall order with the sale proceeds. Target percentages
// are interpreted against total portfolio market value.
func allocationRebalance(positions []SecurityPosition, checker *RestrictionChecker) []Trade {
	total := 0.0
	for _, p := range positions {
		total += p.MarketValue()
	}
	if total <= 0 {
		return nil
	}

	var trades []Trade
	availableCash := 0.0

	// Post-sell quantities, keyed by position index.
	postQty := make([]float64, len(positions))
	for i, p := range positions {
		postQty[i] = p.CurrentQty
	}

	// Sell pass.
	for i, p := range positions {
		if p.Price <= 0 {
			continue
		}
		target := p.TargetPct / 100 * total
		excess := p.MarketValue() - target
		if excess <= valueEpsilon {
			continue
		}
		if legacySellBlocked(p, checker) {
			continue
		}

		var shares float64
		if target <= valueEpsilon {
			// Full exit sells the entire quantity, fractional included.
			shares = p.CurrentQty
		} else {
			shares = math.Floor(excess / p.Price)
		}
		if shares <= 0 {
			continue
		}

		trades = append(trades, newSellTrade(p, shares))
		postQty[i] -= shares
		availableCash += shares * p.Price
	}

	// Recompute total value after sells; proceeds stay part of the
	// portfolio, so targets are resized against remaining value plus cash.
	postTotal := availableCash
	for i, p := range positions {
		postTotal += postQty[i] * p.Price
	}

	type shortfall struct {
		index  int
		amount float64
	}
	var shortfalls []shortfall
	for i, p := range positions {
		if p.Price <= 0 {
			continue
		}
		target := p.TargetPct / 100 * postTotal
		deficit := target - postQty[i]*p.Price
		if deficit > valueEpsilon {
			shortfalls = append(shortfalls, shortfall{index: i, amount: deficit})
		}
	}

	// Largest shortfall buys first; stable sort keeps input order on ties.
	sort.SliceStable(shortfalls, func(i, j int) bool {
		return shortfalls[i].amount > shortfalls[j].amount
	})

	// Buy pass.
	for _, s := range shortfalls {
		p := positions[s.index]
		if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
			continue
		}
		if availableCash < p.Price {
			continue
		}
		spend := math.Min(s.amount, availableCash)
		shares := math.Floor(spend / p.Price)
		if shares < 1 {
			continue
		}
		trades = append(trades, newBuyTrade(p, shares))
		availableCash -= shares * p.Price
	}

	return ConsolidateTrades(trades)
}
