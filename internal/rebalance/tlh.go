package rebalance

import "math"

// buildPriceTable merges caller-supplied quotes with position prices.
// Position prices win so a stale quote never overrides a live holding.
func buildPriceTable(positions []SecurityPosition, quotes map[string]float64) map[string]float64 {
	prices := make(map[string]float64, len(positions)+len(quotes))
	for ticker, price := range quotes {
		prices[ticker] = price
	}
	for _, p := range positions {
		if p.Price > 0 {
			prices[p.SecurityID] = p.Price
		}
	}
	return prices
}

// flattenPositions collects every sleeve's positions into one slice,
// preserving sleeve and intra-sleeve order.
func flattenPositions(sleeves []SleeveAllocation) []SecurityPosition {
	var positions []SecurityPosition
	for _, sleeve := range sleeves {
		positions = append(positions, sleeve.Securities...)
	}
	return positions
}

// tlhSwap finds taxable lots carrying an unrealized loss and swaps each
// into its approved replacement: sell the entire position, then buy
// floor(proceeds/replacementPrice) shares of the replacement. Positions
// whose ticker is restricted, without an approved unrestricted
// replacement, are left alone. A replacement with no known price is sold
// but not repurchased.
func tlhSwap(positions []SecurityPosition, replacements []SecurityReplacement, prices map[string]float64, checker *RestrictionChecker) []Trade {
	replacementFor := make(map[string]string, len(replacements))
	for _, r := range replacements {
		replacementFor[r.OriginalTicker] = r.ReplacementTicker
	}

	var trades []Trade
	for _, p := range positions {
		if !p.IsTaxable || p.UnrealizedGain == nil || *p.UnrealizedGain >= 0 {
			continue
		}
		if p.CurrentQty <= 0 || p.Price <= 0 {
			continue
		}
		if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
			continue
		}

		replacement, ok := replacementFor[p.SecurityID]
		if !ok || replacement == "" {
			continue
		}
		if restricted, _ := checker.IsRestricted(replacement); restricted {
			continue
		}

		trades = append(trades, newSellTrade(p, p.CurrentQty))
		proceeds := p.CurrentQty * p.Price

		replacementPrice, priced := prices[replacement]
		if !priced || replacementPrice <= 0 {
			continue
		}
		shares := math.Floor(proceeds / replacementPrice)
		if shares < 1 {
			continue
		}
		trades = append(trades, Trade{
			AccountID:  p.AccountID,
			SecurityID: replacement,
			Action:     ActionBuy,
			Qty:        shares,
			EstPrice:   replacementPrice,
			EstValue:   shares * replacementPrice,
		})
	}

	return ConsolidateTrades(trades)
}

// tlhAndRebalance composes the swap engine with the flat allocation
// rebalancer: harvest losses, apply the swap trades to the position set
// (replacements enter with zero target weight), drop every now-restricted
// security, then rebalance the remainder. Returns swap and rebalance
// trades concatenated.
func tlhAndRebalance(req *Request, checker *RestrictionChecker) []Trade {
	positions := flattenPositions(req.Sleeves)
	prices := buildPriceTable(positions, req.Prices)

	swapTrades := tlhSwap(positions, req.Replacements, prices, checker)

	updated := applyTradesToPositions(positions, swapTrades, prices)

	// A ticker sold at a loss is immediately wash-sale restricted for the
	// rebalance leg.
	for _, t := range swapTrades {
		if t.Action == ActionSell {
			checker.restrict(t.SecurityID, "sold at a loss during tax-loss harvesting")
		}
	}

	filtered := updated[:0:0]
	for _, p := range updated {
		if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
			continue
		}
		filtered = append(filtered, p)
	}

	rebalanceTrades := allocationRebalance(filtered, checker)
	return ConsolidateTrades(append(swapTrades, rebalanceTrades...))
}

// applyTradesToPositions returns the position set as it stands after the
// given trades. Unknown (security, account) buys create fresh positions
// with zero target weight; positions emptied by sells are dropped.
func applyTradesToPositions(positions []SecurityPosition, trades []Trade, prices map[string]float64) []SecurityPosition {
	type positionKey struct {
		securityID string
		accountID  string
	}

	updated := make([]SecurityPosition, len(positions))
	copy(updated, positions)
	index := make(map[positionKey]int, len(updated))
	for i, p := range updated {
		index[positionKey{p.SecurityID, p.AccountID}] = i
	}

	for _, t := range trades {
		key := positionKey{t.SecurityID, t.AccountID}
		if i, ok := index[key]; ok {
			updated[i].CurrentQty += t.Qty
			continue
		}
		if t.Qty <= 0 {
			continue
		}
		price := t.EstPrice
		if quoted, ok := prices[t.SecurityID]; ok {
			price = quoted
		}
		index[key] = len(updated)
		updated = append(updated, SecurityPosition{
			SecurityID: t.SecurityID,
			AccountID:  t.AccountID,
			CurrentQty: t.Qty,
			TargetPct:  0,
			Price:      price,
			IsTaxable:  true,
			Rank:       DefaultRank,
		})
	}

	kept := updated[:0]
	for _, p := range updated {
		if p.CurrentQty > minTradeQty {
			kept = append(kept, p)
		}
	}
	return kept
}
