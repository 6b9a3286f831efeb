package rebalance

// deployOverinvestment spends residual ledger cash beyond sleeve targets.
// It reuses the one-share least-squared-deviation search of the greedy
// fill, but rejects any candidate whose purchase would push its sleeve
// more than maxOverPct above target. Stops when cash drops below a dollar
// or no candidate remains.
func deployOverinvestment(states []*sleeveState, ledger *cashLedger, checker *RestrictionChecker, maxOverPct float64) []Trade {
	var trades []Trade

	for ledger.total() >= minLedgerCash {
		candidate, ok := selectBestPurchase(states, ledger, checker, maxOverPct)
		if !ok {
			break
		}
		trades = append(trades, executePurchase(candidate, ledger))
	}

	return trades
}
