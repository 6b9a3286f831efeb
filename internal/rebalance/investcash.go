package rebalance

import (
	"sort"
	"strings"
)

// maxInvestRounds caps the round-robin buy loop of investCash.
const maxInvestRounds = 100

// investEntry is one sleeve's purchase slot in the cheapest-first round
// robin: its preferred security and the dollar deficit still to fill.
type investEntry struct {
	position SecurityPosition
	deficit  float64
}

// investCash deploys a fresh cash injection across underweight sleeves
// without selling anything. Each eligible sleeve contributes its
// lowest-rank unrestricted security; the list is sorted by price ascending
// and bought one share per sleeve per round until the cash or the deficits
// run out. Deliberately a simple cheapest-first round robin rather than
// the squared-deviation search: initial target deficits dominate the
// cash-sizing decision.
func investCash(req *Request, checker *RestrictionChecker, cashAmount float64) []Trade {
	if cashAmount <= 0 {
		return nil
	}

	states, _ := newSleeveStates(req.Sleeves, req.CashSleeveID)

	currentTotal := 0.0
	for _, state := range states {
		if !state.isCash {
			currentTotal += state.value
		}
	}
	postTotal := currentTotal + cashAmount

	var entries []investEntry
	for _, state := range states {
		if state.isCash || state.sleeve.TargetPct <= 0 {
			continue
		}
		if strings.EqualFold(state.sleeve.Name, "Unassigned") {
			continue
		}

		deficit := state.sleeve.TargetPct/100*postTotal - state.value
		if deficit <= valueEpsilon {
			continue
		}

		position, ok := preferredSecurity(state, checker)
		if !ok {
			continue
		}
		entries = append(entries, investEntry{position: position, deficit: deficit})
	}
	if len(entries) == 0 {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].position.Price < entries[j].position.Price
	})

	var trades []Trade
	remaining := cashAmount
	for round := 0; round < maxInvestRounds; round++ {
		bought := false
		for i := range entries {
			entry := &entries[i]
			if entry.deficit <= valueEpsilon {
				continue
			}
			if entry.position.Price > remaining {
				continue
			}
			trades = append(trades, newBuyTrade(entry.position, 1))
			remaining -= entry.position.Price
			entry.deficit -= entry.position.Price
			bought = true
		}
		if !bought || remaining <= 0 {
			break
		}
	}

	return ConsolidateTrades(trades)
}

// preferredSecurity returns the sleeve's lowest-rank priced, unrestricted
// security.
func preferredSecurity(state *sleeveState, checker *RestrictionChecker) (SecurityPosition, bool) {
	for _, p := range state.byRank {
		if p.Price <= 0 {
			continue
		}
		if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
			continue
		}
		return p, true
	}
	return SecurityPosition{}, false
}
