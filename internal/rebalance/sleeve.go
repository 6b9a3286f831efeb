package rebalance

import (
	"math"
	"sort"
	"strings"
)

// minLedgerCash is the total ledger cash below which the greedy buy loops
// stop searching for candidates.
const minLedgerCash = 1.0

// cashLedger tracks sale proceeds and seed cash per account. Account order
// is preserved so that candidate selection is deterministic.
type cashLedger struct {
	amounts map[string]float64
	order   []string
}

func newCashLedger() *cashLedger {
	return &cashLedger{amounts: make(map[string]float64)}
}

func (l *cashLedger) credit(accountID string, amount float64) {
	if _, ok := l.amounts[accountID]; !ok {
		l.order = append(l.order, accountID)
	}
	l.amounts[accountID] += amount
}

func (l *cashLedger) debit(accountID string, amount float64) {
	l.amounts[accountID] -= amount
}

func (l *cashLedger) total() float64 {
	sum := 0.0
	for _, amount := range l.amounts {
		sum += amount
	}
	return sum
}

// accountWithFunds returns the account that should fund a purchase of the
// given amount, preferring the supplied account and falling back to the
// first account (in ledger order) holding enough cash.
func (l *cashLedger) accountWithFunds(preferred string, amount float64) (string, bool) {
	if l.amounts[preferred] >= amount {
		return preferred, true
	}
	for _, accountID := range l.order {
		if l.amounts[accountID] >= amount {
			return accountID, true
		}
	}
	return "", false
}

// sleeveState is the engine's mutable view of one sleeve during a single
// rebalance call. value starts at the sleeve's current value and follows
// every executed trade.
type sleeveState struct {
	sleeve *SleeveAllocation
	value  float64
	isCash bool

	// securities sorted by rank ascending (preferred first); remaining
	// holds the running quantity per index of that sorted slice.
	byRank    []SecurityPosition
	remaining []float64
}

func (s *sleeveState) target() float64 { return s.sleeve.TargetValue }

func (s *sleeveState) eligible() bool {
	return !s.isCash && s.sleeve.TargetPct > 0
}

// purchaseCandidate is the lowest-rank buyable security of a sleeve
// together with the account that would fund a one-share purchase.
type purchaseCandidate struct {
	state     *sleeveState
	position  SecurityPosition
	accountID string
}

// newSleeveStates builds the per-call sleeve views and seeds the cash
// ledger from the cash sleeve's positions. The cash sleeve is matched by
// id when cashSleeveID is set, by name "Cash" otherwise.
func newSleeveStates(sleeves []SleeveAllocation, cashSleeveID string) ([]*sleeveState, *cashLedger) {
	ledger := newCashLedger()
	states := make([]*sleeveState, 0, len(sleeves))

	for i := range sleeves {
		sleeve := &sleeves[i]
		state := &sleeveState{sleeve: sleeve, value: sleeve.CurrentValue}
		if cashSleeveID != "" {
			state.isCash = sleeve.SleeveID == cashSleeveID
		} else {
			state.isCash = strings.EqualFold(sleeve.Name, "Cash")
		}

		state.byRank = make([]SecurityPosition, len(sleeve.Securities))
		copy(state.byRank, sleeve.Securities)
		sort.SliceStable(state.byRank, func(a, b int) bool {
			return state.byRank[a].Rank < state.byRank[b].Rank
		})
		state.remaining = make([]float64, len(state.byRank))
		for j, p := range state.byRank {
			state.remaining[j] = p.CurrentQty
		}

		if state.isCash {
			for _, p := range sleeve.Securities {
				if v := p.MarketValue(); v > 0 {
					ledger.credit(p.AccountID, v)
				}
			}
		} else {
			// Register accounts so sale proceeds land in a stable order.
			for _, p := range sleeve.Securities {
				ledger.credit(p.AccountID, 0)
			}
		}

		states = append(states, state)
	}

	return states, ledger
}

// sellOverweightSleeves sells each non-cash sleeve down toward its target,
// walking securities in reverse-rank order (least preferred first). For
// every candidate the share count is chosen from a one-share search window
// around floor(excess/price), picking whichever post-sell sleeve value
// deviates least from target. Proceeds accrue to the per-account ledger.
func sellOverweightSleeves(states []*sleeveState, ledger *cashLedger, checker *RestrictionChecker) []Trade {
	var trades []Trade

	for _, state := range states {
		if state.isCash {
			continue
		}

		for i := len(state.byRank) - 1; i >= 0; i-- {
			excess := state.value - state.target()
			if excess <= valueEpsilon {
				break
			}

			p := state.byRank[i]
			held := state.remaining[i]
			if held <= 0 || p.Price <= 0 {
				continue
			}
			if legacySellBlocked(p, checker) {
				continue
			}

			shares := bestSellCount(excess, p.Price, held, state.value, state.target())
			if shares <= 0 {
				continue
			}

			trade := newSellTrade(p, shares)
			trade.AccountID = p.AccountID
			trades = append(trades, trade)
			state.remaining[i] -= shares
			state.value -= shares * p.Price
			ledger.credit(p.AccountID, shares*p.Price)
		}
	}

	return trades
}

// bestSellCount evaluates floor(excess/price) plus one share either side,
// clamped to the held quantity, and returns the count whose post-sell
// sleeve value sits closest to target. Clamping the upper candidate to the
// held quantity lets a full exit dispose of fractional remainders.
func bestSellCount(excess, price, held, value, target float64) float64 {
	base := math.Floor(excess / price)

	best := 0.0
	bestDev := math.Abs(value - target)
	for _, candidate := range []float64{base - 1, base, base + 1} {
		if candidate > held {
			candidate = held
		}
		if candidate <= 0 {
			continue
		}
		dev := math.Abs(value - candidate*price - target)
		if dev < bestDev {
			bestDev = dev
			best = candidate
		}
	}
	return best
}

// seedUnderweightSleeves runs the first buy phase: every eligible sleeve
// still short of target buys its lowest-rank unrestricted security with
// whatever ledger cash an account can supply, up to the remaining deficit.
func seedUnderweightSleeves(states []*sleeveState, ledger *cashLedger, checker *RestrictionChecker) []Trade {
	var trades []Trade

	for _, state := range states {
		if !state.eligible() {
			continue
		}
		deficit := state.target() - state.value
		if deficit <= valueEpsilon {
			continue
		}

		position, accountID, ok := lowestRankPurchasable(state, ledger, checker)
		if !ok {
			continue
		}

		shares := math.Min(
			math.Floor(deficit/position.Price),
			math.Floor(ledger.amounts[accountID]/position.Price),
		)
		if shares < 1 {
			continue
		}

		trade := newBuyTrade(position, shares)
		trade.AccountID = accountID
		trades = append(trades, trade)
		ledger.debit(accountID, shares*position.Price)
		state.value += shares * position.Price
	}

	return trades
}

// lowestRankPurchasable finds the sleeve's preferred buyable security: the
// lowest-rank position that is priced, unrestricted, and affordable by at
// least one ledger account (preferring the position's own account).
func lowestRankPurchasable(state *sleeveState, ledger *cashLedger, checker *RestrictionChecker) (SecurityPosition, string, bool) {
	for _, p := range state.byRank {
		if p.Price <= 0 {
			continue
		}
		if restricted, _ := checker.IsRestricted(p.SecurityID); restricted {
			continue
		}
		accountID, ok := ledger.accountWithFunds(p.AccountID, p.Price)
		if !ok {
			continue
		}
		return p, accountID, true
	}
	return SecurityPosition{}, "", false
}

// selectBestPurchase scans every eligible sleeve's preferred security and
// returns the single one-share purchase that minimizes the portfolio's
// total squared dollar deviation from target. On an exact tie the
// first-found candidate (sleeve input order) wins. maxOverPct, when
// non-negative, rejects candidates that would push their sleeve more than
// that percentage above target; zero caps purchases at the target itself
// and a negative value disables the check.
func selectBestPurchase(states []*sleeveState, ledger *cashLedger, checker *RestrictionChecker, maxOverPct float64) (purchaseCandidate, bool) {
	var best purchaseCandidate
	bestDeviation := math.Inf(1)
	found := false

	for _, state := range states {
		if !state.eligible() {
			continue
		}
		position, accountID, ok := lowestRankPurchasable(state, ledger, checker)
		if !ok {
			continue
		}
		if maxOverPct >= 0 {
			limit := state.target() * (1 + maxOverPct/100)
			if state.value+position.Price > limit {
				continue
			}
		}

		deviation := totalSquaredDeviation(states, state, position.Price)
		if deviation < bestDeviation {
			bestDeviation = deviation
			best = purchaseCandidate{state: state, position: position, accountID: accountID}
			found = true
		}
	}

	return best, found
}

// totalSquaredDeviation computes the portfolio's sum of squared dollar
// deviations from sleeve targets as it would stand after buying one share
// (worth price) in buyer. The full recomputation across sleeves every call
// is intentional: it preserves the exact tie-break semantics of the greedy
// fill.
func totalSquaredDeviation(states []*sleeveState, buyer *sleeveState, price float64) float64 {
	sum := 0.0
	for _, state := range states {
		if state.isCash {
			continue
		}
		value := state.value
		if state == buyer {
			value += price
		}
		diff := value - state.target()
		sum += diff * diff
	}
	return sum
}

// greedyFill runs the second buy phase: while at least a dollar of ledger
// cash remains, execute the affordable one-share purchase that leaves the
// portfolio closest to its targets, and repeat until nothing is eligible.
// Purchases never push a sleeve above target; spending beyond target is
// the overinvestment deployer's job.
func greedyFill(states []*sleeveState, ledger *cashLedger, checker *RestrictionChecker) []Trade {
	var trades []Trade

	for ledger.total() >= minLedgerCash {
		candidate, ok := selectBestPurchase(states, ledger, checker, 0)
		if !ok {
			break
		}
		trades = append(trades, executePurchase(candidate, ledger))
	}

	return trades
}

// executePurchase books a one-share buy for the candidate and updates the
// ledger and sleeve value.
func executePurchase(c purchaseCandidate, ledger *cashLedger) Trade {
	trade := newBuyTrade(c.position, 1)
	trade.AccountID = c.accountID
	ledger.debit(c.accountID, c.position.Price)
	c.state.value += c.position.Price
	return trade
}

// sleeveAllocationRebalance is the sleeve-aware rebalance: sell overweight
// sleeves, seed each underweight sleeve's preferred security, then run the
// least-squared-deviation greedy fill. With allowOverinvestment set, any
// remaining cash is deployed beyond targets up to maxOverPct. A synthetic
// cash trade records the net over/under-buy.
func sleeveAllocationRebalance(req *Request, checker *RestrictionChecker) ([]Trade, error) {
	states, ledger := newSleeveStates(req.Sleeves, req.CashSleeveID)

	eligible := 0
	for _, state := range states {
		if state.eligible() {
			eligible++
		}
	}
	if eligible == 0 {
		return nil, newValidationError("sleeves", "no sleeve with a positive target percentage to rebalance")
	}

	trades := sellOverweightSleeves(states, ledger, checker)
	trades = append(trades, seedUnderweightSleeves(states, ledger, checker)...)
	trades = append(trades, greedyFill(states, ledger, checker)...)

	if req.AllowOverinvestment && ledger.total() >= minLedgerCash {
		trades = append(trades, deployOverinvestment(states, ledger, checker, req.MaxOverinvestmentPercent)...)
	}

	if cash := syntheticCashTrade(trades, states, ledger); cash != nil {
		trades = append(trades, *cash)
	}

	return ConsolidateTrades(trades), nil
}

// syntheticCashTrade converts the net traded value into an explicit cash
// trade so downstream consumers see the cash flow: net buying sells cash,
// net selling buys cash back.
func syntheticCashTrade(trades []Trade, states []*sleeveState, ledger *cashLedger) *Trade {
	net := 0.0
	for _, t := range trades {
		net += t.EstValue
	}
	if math.Abs(net) <= minTradeQty {
		return nil
	}

	accountID := ""
	for _, state := range states {
		if state.isCash && len(state.sleeve.Securities) > 0 {
			accountID = state.sleeve.Securities[0].AccountID
			break
		}
	}
	if accountID == "" && len(ledger.order) > 0 {
		accountID = ledger.order[0]
	}

	trade := &Trade{
		AccountID:  accountID,
		SecurityID: CashSecurityID,
		EstPrice:   1,
		Qty:        -net,
		EstValue:   -net,
	}
	if net > 0 {
		trade.Action = ActionSell
	} else {
		trade.Action = ActionBuy
	}
	return trade
}
