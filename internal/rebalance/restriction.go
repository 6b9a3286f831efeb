package rebalance

import (
	"fmt"
	"time"
)

// washSaleWindow is how long after a sell a ticker stays buy-restricted
// when no explicit restriction record exists.
const washSaleWindow = 30 * 24 * time.Hour

// RestrictionChecker answers whether a ticker may currently be bought.
// It is derived once per rebalance call from the restriction list and
// recent transaction history and is read-only afterwards. Sells are never
// blocked by the checker.
type RestrictionChecker struct {
	restricted map[string]string // ticker -> reason
}

// NewRestrictionChecker builds a checker from explicit restriction records
// and recent sell transactions. A ticker is restricted when a restriction
// record's window is still open at now, or when the ticker was sold within
// the wash-sale window before now.
func NewRestrictionChecker(restrictions []WashSaleRestriction, transactions []TransactionRecord, now time.Time) *RestrictionChecker {
	c := &RestrictionChecker{restricted: make(map[string]string)}

	for _, r := range restrictions {
		if r.Ticker == "" {
			continue
		}
		if r.BlockedUntil.After(now) {
			c.restricted[r.Ticker] = fmt.Sprintf("wash-sale restricted until %s", r.BlockedUntil.Format("2006-01-02"))
		}
	}

	for _, t := range transactions {
		if t.Action != ActionSell || t.Ticker == "" {
			continue
		}
		if _, already := c.restricted[t.Ticker]; already {
			continue
		}
		if now.Sub(t.Date) < washSaleWindow && !t.Date.After(now) {
			c.restricted[t.Ticker] = fmt.Sprintf("sold on %s within wash-sale window", t.Date.Format("2006-01-02"))
		}
	}

	return c
}

// IsRestricted reports whether the ticker is buy-restricted, with the
// reason when it is.
func (c *RestrictionChecker) IsRestricted(ticker string) (bool, string) {
	reason, ok := c.restricted[ticker]
	return ok, reason
}

// RestrictedTickers returns the set of currently restricted tickers.
func (c *RestrictionChecker) RestrictedTickers() map[string]struct{} {
	set := make(map[string]struct{}, len(c.restricted))
	for ticker := range c.restricted {
		set[ticker] = struct{}{}
	}
	return set
}

// restrict marks an additional ticker as blocked. Used by the combined
// TLH-and-rebalance flow after harvesting sells.
func (c *RestrictionChecker) restrict(ticker, reason string) {
	if _, ok := c.restricted[ticker]; !ok {
		c.restricted[ticker] = reason
	}
}
