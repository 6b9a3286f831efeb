package rebalance

import "math"

// minTradeQty is the smallest absolute quantity a consolidated trade may
// carry; anything at or below it is dropped as noise.
const minTradeQty = 0.001

type tradeKey struct {
	securityID string
	accountID  string
	action     Action
}

// ConsolidateTrades merges trades for the same (security, account, action)
// into one, summing quantities and signed values and recomputing the price
// as |value/qty|. Merged trades keep the first-seen order. Trades whose
// consolidated |qty| <= 0.001 are dropped. Running the consolidator on its
// own output is a no-op.
func ConsolidateTrades(trades []Trade) []Trade {
	if len(trades) == 0 {
		return nil
	}

	merged := make(map[tradeKey]*Trade)
	order := make([]tradeKey, 0, len(trades))

	for _, t := range trades {
		key := tradeKey{securityID: t.SecurityID, accountID: t.AccountID, action: t.Action}
		if existing, ok := merged[key]; ok {
			existing.Qty += t.Qty
			existing.EstValue += t.EstValue
			continue
		}
		copied := t
		merged[key] = &copied
		order = append(order, key)
	}

	result := make([]Trade, 0, len(order))
	for _, key := range order {
		t := merged[key]
		if math.Abs(t.Qty) <= minTradeQty {
			continue
		}
		t.EstPrice = math.Abs(t.EstValue / t.Qty)
		result = append(result, *t)
	}

	return result
}
