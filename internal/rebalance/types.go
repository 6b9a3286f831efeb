// Package rebalance implements the portfolio rebalancing and
// tax-loss-harvesting trade-generation engine.
//
// Every computation is a single synchronous pass over caller-supplied
// in-memory input producing a Result value. The engine holds no cross-call
// state, so one Engine may be shared by concurrent request handlers as long
// as each call receives its own input snapshot.
package rebalance

import "time"

// Method selects which trade-generation strategy a rebalance call runs.
type Method string

// Supported rebalance methods.
const (
	MethodAllocation   Method = "allocation"
	MethodTLHSwap      Method = "tlhSwap"
	MethodTLHRebalance Method = "tlhRebalance"
	MethodInvestCash   Method = "investCash"
)

// Action describes the direction of a trade.
type Action string

// Trade actions.
const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// DefaultRank is assigned to securities without an explicit sleeve rank.
// Lower rank means preferred for new purchases.
const DefaultRank = 999

// CashSecurityID is the synthetic security used to represent cash flow in
// the returned trade list.
const CashSecurityID = "$CASH"

// SecurityPosition is one holding inside a sleeve at the moment of a
// rebalance call. Quantities may be fractional. UnrealizedGain is nil when
// the caller has no cost-basis information for the position.
type SecurityPosition struct {
	SecurityID     string   `json:"securityId"`
	AccountID      string   `json:"accountId"`
	CurrentQty     float64  `json:"currentQty"`
	TargetPct      float64  `json:"targetPct"`
	Price          float64  `json:"price"`
	IsTaxable      bool     `json:"isTaxable"`
	UnrealizedGain *float64 `json:"unrealizedGain,omitempty"`
	Rank           int      `json:"rank"`
	IsLegacy       bool     `json:"isLegacy"`
}

// MarketValue returns the position's current market value.
func (p SecurityPosition) MarketValue() float64 {
	return p.CurrentQty * p.Price
}

// SleeveAllocation is a named group of interchangeable securities together
// with its target and current valuation. TargetValue is supplied by the
// caller as targetPct/100 of portfolio value at call time.
type SleeveAllocation struct {
	SleeveID     string             `json:"sleeveId"`
	Name         string             `json:"name"`
	TargetValue  float64            `json:"targetValue"`
	TargetPct    float64            `json:"targetPct"`
	CurrentValue float64            `json:"currentValue"`
	Securities   []SecurityPosition `json:"securities"`
}

// Trade is one buy or sell instruction. Qty is signed: negative for sells,
// positive for buys. EstValue is always Qty * EstPrice.
type Trade struct {
	AccountID  string  `json:"accountId"`
	SecurityID string  `json:"securityId"`
	Action     Action  `json:"action"`
	Qty        float64 `json:"qty"`
	EstPrice   float64 `json:"estPrice"`
	EstValue   float64 `json:"estValue"`
}

// WashSaleRestriction blocks purchases of a ticker until the given time.
type WashSaleRestriction struct {
	Ticker       string    `json:"ticker"`
	BlockedUntil time.Time `json:"blockedUntil"`
}

// SecurityReplacement maps a ticker to its approved tax-loss-harvesting
// replacement.
type SecurityReplacement struct {
	OriginalTicker    string `json:"originalTicker"`
	ReplacementTicker string `json:"replacementTicker"`
}

// TransactionRecord is a prior portfolio transaction, used to derive
// wash-sale restrictions from recent sells.
type TransactionRecord struct {
	Ticker string    `json:"ticker"`
	Action Action    `json:"action"`
	Date   time.Time `json:"date"`
}

// HoldingPost is the resulting quantity of one security after applying the
// generated trades. Holdings whose quantity reaches zero are dropped.
type HoldingPost struct {
	SecurityID string  `json:"securityId"`
	Qty        float64 `json:"qty"`
}

// SleeveSummary aggregates the trades and resulting weight of one sleeve.
type SleeveSummary struct {
	SleeveID string  `json:"sleeveId"`
	TradeQty float64 `json:"tradeQty"`
	TradeUSD float64 `json:"tradeUsd"`
	PostPct  float64 `json:"postPct"`
}

// Request carries every input of one rebalance invocation. All slices are
// snapshots owned by the call; the engine never mutates or retains them.
type Request struct {
	PortfolioID              string
	Method                   Method
	Sleeves                  []SleeveAllocation
	Restrictions             []WashSaleRestriction
	Replacements             []SecurityReplacement
	Transactions             []TransactionRecord
	AllowOverinvestment      bool
	MaxOverinvestmentPercent float64

	// CashAmount is the fresh cash to deploy for MethodInvestCash. It must
	// be set for that method and is ignored by every other method.
	CashAmount *float64

	// CashSleeveID designates the sleeve whose positions seed the cash
	// ledger. When empty, a sleeve named "Cash" (case-insensitive) is used.
	CashSleeveID string

	// Prices supplies quotes for securities not currently held, such as
	// TLH replacement candidates. Position prices take precedence.
	Prices map[string]float64

	// Now anchors restriction-window checks. The zero value means
	// time.Now().
	Now time.Time
}

// Result is the outcome of one rebalance invocation.
type Result struct {
	Trades       []Trade         `json:"trades"`
	PostHoldings []HoldingPost   `json:"postHoldings"`
	Sleeves      []SleeveSummary `json:"sleeves"`
}
