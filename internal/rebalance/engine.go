package rebalance

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/apperrors"
)

// RoundingPrecision controls monetary rounding in derived output values
// (two decimal places).
const RoundingPrecision = 100.0

// round rounds a value to two decimal places, matching the precision used
// for all monetary output fields.
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}

// newValidationError is shorthand for a single-field validation failure.
func newValidationError(field, msg string) error {
	return apperrors.NewValidationError(field, msg)
}

// Engine is the rebalance orchestrator. It validates input, dispatches to
// the method-specific trade generator, and derives post-trade holdings and
// per-sleeve summaries. An Engine is stateless apart from its logger and
// safe for concurrent use.
type Engine struct {
	logger *log.Logger
}

// NewEngine creates an Engine logging diagnostics to the given logger.
// A nil logger falls back to the default logger.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{logger: logger}
}

// Rebalance runs one full trade-generation pass. Validation failures
// return *apperrors.ValidationError; any other failure is wrapped in
// *apperrors.RebalanceError carrying the portfolio id.
func (e *Engine) Rebalance(req Request) (result *Result, err error) {
	if err := e.validate(&req); err != nil {
		e.logError(&req, err)
		return nil, err
	}

	if req.Now.IsZero() {
		req.Now = time.Now()
	}

	// The engine is pure computation; a panic here is a defect, surfaced
	// to the caller as a domain error rather than a crashed handler.
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewRebalanceError(req.PortfolioID, fmt.Errorf("panic: %v", r))
			e.logError(&req, err)
			result = nil
		}
	}()

	cash := 0.0
	if req.CashAmount != nil {
		cash = *req.CashAmount
	}
	e.logger.Printf("rebalance start portfolio=%s method=%s sleeves=%d cash=%.2f",
		req.PortfolioID, req.Method, len(req.Sleeves), cash)

	checker := NewRestrictionChecker(req.Restrictions, req.Transactions, req.Now)

	var trades []Trade
	switch req.Method {
	case MethodAllocation:
		trades, err = sleeveAllocationRebalance(&req, checker)
		if err != nil {
			e.logError(&req, err)
			return nil, err
		}
	case MethodTLHSwap:
		positions := flattenPositions(req.Sleeves)
		trades = tlhSwap(positions, req.Replacements, buildPriceTable(positions, req.Prices), checker)
	case MethodTLHRebalance:
		trades = tlhAndRebalance(&req, checker)
	case MethodInvestCash:
		trades = investCash(&req, checker, *req.CashAmount)
	}

	result = &Result{
		Trades:       trades,
		PostHoldings: postHoldings(req.Sleeves, trades),
		Sleeves:      sleeveSummaries(req.Sleeves, trades, req.CashSleeveID),
	}
	e.logger.Printf("rebalance done portfolio=%s method=%s trades=%d",
		req.PortfolioID, req.Method, len(trades))
	return result, nil
}

func (e *Engine) validate(req *Request) error {
	fields := make(map[string]string)

	if req.PortfolioID == "" {
		fields["portfolioId"] = "portfolio ID is required"
	}
	if len(req.Sleeves) == 0 {
		fields["sleeves"] = "at least one sleeve is required"
	}
	if req.MaxOverinvestmentPercent < 0 || req.MaxOverinvestmentPercent > 100 {
		fields["maxOverinvestmentPercent"] = "must be between 0 and 100"
	}

	switch req.Method {
	case MethodAllocation, MethodTLHSwap, MethodTLHRebalance:
	case MethodInvestCash:
		if req.CashAmount == nil {
			fields["cashAmount"] = "cash amount is required for investCash"
		} else if *req.CashAmount < 0 {
			fields["cashAmount"] = "cash amount cannot be negative"
		}
	default:
		fields["method"] = fmt.Sprintf("unknown method %q", req.Method)
	}

	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}

func (e *Engine) logError(req *Request, err error) {
	e.logger.Printf("rebalance error portfolio=%s method=%s sleeves=%d: %v",
		req.PortfolioID, req.Method, len(req.Sleeves), err)
}

// postHoldings applies the signed trade quantities to the starting
// positions and returns the resulting per-security quantities, dropping
// holdings that end at or below zero. First-seen security order is kept.
func postHoldings(sleeves []SleeveAllocation, trades []Trade) []HoldingPost {
	qty := make(map[string]float64)
	var order []string

	record := func(securityID string, amount float64) {
		if _, ok := qty[securityID]; !ok {
			order = append(order, securityID)
		}
		qty[securityID] += amount
	}

	for _, sleeve := range sleeves {
		for _, p := range sleeve.Securities {
			record(p.SecurityID, p.CurrentQty)
		}
	}
	for _, t := range trades {
		record(t.SecurityID, t.Qty)
	}

	holdings := make([]HoldingPost, 0, len(order))
	for _, securityID := range order {
		if qty[securityID] <= 0 {
			continue
		}
		holdings = append(holdings, HoldingPost{SecurityID: securityID, Qty: qty[securityID]})
	}
	return holdings
}

// sleeveSummaries derives per-sleeve net traded quantity and value plus
// each sleeve's percentage of total post-trade value. The synthetic cash
// trade is attributed to the cash sleeve.
func sleeveSummaries(sleeves []SleeveAllocation, trades []Trade, cashSleeveID string) []SleeveSummary {
	states, _ := newSleeveStates(sleeves, cashSleeveID)

	// Membership: first sleeve claiming a security wins.
	sleeveOf := make(map[string]int)
	for i, state := range states {
		for _, p := range state.sleeve.Securities {
			if _, ok := sleeveOf[p.SecurityID]; !ok {
				sleeveOf[p.SecurityID] = i
			}
		}
		if state.isCash {
			if _, ok := sleeveOf[CashSecurityID]; !ok {
				sleeveOf[CashSecurityID] = i
			}
		}
	}

	summaries := make([]SleeveSummary, len(states))
	postValue := make([]float64, len(states))
	for i, state := range states {
		summaries[i].SleeveID = state.sleeve.SleeveID
		postValue[i] = state.sleeve.CurrentValue
	}

	for _, t := range trades {
		i, ok := sleeveOf[t.SecurityID]
		if !ok {
			continue
		}
		summaries[i].TradeQty += t.Qty
		summaries[i].TradeUSD += t.EstValue
		postValue[i] += t.EstValue
	}

	total := 0.0
	for _, v := range postValue {
		total += v
	}
	for i := range summaries {
		summaries[i].TradeQty = round(summaries[i].TradeQty)
		summaries[i].TradeUSD = round(summaries[i].TradeUSD)
		if total > 0 {
			summaries[i].PostPct = round(postValue[i] / total * 100)
		}
	}
	return summaries
}
