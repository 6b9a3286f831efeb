package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/rebalance"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
)

// transactionLookback is how far back transaction history is loaded when
// deriving wash-sale restrictions. One day beyond the wash-sale window so
// boundary sells are included.
const transactionLookback = 31 * 24 * time.Hour

// RebalanceService assembles engine input from the stored portfolio data
// and runs rebalance previews. It persists nothing: trades are returned
// for review and handed to the order-submission layer by the caller.
type RebalanceService struct {
	portfolioRepo   *repository.PortfolioRepository
	sleeveRepo      *repository.SleeveRepository
	positionRepo    *repository.PositionRepository
	restrictionRepo *repository.RestrictionRepository
	replacementRepo *repository.ReplacementRepository
	transactionRepo *repository.TransactionRepository
	engine          *rebalance.Engine

	defaultMaxOverPct float64
}

// NewRebalanceService creates a new RebalanceService with the provided
// repository dependencies and engine.
func NewRebalanceService(
	portfolioRepo *repository.PortfolioRepository,
	sleeveRepo *repository.SleeveRepository,
	positionRepo *repository.PositionRepository,
	restrictionRepo *repository.RestrictionRepository,
	replacementRepo *repository.ReplacementRepository,
	transactionRepo *repository.TransactionRepository,
	engine *rebalance.Engine,
	defaultMaxOverPct float64,
) *RebalanceService {
	return &RebalanceService{
		portfolioRepo:     portfolioRepo,
		sleeveRepo:        sleeveRepo,
		positionRepo:      positionRepo,
		restrictionRepo:   restrictionRepo,
		replacementRepo:   replacementRepo,
		transactionRepo:   transactionRepo,
		engine:            engine,
		defaultMaxOverPct: defaultMaxOverPct,
	}
}

// PreviewOptions carries the per-call knobs of a rebalance preview.
type PreviewOptions struct {
	Method                   rebalance.Method
	AllowOverinvestment      bool
	MaxOverinvestmentPercent *float64
	CashAmount               *float64
}

// PortfolioPreview pairs a portfolio with its preview result, or with the
// error that portfolio produced.
type PortfolioPreview struct {
	PortfolioID string            `json:"portfolioId"`
	Name        string            `json:"name"`
	Result      *rebalance.Result `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// Preview runs one rebalance computation for a portfolio over a fresh
// snapshot of its stored sleeves, positions, restrictions, replacements,
// and recent transactions.
func (s *RebalanceService) Preview(portfolioID string, opts PreviewOptions) (*rebalance.Result, error) {
	req, err := s.buildRequest(portfolioID, opts)
	if err != nil {
		return nil, err
	}
	return s.engine.Rebalance(*req)
}

// PreviewAll runs previews for every active portfolio concurrently. The
// engine is pure and every call gets its own snapshot, so one goroutine
// per portfolio is safe. Per-portfolio failures are reported in the
// result instead of aborting the batch.
func (s *RebalanceService) PreviewAll(ctx context.Context, opts PreviewOptions) ([]PortfolioPreview, error) {
	portfolios, err := s.portfolioRepo.GetPortfolios(false)
	if err != nil {
		return nil, err
	}

	previews := make([]PortfolioPreview, len(portfolios))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range portfolios {
		g.Go(func() error {
			previews[i] = PortfolioPreview{PortfolioID: p.ID, Name: p.Name}
			result, err := s.Preview(p.ID, opts)
			if err != nil {
				previews[i].Error = err.Error()
				return nil
			}
			previews[i].Result = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return previews, nil
}

// buildRequest loads the portfolio's stored state and shapes it into one
// engine request. Sleeve target values are derived from target percentage
// and total portfolio value at call time.
func (s *RebalanceService) buildRequest(portfolioID string, opts PreviewOptions) (*rebalance.Request, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	sleeves, err := s.sleeveRepo.GetSleevesByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	positionsBySecurity, err := s.positionRepo.GetPositionsByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	prices, err := s.positionRepo.GetPrices()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	restrictions, err := s.restrictionRepo.GetActive(now)
	if err != nil {
		return nil, err
	}
	replacements, err := s.replacementRepo.GetReplacements()
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetRecentTransactions(portfolioID, now.Add(-transactionLookback))
	if err != nil {
		return nil, err
	}

	defaultAccount := firstAccount(positionsBySecurity)
	allocations := make([]rebalance.SleeveAllocation, 0, len(sleeves))
	cashSleeveID := ""
	portfolioValue := 0.0

	for _, sleeve := range sleeves {
		allocation := rebalance.SleeveAllocation{
			SleeveID:  sleeve.ID,
			Name:      sleeve.Name,
			TargetPct: sleeve.TargetPct,
		}
		if sleeve.IsCash {
			cashSleeveID = sleeve.ID
		}

		for _, sec := range sleeve.Securities {
			held := positionsBySecurity[sec.SecurityID]
			if len(held) == 0 {
				// Purchasable but not yet held: zero-quantity position
				// priced from the latest known quote.
				allocation.Securities = append(allocation.Securities, rebalance.SecurityPosition{
					SecurityID: sec.SecurityID,
					AccountID:  defaultAccount,
					TargetPct:  sec.TargetPct,
					Price:      prices[sec.SecurityID],
					Rank:       sec.Rank,
					IsLegacy:   sec.IsLegacy,
				})
				continue
			}
			for _, p := range held {
				allocation.Securities = append(allocation.Securities, rebalance.SecurityPosition{
					SecurityID:     p.SecurityID,
					AccountID:      p.AccountID,
					CurrentQty:     p.Qty,
					TargetPct:      sec.TargetPct,
					Price:          p.Price,
					IsTaxable:      p.IsTaxable,
					UnrealizedGain: p.UnrealizedGain,
					Rank:           sec.Rank,
					IsLegacy:       sec.IsLegacy,
				})
				allocation.CurrentValue += p.MarketValue()
			}
		}

		portfolioValue += allocation.CurrentValue
		allocations = append(allocations, allocation)
	}
	for i := range allocations {
		allocations[i].TargetValue = allocations[i].TargetPct / 100 * portfolioValue
	}

	maxOverPct := s.defaultMaxOverPct
	if opts.MaxOverinvestmentPercent != nil {
		maxOverPct = *opts.MaxOverinvestmentPercent
	}

	return &rebalance.Request{
		PortfolioID:              portfolioID,
		Method:                   opts.Method,
		Sleeves:                  allocations,
		Restrictions:             toEngineRestrictions(restrictions),
		Replacements:             toEngineReplacements(replacements),
		Transactions:             toEngineTransactions(transactions),
		AllowOverinvestment:      opts.AllowOverinvestment,
		MaxOverinvestmentPercent: maxOverPct,
		CashAmount:               opts.CashAmount,
		CashSleeveID:             cashSleeveID,
		Prices:                   prices,
		Now:                      now,
	}, nil
}

func firstAccount(positionsBySecurity map[string][]model.Position) string {
	account := ""
	for _, positions := range positionsBySecurity {
		for _, p := range positions {
			if account == "" || p.AccountID < account {
				account = p.AccountID
			}
		}
	}
	if account == "" {
		account = "default"
	}
	return account
}

func toEngineRestrictions(restrictions []model.WashSaleRestriction) []rebalance.WashSaleRestriction {
	out := make([]rebalance.WashSaleRestriction, len(restrictions))
	for i, r := range restrictions {
		out[i] = rebalance.WashSaleRestriction{Ticker: r.Ticker, BlockedUntil: r.BlockedUntil}
	}
	return out
}

func toEngineReplacements(replacements []model.SecurityReplacement) []rebalance.SecurityReplacement {
	out := make([]rebalance.SecurityReplacement, len(replacements))
	for i, r := range replacements {
		out[i] = rebalance.SecurityReplacement{
			OriginalTicker:    r.OriginalTicker,
			ReplacementTicker: r.ReplacementTicker,
		}
	}
	return out
}

func toEngineTransactions(transactions []model.Transaction) []rebalance.TransactionRecord {
	out := make([]rebalance.TransactionRecord, len(transactions))
	for i, t := range transactions {
		out[i] = rebalance.TransactionRecord{
			Ticker: t.Ticker,
			Action: rebalance.Action(t.Type),
			Date:   t.Date,
		}
	}
	return out
}
