package service

import (
	"github.com/google/uuid"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
)

// SleeveService handles sleeve and sleeve-security management.
type SleeveService struct {
	sleeveRepo    *repository.SleeveRepository
	portfolioRepo *repository.PortfolioRepository
}

// NewSleeveService creates a new SleeveService.
func NewSleeveService(sleeveRepo *repository.SleeveRepository, portfolioRepo *repository.PortfolioRepository) *SleeveService {
	return &SleeveService{sleeveRepo: sleeveRepo, portfolioRepo: portfolioRepo}
}

// GetSleeves returns a portfolio's sleeves with their security
// assignments. The portfolio must exist.
func (s *SleeveService) GetSleeves(portfolioID string) ([]model.SleeveWithSecurities, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}
	return s.sleeveRepo.GetSleevesByPortfolio(portfolioID)
}

// CreateSleeve creates a sleeve for a portfolio and returns it with its
// generated ID.
func (s *SleeveService) CreateSleeve(portfolioID, name string, targetPct float64, isCash bool) (model.Sleeve, error) {
	if _, err := s.portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return model.Sleeve{}, err
	}

	sleeve := model.Sleeve{
		ID:          uuid.New().String(),
		PortfolioID: portfolioID,
		Name:        name,
		TargetPct:   targetPct,
		IsCash:      isCash,
	}
	if err := s.sleeveRepo.CreateSleeve(sleeve); err != nil {
		return model.Sleeve{}, err
	}
	return sleeve, nil
}

// SetSleeveSecurity adds a security to a sleeve or updates its rank,
// target percentage, and legacy flag. The sleeve must exist.
func (s *SleeveService) SetSleeveSecurity(sleeveID, securityID string, rank int, targetPct float64, isLegacy bool) (model.SleeveSecurity, error) {
	if _, err := s.sleeveRepo.GetSleeve(sleeveID); err != nil {
		return model.SleeveSecurity{}, err
	}

	sec := model.SleeveSecurity{
		ID:         uuid.New().String(),
		SleeveID:   sleeveID,
		SecurityID: securityID,
		Rank:       rank,
		TargetPct:  targetPct,
		IsLegacy:   isLegacy,
	}
	if err := s.sleeveRepo.UpsertSleeveSecurity(sec); err != nil {
		return model.SleeveSecurity{}, err
	}
	return sec, nil
}
