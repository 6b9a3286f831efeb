package service

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/model"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/repository"
)

// RestrictionService manages wash-sale restriction records: listing the
// active set, recording new ones, and sweeping expired windows.
type RestrictionService struct {
	restrictionRepo *repository.RestrictionRepository
}

// NewRestrictionService creates a new RestrictionService.
func NewRestrictionService(restrictionRepo *repository.RestrictionRepository) *RestrictionService {
	return &RestrictionService{restrictionRepo: restrictionRepo}
}

// GetActiveRestrictions returns restrictions whose window is still open.
func (s *RestrictionService) GetActiveRestrictions() ([]model.WashSaleRestriction, error) {
	return s.restrictionRepo.GetActive(time.Now())
}

// CreateRestriction records a new wash-sale restriction and returns it
// with its generated ID.
func (s *RestrictionService) CreateRestriction(ticker string, blockedUntil time.Time) (model.WashSaleRestriction, error) {
	restriction := model.WashSaleRestriction{
		ID:           uuid.New().String(),
		Ticker:       ticker,
		BlockedUntil: blockedUntil,
	}
	if err := s.restrictionRepo.CreateRestriction(restriction); err != nil {
		return model.WashSaleRestriction{}, err
	}
	return restriction, nil
}

// DeleteRestriction removes a restriction by ID.
func (s *RestrictionService) DeleteRestriction(id string) error {
	return s.restrictionRepo.DeleteRestriction(id)
}

// SweepExpired deletes every restriction whose window closed at or before
// now. Invoked by the scheduler; exposed for tests.
func (s *RestrictionService) SweepExpired(now time.Time) (int64, error) {
	swept, err := s.restrictionRepo.DeleteExpired(now)
	if err != nil {
		return 0, err
	}
	if swept > 0 {
		log.Printf("swept %d expired wash-sale restrictions", swept)
	}
	return swept, nil
}
