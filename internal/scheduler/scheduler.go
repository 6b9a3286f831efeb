// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/service"
)

// Scheduler owns the cron runner for background maintenance. Currently a
// single job: sweeping expired wash-sale restrictions.
type Scheduler struct {
	cron               *cron.Cron
	restrictionService *service.RestrictionService
}

// New creates a Scheduler with the restriction sweep registered at the
// given cron spec (e.g. "0 5 * * *" for daily at 05:00).
func New(restrictionService *service.RestrictionService, sweepSpec string) (*Scheduler, error) {
	s := &Scheduler{
		cron:               cron.New(),
		restrictionService: restrictionService,
	}

	if _, err := s.cron.AddFunc(sweepSpec, s.sweepRestrictions); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins running scheduled jobs in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) sweepRestrictions() {
	if _, err := s.restrictionService.SweepExpired(time.Now()); err != nil {
		log.Printf("restriction sweep failed: %v", err)
	}
}
