package scheduler_test

import (
	"testing"

	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/scheduler"
	"github.com/rvanleeuwen/Sleeve-Rebalancer-Backend/internal/testutil"
)

// TestNew tests scheduler construction.
//
// WHY: A bad cron spec must fail at startup, not surface as a job that
// silently never runs.
func TestNew(t *testing.T) {
	t.Run("rejects an invalid cron spec", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRestrictionService(t, db)

		if _, err := scheduler.New(svc, "not a cron spec"); err == nil {
			t.Error("Expected error for invalid spec, got nil")
		}
	})

	t.Run("accepts a daily spec and starts cleanly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRestrictionService(t, db)

		s, err := scheduler.New(svc, "0 5 * * *")
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}

		s.Start()
		s.Stop()
	})
}
