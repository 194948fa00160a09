package scheduler

import (
	"time"

	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const (
	// nightly at 03:00 server time
	ratingReconcileSpec = "0 3 * * *"
	cartCleanupSpec     = "@hourly"
)

type RatingReconciler interface {
	ReconcileRatings() (int, error)
}

type StaleCartCleaner interface {
	DeleteStaleCarts(before time.Time) (int64, error)
}

// MaintenanceScheduler runs the periodic upkeep jobs: rating reconciliation and abandoned-cart cleanup.
type MaintenanceScheduler struct {
	cron       *cron.Cron
	ratings    RatingReconciler
	carts      StaleCartCleaner
	cartMaxAge time.Duration
	now        func() time.Time
}

func NewMaintenanceScheduler(ratings RatingReconciler, carts StaleCartCleaner, cartMaxAge time.Duration) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:       cron.New(),
		ratings:    ratings,
		carts:      carts,
		cartMaxAge: cartMaxAge,
		now:        time.Now,
	}
}

func (s *MaintenanceScheduler) Start() error {
	if _, err := s.cron.AddFunc(ratingReconcileSpec, s.reconcileRatings); err != nil {
		logger.Error("Failed to add cron job for rating reconciliation", err)
		return err
	}
	if _, err := s.cron.AddFunc(cartCleanupSpec, s.cleanupCarts); err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"jobs":         len(s.cron.Entries()),
		"cart_max_age": s.cartMaxAge.String(),
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped", nil)
}

func (s *MaintenanceScheduler) reconcileRatings() {
	touched, err := s.ratings.ReconcileRatings()
	if err != nil {
		logger.Error("Scheduled rating reconciliation failed", err)
		return
	}
	logger.Info("Ratings reconciled", map[string]interface{}{
		"items": touched,
	})
}

func (s *MaintenanceScheduler) cleanupCarts() {
	cutoff := s.now().Add(-s.cartMaxAge)
	deleted, err := s.carts.DeleteStaleCarts(cutoff)
	if err != nil {
		logger.Error("Scheduled cart cleanup failed", err)
		return
	}
	if deleted > 0 {
		logger.Info("Abandoned carts removed", map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff,
		})
	}
}
