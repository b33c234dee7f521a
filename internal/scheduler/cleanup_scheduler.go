package scheduler

import (
	"time"

	"github.com/casarossa/casarossa-backend/internal/app/repository"
	"github.com/casarossa/casarossa-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Pending orders older than this were abandoned mid-checkout and never
// paid; they only ever clutter the admin export.
const staleOrderAge = 24 * time.Hour

// CleanupScheduler purges abandoned checkout attempts on a nightly cron.
type CleanupScheduler struct {
	cron      *cron.Cron
	orderRepo repository.OrderRepository
}

func NewCleanupScheduler(orderRepo repository.OrderRepository) *CleanupScheduler {
	return &CleanupScheduler{
		cron:      cron.New(),
		orderRepo: orderRepo,
	}
}

// Start schedules the nightly cleanup at 04:00 server time.
func (s *CleanupScheduler) Start() error {
	_, err := s.cron.AddFunc("0 4 * * *", s.runCleanup)
	if err != nil {
		logger.Error("Failed to add cron job for order cleanup", err, nil)
		return err
	}

	s.cron.Start()
	logger.Info("Cleanup scheduler started (daily at 4:00 AM)", nil)

	return nil
}

// Stop stops the scheduler.
func (s *CleanupScheduler) Stop() {
	logger.Info("Stopping cleanup scheduler", nil)
	s.cron.Stop()
}

func (s *CleanupScheduler) runCleanup() {
	logger.Info("Starting scheduled order cleanup", nil)

	removed, err := s.orderRepo.DeleteStalePending(time.Now().Add(-staleOrderAge))
	if err != nil {
		logger.Error("Failed to clean up stale pending orders", err, nil)
		return
	}

	logger.Info("Order cleanup finished", map[string]interface{}{
		"removed": removed,
	})
}
