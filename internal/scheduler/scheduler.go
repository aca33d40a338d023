package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arsya371/apologyhub/internal/logger"
	"github.com/arsya371/apologyhub/internal/ratelimit"
	"github.com/arsya371/apologyhub/internal/services"
)

const sweepTimeout = time.Minute

// Scheduler owns every recurring maintenance job: expiry sweeps for the
// block and allow lists, and memory reclamation for the in-process request
// ledger and submission limiter. All periodic work is registered here so it
// is visible and stoppable in one place.
type Scheduler struct {
	cron      *cron.Cron
	blocklist *services.BlocklistService
	allowlist *services.AllowlistService
	ledger    *ratelimit.Ledger
	limiter   *ratelimit.Limiter
}

func New(blocklist *services.BlocklistService, allowlist *services.AllowlistService, ledger *ratelimit.Ledger, limiter *ratelimit.Limiter) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		blocklist: blocklist,
		allowlist: allowlist,
		ledger:    ledger,
		limiter:   limiter,
	}
}

// Start registers and launches the maintenance jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.sweepExpired); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@every 5m", s.reclaimMemory); err != nil {
		return err
	}
	s.cron.Start()
	logger.Log().Info("maintenance scheduler started")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Log().Info("maintenance scheduler stopped")
}

func (s *Scheduler) sweepExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	blocksSwept, err := s.blocklist.SweepExpired(ctx)
	if err != nil {
		logger.Log().WithError(err).Error("blocklist expiry sweep failed")
	}

	allowsSwept, err := s.allowlist.SweepExpired()
	if err != nil {
		logger.Log().WithError(err).Error("allowlist expiry sweep failed")
	}

	if blocksSwept > 0 || allowsSwept > 0 {
		logger.WithFields(map[string]interface{}{
			"blocks_swept": blocksSwept,
			"allows_swept": allowsSwept,
		}).Info("expired list entries deactivated")
	}
}

func (s *Scheduler) reclaimMemory() {
	s.ledger.Prune()
	s.limiter.ClearExpired()
}
