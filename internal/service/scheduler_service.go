package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/cache"
	"github.com/popeskul/wa-inbox/internal/config"
	"github.com/popeskul/wa-inbox/internal/scheduler"
)

// schedulerService periodically drops cache entries that are past their stale retention.
type schedulerService struct {
	scheduler *scheduler.Scheduler
	caches    *cache.Service
	logger    *zap.Logger
}

func NewSchedulerService(
	cfg *config.Config,
	caches *cache.Service,
	logger *zap.Logger,
) SchedulerService {
	svc := &schedulerService{
		caches: caches,
		logger: logger,
	}

	svc.scheduler = scheduler.NewScheduler("cache-prune", logger, cfg.Cache.PruneInterval, svc.executePruneTask)
	return svc
}

func (s *schedulerService) Start() error {
	return s.scheduler.Start(context.Background())
}

func (s *schedulerService) Stop() error {
	return s.scheduler.Stop()
}

func (s *schedulerService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

func (s *schedulerService) LastRun() (time.Time, error) {
	return s.scheduler.LastRun()
}

func (s *schedulerService) executePruneTask(ctx context.Context) error {
	removed, err := s.caches.Prune(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.logger.Debug("Pruned stale cache entries", zap.Int("removed", removed))
	}
	return nil
}
