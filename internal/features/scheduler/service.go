package scheduler

import (
	"context"
	"fmt"

	"go-listings/internal/config"
	"go-listings/internal/features/retention"
	"go-listings/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type SchedulerService interface {
	InitializeScheduler(ctx context.Context) error
	StopScheduler() error
}

type SchedulerServiceImpl struct {
	syncService      sync.SyncService
	retentionService retention.RetentionService
	cfg              *config.Config
	logger           *zap.Logger

	scheduler *cron.Cron
}

func NewSchedulerService(
	syncService sync.SyncService,
	retentionService retention.RetentionService,
	cfg *config.Config,
	logger *zap.Logger,
) SchedulerService {
	return &SchedulerServiceImpl{
		syncService:      syncService,
		retentionService: retentionService,
		cfg:              cfg,
		logger:           logger,
	}
}

// InitializeScheduler registers the periodic sync-all sweep and the
// retention sweep and starts the cron runner.
func (s *SchedulerServiceImpl) InitializeScheduler(ctx context.Context) error {
	s.scheduler = cron.New()

	if _, err := s.scheduler.AddFunc(s.cfg.SyncSchedule, func() {
		results, err := s.syncService.RunAll(context.Background())
		if err != nil {
			s.logger.Error("scheduled sync sweep failed", zap.Error(err))
			return
		}
		s.logger.Info("scheduled sync sweep finished", zap.Int("runs", len(results)))
	}); err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", s.cfg.SyncSchedule, err)
	}

	if _, err := s.scheduler.AddFunc(s.cfg.SweepSchedule, func() {
		if err := s.retentionService.Sweep(context.Background()); err != nil {
			s.logger.Error("scheduled retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.cfg.SweepSchedule, err)
	}

	s.scheduler.Start()
	s.logger.Info("scheduler started",
		zap.String("sync_schedule", s.cfg.SyncSchedule),
		zap.String("sweep_schedule", s.cfg.SweepSchedule),
	)
	return nil
}

func (s *SchedulerServiceImpl) StopScheduler() error {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return nil
}
