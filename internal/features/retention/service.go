package retention

import (
	"context"
	"fmt"
	"time"

	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	ReasonAged     = "retention window exceeded"
	ReasonUnseen   = "absent from feed"
	ReasonArchived = "archived"
)

// RetireSummary reports one maintenance invocation.
type RetireSummary struct {
	Affected int `json:"affected"`
	Errors   int `json:"errors"`
}

type RetentionService interface {
	// Retire applies the source's deletion strategy to active records whose
	// last sync is older than the cutoff. Explicit maintenance operation,
	// separate from any feed diff.
	Retire(ctx context.Context, sourceID string, olderThanDays int) (*RetireSummary, error)

	// RetireUnseen applies the strategy to active records of the source
	// that were not seen in the current full pull.
	RetireUnseen(ctx context.Context, cfg *integration.Integration, seenExternalIDs []string) (int, []string, error)

	// Sweep runs age-based retirement for every active integration with a
	// deletion policy and a retention window configured.
	Sweep(ctx context.Context) error
}

type RetentionServiceImpl struct {
	IntegrationRepo integration.IntegrationRepository
	PropertyRepo    property.PropertyRepository
	Archiver        *Archiver
	Logger          *zap.Logger
}

func NewRetentionService(
	integrationRepo integration.IntegrationRepository,
	propertyRepo property.PropertyRepository,
	archiver *Archiver,
	logger *zap.Logger,
) RetentionService {
	return &RetentionServiceImpl{
		IntegrationRepo: integrationRepo,
		PropertyRepo:    propertyRepo,
		Archiver:        archiver,
		Logger:          logger,
	}
}

func (s *RetentionServiceImpl) Retire(ctx context.Context, sourceID string, olderThanDays int) (*RetireSummary, error) {
	if olderThanDays <= 0 {
		return nil, fmt.Errorf("older_than_days must be a positive integer")
	}

	cfg, err := s.IntegrationRepo.Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	props, err := s.PropertyRepo.ListRetirable(ctx, cfg.ID, cutoff)
	if err != nil {
		return nil, err
	}

	affected, _, err := s.applyStrategy(ctx, cfg, props, ReasonAged)
	if err != nil {
		return nil, err
	}

	summary := &RetireSummary{
		Affected: affected,
		Errors:   len(props) - affected,
	}

	s.Logger.Info("retention pass finished",
		zap.String("integration", cfg.ID.Hex()),
		zap.Int("affected", summary.Affected),
		zap.Int("errors", summary.Errors),
	)

	return summary, nil
}

func (s *RetentionServiceImpl) RetireUnseen(ctx context.Context, cfg *integration.Integration, seenExternalIDs []string) (int, []string, error) {
	props, err := s.PropertyRepo.ListUnseenActive(ctx, cfg.ID, seenExternalIDs)
	if err != nil {
		return 0, nil, err
	}

	affected, externalIDs, err := s.applyStrategy(ctx, cfg, props, ReasonUnseen)
	return affected, externalIDs, err
}

func (s *RetentionServiceImpl) Sweep(ctx context.Context) error {
	configs, err := s.IntegrationRepo.ListActive(ctx)
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		if !cfg.Deletion.Enabled || cfg.Deletion.RetentionDays <= 0 {
			continue
		}

		if _, err := s.Retire(ctx, cfg.ID.Hex(), cfg.Deletion.RetentionDays); err != nil {
			s.Logger.Error("retention sweep failed for integration",
				zap.String("integration", cfg.ID.Hex()),
				zap.Error(err),
			)
		}
	}

	return nil
}

// applyStrategy retires the given records using the integration's
// configured strategy; soft delete is the default when none is set.
func (s *RetentionServiceImpl) applyStrategy(ctx context.Context, cfg *integration.Integration, props []property.Property, reason string) (int, []string, error) {
	if len(props) == 0 {
		return 0, nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(props))
	externalIDs := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
		externalIDs = append(externalIDs, p.ExternalID)
	}

	strategy := cfg.Deletion.Strategy
	if strategy == "" {
		strategy = integration.StrategySoftDelete
	}

	switch strategy {
	case integration.StrategyHardDelete:
		deleted, err := s.PropertyRepo.HardDelete(ctx, ids)
		if err != nil {
			return 0, nil, err
		}
		return int(deleted), externalIDs, nil

	case integration.StrategyArchive:
		if s.Archiver != nil && s.Archiver.Enabled() {
			if err := s.Archiver.Archive(ctx, props); err != nil {
				return 0, nil, err
			}
		}
		modified, err := s.PropertyRepo.MarkRetired(ctx, ids, ReasonArchived)
		if err != nil {
			return 0, nil, err
		}
		return int(modified), externalIDs, nil

	default: // soft delete
		modified, err := s.PropertyRepo.MarkRetired(ctx, ids, reason)
		if err != nil {
			return 0, nil, err
		}
		return int(modified), externalIDs, nil
	}
}
