package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ConnectionProber checks a candidate configuration against its endpoint.
// Implemented by the sync fetcher; wired through an fx adapter.
type ConnectionProber interface {
	Probe(ctx context.Context, cfg *Integration) (time.Duration, error)
}

// ProbeResult is the operator-facing outcome of a test-connection call.
type ProbeResult struct {
	OK        bool   `json:"ok"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type IntegrationService interface {
	Create(ctx context.Context, cfg *Integration) error
	Get(ctx context.Context, id string) (*Integration, error)
	List(ctx context.Context) ([]Integration, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	TestConnection(ctx context.Context, id string) (*ProbeResult, error)
}

type IntegrationServiceImpl struct {
	Repo   IntegrationRepository
	Prober ConnectionProber
}

func NewIntegrationService(repo IntegrationRepository, prober ConnectionProber) IntegrationService {
	return &IntegrationServiceImpl{
		Repo:   repo,
		Prober: prober,
	}
}

// ValidateMapping ensures all mandatory mapping keys are present. This is a
// configuration-level check run at save time, independent of any record.
func ValidateMapping(m FieldMapping) error {
	var missing []string
	for _, key := range RequiredMappingKeys {
		if path, ok := m.Fields[key]; !ok || strings.TrimSpace(path) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("mapping is missing mandatory keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

func validateConfig(cfg *Integration) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("base_url is required")
	}

	switch cfg.AuthType {
	case "", AuthNone:
		cfg.AuthType = AuthNone
	case AuthAPIKey, AuthBearer, AuthBasic:
		if cfg.AuthSecret == "" {
			return fmt.Errorf("auth_secret is required for auth type %q", cfg.AuthType)
		}
	default:
		return fmt.Errorf("unknown auth type %q", cfg.AuthType)
	}

	if err := ValidateMapping(cfg.Mapping); err != nil {
		return err
	}

	if cfg.Deletion.Enabled {
		switch cfg.Deletion.Strategy {
		case StrategySoftDelete:
			if cfg.Deletion.RetentionDays <= 0 {
				return fmt.Errorf("retention_days must be a positive integer for soft_delete")
			}
		case StrategyArchive, StrategyHardDelete:
		default:
			return fmt.Errorf("unknown deletion strategy %q", cfg.Deletion.Strategy)
		}
	}

	return nil
}

func (s *IntegrationServiceImpl) Create(ctx context.Context, cfg *Integration) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	return s.Repo.Create(ctx, cfg)
}

func (s *IntegrationServiceImpl) Get(ctx context.Context, id string) (*Integration, error) {
	return s.Repo.Get(ctx, id)
}

func (s *IntegrationServiceImpl) List(ctx context.Context) ([]Integration, error) {
	return s.Repo.List(ctx)
}

func (s *IntegrationServiceImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	current, err := s.Repo.Get(ctx, id)
	if err != nil {
		return err
	}

	// Validate the merged document before anything is written, so a
	// partial update cannot persist an invalid configuration.
	merged, err := applyUpdates(current, updates)
	if err != nil {
		return err
	}
	if err := validateConfig(merged); err != nil {
		return fmt.Errorf("update would leave configuration invalid: %w", err)
	}

	return s.Repo.Update(ctx, id, updates)
}

// applyUpdates merges a partial $set-style update into a copy of the
// stored document, matching what the store would persist.
func applyUpdates(current *Integration, updates map[string]interface{}) (*Integration, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	for key, value := range updates {
		doc[key] = value
	}

	raw, err = json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var merged Integration
	if err := json.Unmarshal(raw, &merged); err != nil {
		return nil, fmt.Errorf("invalid update payload: %w", err)
	}
	return &merged, nil
}

func (s *IntegrationServiceImpl) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *IntegrationServiceImpl) TestConnection(ctx context.Context, id string) (*ProbeResult, error) {
	cfg, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	latency, probeErr := s.Prober.Probe(ctx, cfg)
	result := &ProbeResult{
		OK:        probeErr == nil,
		LatencyMs: latency.Milliseconds(),
	}
	if probeErr != nil {
		result.Error = probeErr.Error()
	}
	return result, nil
}
