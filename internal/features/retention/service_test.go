package retention

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type stubIntegrationRepo struct {
	configs map[string]*integration.Integration
	active  []integration.Integration
	gets    []string
}

func (r *stubIntegrationRepo) Create(ctx context.Context, cfg *integration.Integration) error {
	return nil
}

func (r *stubIntegrationRepo) Get(ctx context.Context, id string) (*integration.Integration, error) {
	r.gets = append(r.gets, id)
	cfg, ok := r.configs[id]
	if !ok {
		return nil, fmt.Errorf("integration %s not found", id)
	}
	return cfg, nil
}

func (r *stubIntegrationRepo) List(ctx context.Context) ([]integration.Integration, error) {
	return r.active, nil
}

func (r *stubIntegrationRepo) ListActive(ctx context.Context) ([]integration.Integration, error) {
	return r.active, nil
}

func (r *stubIntegrationRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	return nil
}

func (r *stubIntegrationRepo) Delete(ctx context.Context, id string) error {
	return nil
}

type stubPropertyRepo struct {
	retirable []property.Property
	unseen    []property.Property

	markedIDs    []primitive.ObjectID
	markedReason string
	deletedIDs   []primitive.ObjectID
	markErr      error
}

func (r *stubPropertyRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *stubPropertyRepo) BulkUpsert(ctx context.Context, props []property.Property) error {
	return nil
}

func (r *stubPropertyRepo) Get(ctx context.Context, id string) (*property.Property, error) {
	return nil, errors.New("not implemented")
}

func (r *stubPropertyRepo) List(ctx context.Context, sourceID string, limit int64) ([]property.Property, error) {
	return nil, nil
}

func (r *stubPropertyRepo) ListRetirable(ctx context.Context, sourceID primitive.ObjectID, cutoff time.Time) ([]property.Property, error) {
	return r.retirable, nil
}

func (r *stubPropertyRepo) ListUnseenActive(ctx context.Context, sourceID primitive.ObjectID, seen []string) ([]property.Property, error) {
	return r.unseen, nil
}

func (r *stubPropertyRepo) MarkRetired(ctx context.Context, ids []primitive.ObjectID, reason string) (int64, error) {
	if r.markErr != nil {
		return 0, r.markErr
	}
	r.markedIDs = append(r.markedIDs, ids...)
	r.markedReason = reason
	return int64(len(ids)), nil
}

func (r *stubPropertyRepo) HardDelete(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	r.deletedIDs = append(r.deletedIDs, ids...)
	return int64(len(ids)), nil
}

func makeProps(n int) []property.Property {
	props := make([]property.Property, 0, n)
	for i := 0; i < n; i++ {
		props = append(props, property.Property{
			ID:         primitive.NewObjectID(),
			ExternalID: fmt.Sprintf("EXT-%d", i+1),
			Active:     true,
		})
	}
	return props
}

func newTestRetention(cfg *integration.Integration, propRepo *stubPropertyRepo) (*RetentionServiceImpl, *stubIntegrationRepo) {
	repo := &stubIntegrationRepo{
		configs: map[string]*integration.Integration{},
	}
	if cfg != nil {
		repo.configs[cfg.ID.Hex()] = cfg
		repo.active = []integration.Integration{*cfg}
	}
	return &RetentionServiceImpl{
		IntegrationRepo: repo,
		PropertyRepo:    propRepo,
		Logger:          zap.NewNop(),
	}, repo
}

func TestRetireRejectsNonPositiveWindow(t *testing.T) {
	svc, _ := newTestRetention(nil, &stubPropertyRepo{})

	for _, days := range []int{0, -5} {
		if _, err := svc.Retire(context.Background(), primitive.NewObjectID().Hex(), days); err == nil {
			t.Errorf("Retire with %d days should fail", days)
		}
	}
}

func TestRetireSoftDeleteDefault(t *testing.T) {
	cfg := &integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true},
	}
	propRepo := &stubPropertyRepo{retirable: makeProps(2)}
	svc, _ := newTestRetention(cfg, propRepo)

	summary, err := svc.Retire(context.Background(), cfg.ID.Hex(), 30)
	if err != nil {
		t.Fatalf("Retire returned error: %v", err)
	}
	if summary.Affected != 2 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want 2 affected, 0 errors", summary)
	}
	if len(propRepo.markedIDs) != 2 {
		t.Errorf("marked %d records, want 2", len(propRepo.markedIDs))
	}
	if propRepo.markedReason != ReasonAged {
		t.Errorf("reason = %q, want %q", propRepo.markedReason, ReasonAged)
	}
	if len(propRepo.deletedIDs) != 0 {
		t.Errorf("hard deleted %d records, want 0", len(propRepo.deletedIDs))
	}
}

func TestRetireNothingToDo(t *testing.T) {
	cfg := &integration.Integration{ID: primitive.NewObjectID()}
	propRepo := &stubPropertyRepo{}
	svc, _ := newTestRetention(cfg, propRepo)

	summary, err := svc.Retire(context.Background(), cfg.ID.Hex(), 30)
	if err != nil {
		t.Fatalf("Retire returned error: %v", err)
	}
	if summary.Affected != 0 || summary.Errors != 0 {
		t.Errorf("summary = %+v, want all zero", summary)
	}
}

func TestRetireUnseenHardDelete(t *testing.T) {
	cfg := &integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true, Strategy: integration.StrategyHardDelete},
	}
	propRepo := &stubPropertyRepo{unseen: makeProps(3)}
	svc, _ := newTestRetention(cfg, propRepo)

	affected, externalIDs, err := svc.RetireUnseen(context.Background(), cfg, []string{"EXT-KEPT"})
	if err != nil {
		t.Fatalf("RetireUnseen returned error: %v", err)
	}
	if affected != 3 {
		t.Errorf("affected = %d, want 3", affected)
	}
	if len(externalIDs) != 3 || externalIDs[0] != "EXT-1" {
		t.Errorf("external ids = %v, want the retired refs", externalIDs)
	}
	if len(propRepo.deletedIDs) != 3 {
		t.Errorf("hard deleted %d records, want 3", len(propRepo.deletedIDs))
	}
	if len(propRepo.markedIDs) != 0 {
		t.Errorf("marked %d records, want 0 under hard delete", len(propRepo.markedIDs))
	}
}

func TestRetireUnseenArchiveWithoutSinkMarksRetired(t *testing.T) {
	cfg := &integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true, Strategy: integration.StrategyArchive},
	}
	propRepo := &stubPropertyRepo{unseen: makeProps(1)}
	svc, _ := newTestRetention(cfg, propRepo)

	affected, _, err := svc.RetireUnseen(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("RetireUnseen returned error: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
	if propRepo.markedReason != ReasonArchived {
		t.Errorf("reason = %q, want %q", propRepo.markedReason, ReasonArchived)
	}
	if len(propRepo.deletedIDs) != 0 {
		t.Errorf("hard deleted %d records, want 0 under archive", len(propRepo.deletedIDs))
	}
}

func TestRetireUnseenReportsRepoFailure(t *testing.T) {
	cfg := &integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true, Strategy: integration.StrategySoftDelete},
	}
	propRepo := &stubPropertyRepo{unseen: makeProps(2), markErr: errors.New("write failed")}
	svc, _ := newTestRetention(cfg, propRepo)

	if _, _, err := svc.RetireUnseen(context.Background(), cfg, nil); err == nil {
		t.Fatal("RetireUnseen should surface the repository failure")
	}
}

func TestSweepSkipsUnconfiguredSources(t *testing.T) {
	withWindow := integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true, Strategy: integration.StrategySoftDelete, RetentionDays: 30},
	}
	disabled := integration.Integration{
		ID: primitive.NewObjectID(),
	}
	noWindow := integration.Integration{
		ID:       primitive.NewObjectID(),
		Deletion: integration.DeletionPolicy{Enabled: true, Strategy: integration.StrategyHardDelete},
	}

	repo := &stubIntegrationRepo{
		configs: map[string]*integration.Integration{
			withWindow.ID.Hex(): &withWindow,
		},
		active: []integration.Integration{withWindow, disabled, noWindow},
	}
	svc := &RetentionServiceImpl{
		IntegrationRepo: repo,
		PropertyRepo:    &stubPropertyRepo{},
		Logger:          zap.NewNop(),
	}

	if err := svc.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(repo.gets) != 1 || repo.gets[0] != withWindow.ID.Hex() {
		t.Errorf("Sweep retired %v, want only the source with a retention window", repo.gets)
	}
}
