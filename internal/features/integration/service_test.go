package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fullMapping() FieldMapping {
	return FieldMapping{
		Fields: map[string]string{
			"external_id":   "ref",
			"city":          "loc.city",
			"neighborhood":  "loc.district",
			"price":         "pricing.value",
			"property_type": "kind",
			"deal_type":     "deal",
			"sector":        "sector",
		},
	}
}

func TestValidateMapping(t *testing.T) {
	t.Run("All mandatory keys bound", func(t *testing.T) {
		if err := ValidateMapping(fullMapping()); err != nil {
			t.Errorf("ValidateMapping returned %v, want nil", err)
		}
	})

	t.Run("Missing keys are listed by name", func(t *testing.T) {
		m := fullMapping()
		delete(m.Fields, "price")
		delete(m.Fields, "sector")

		err := ValidateMapping(m)
		if err == nil {
			t.Fatal("ValidateMapping should fail with missing keys")
		}
		if !strings.Contains(err.Error(), "price") || !strings.Contains(err.Error(), "sector") {
			t.Errorf("error %q should name price and sector", err)
		}
	})

	t.Run("Blank path counts as missing", func(t *testing.T) {
		m := fullMapping()
		m.Fields["city"] = "   "

		err := ValidateMapping(m)
		if err == nil || !strings.Contains(err.Error(), "city") {
			t.Errorf("error = %v, want a failure naming city", err)
		}
	})

	t.Run("Optional keys are never required", func(t *testing.T) {
		// The full mapping binds none of the optional keys.
		if err := ValidateMapping(fullMapping()); err != nil {
			t.Errorf("ValidateMapping returned %v, want nil", err)
		}
	})
}

func TestValidateConfig(t *testing.T) {
	base := func() *Integration {
		return &Integration{
			Name:    "portal",
			BaseURL: "https://feeds.example.test/listings",
			Mapping: fullMapping(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *Integration)
		wantErr string
	}{
		{
			name:   "Minimal valid config",
			mutate: func(cfg *Integration) {},
		},
		{
			name:    "Name required",
			mutate:  func(cfg *Integration) { cfg.Name = "" },
			wantErr: "name",
		},
		{
			name:    "Base URL required",
			mutate:  func(cfg *Integration) { cfg.BaseURL = "" },
			wantErr: "base_url",
		},
		{
			name: "Secret required for api-key auth",
			mutate: func(cfg *Integration) {
				cfg.AuthType = AuthAPIKey
			},
			wantErr: "auth_secret",
		},
		{
			name: "Secret required for bearer auth",
			mutate: func(cfg *Integration) {
				cfg.AuthType = AuthBearer
			},
			wantErr: "auth_secret",
		},
		{
			name: "Bearer with secret is fine",
			mutate: func(cfg *Integration) {
				cfg.AuthType = AuthBearer
				cfg.AuthSecret = "tok"
			},
		},
		{
			name: "Unknown auth type rejected",
			mutate: func(cfg *Integration) {
				cfg.AuthType = "oauth3"
			},
			wantErr: "auth type",
		},
		{
			name: "Soft delete needs a retention window",
			mutate: func(cfg *Integration) {
				cfg.Deletion = DeletionPolicy{Enabled: true, Strategy: StrategySoftDelete}
			},
			wantErr: "retention_days",
		},
		{
			name: "Soft delete with window is fine",
			mutate: func(cfg *Integration) {
				cfg.Deletion = DeletionPolicy{Enabled: true, Strategy: StrategySoftDelete, RetentionDays: 30}
			},
		},
		{
			name: "Hard delete needs no window",
			mutate: func(cfg *Integration) {
				cfg.Deletion = DeletionPolicy{Enabled: true, Strategy: StrategyHardDelete}
			},
		},
		{
			name: "Unknown deletion strategy rejected",
			mutate: func(cfg *Integration) {
				cfg.Deletion = DeletionPolicy{Enabled: true, Strategy: "purge"}
			},
			wantErr: "deletion strategy",
		},
		{
			name: "Disabled deletion skips strategy checks",
			mutate: func(cfg *Integration) {
				cfg.Deletion = DeletionPolicy{Enabled: false, Strategy: "purge"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateConfig returned %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want one containing %q", err, tt.wantErr)
			}
		})
	}

	t.Run("Empty auth type normalized to none", func(t *testing.T) {
		cfg := base()
		if err := validateConfig(cfg); err != nil {
			t.Fatalf("validateConfig returned %v", err)
		}
		if cfg.AuthType != AuthNone {
			t.Errorf("AuthType = %q, want %q", cfg.AuthType, AuthNone)
		}
	})
}

type applyingRepo struct {
	stored  *Integration
	updates []map[string]interface{}
}

func (r *applyingRepo) Create(ctx context.Context, cfg *Integration) error {
	r.stored = cfg
	return nil
}

func (r *applyingRepo) Get(ctx context.Context, id string) (*Integration, error) {
	if r.stored == nil {
		return nil, fmt.Errorf("integration %s not found", id)
	}
	copied := *r.stored
	return &copied, nil
}

func (r *applyingRepo) List(ctx context.Context) ([]Integration, error)       { return nil, nil }
func (r *applyingRepo) ListActive(ctx context.Context) ([]Integration, error) { return nil, nil }
func (r *applyingRepo) Delete(ctx context.Context, id string) error           { return nil }

func (r *applyingRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	merged, err := applyUpdates(r.stored, updates)
	if err != nil {
		return err
	}
	r.stored = merged
	r.updates = append(r.updates, updates)
	return nil
}

func TestUpdateValidatesBeforeWriting(t *testing.T) {
	cfg := &Integration{
		ID:      primitive.NewObjectID(),
		Name:    "portal",
		BaseURL: "https://feeds.example.test/listings",
		Mapping: fullMapping(),
		Deletion: DeletionPolicy{
			Enabled:       true,
			Strategy:      StrategySoftDelete,
			RetentionDays: 30,
		},
	}
	repo := &applyingRepo{stored: cfg}
	svc := &IntegrationServiceImpl{Repo: repo}

	err := svc.Update(context.Background(), cfg.ID.Hex(), map[string]interface{}{
		"deletion": map[string]interface{}{
			"enabled":        true,
			"strategy":       StrategySoftDelete,
			"retention_days": 0,
		},
	})
	if err == nil {
		t.Fatal("Update should reject a policy without a retention window")
	}
	if len(repo.updates) != 0 {
		t.Fatalf("invalid update reached the store: %v", repo.updates)
	}
	if repo.stored.Deletion.RetentionDays != 30 {
		t.Errorf("stored retention_days = %d, want the original 30", repo.stored.Deletion.RetentionDays)
	}

	if err := svc.Update(context.Background(), cfg.ID.Hex(), map[string]interface{}{"rate_limit": 120}); err != nil {
		t.Fatalf("valid update returned error: %v", err)
	}
	if repo.stored.RateLimit != 120 {
		t.Errorf("stored rate_limit = %d, want 120", repo.stored.RateLimit)
	}
	if repo.stored.Deletion.RetentionDays != 30 {
		t.Errorf("partial update dropped the deletion policy: %+v", repo.stored.Deletion)
	}
}
