package integration

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Auth modes for outbound fetches
const (
	AuthNone   = "none"
	AuthAPIKey = "api-key"
	AuthBearer = "bearer"
	AuthBasic  = "basic"
)

// Deletion strategies
const (
	StrategySoftDelete = "soft_delete"
	StrategyArchive    = "archive"
	StrategyHardDelete = "hard_delete"
)

// RequiredMappingKeys are the canonical fields every mapping must bind.
var RequiredMappingKeys = []string{
	"external_id",
	"city",
	"neighborhood",
	"price",
	"property_type",
	"deal_type",
	"sector",
}

// OptionalMappingKeys are recognized but never validated as mandatory.
var OptionalMappingKeys = []string{
	"description",
	"area",
	"contact",
	"images",
	"broker_code",
	"address",
}

// FieldMapping translates canonical field names to external paths.
// Paths use dot notation for nested lookup ("pricing.value").
type FieldMapping struct {
	Fields          map[string]string `json:"fields" bson:"fields"`
	Characteristics map[string]string `json:"characteristics,omitempty" bson:"characteristics,omitempty"`
	// Transforms holds optional per-field expressions applied to the raw
	// value before coercion ("value * 1000", `value + " st"`).
	Transforms map[string]string `json:"transforms,omitempty" bson:"transforms,omitempty"`
}

type DeletionPolicy struct {
	Enabled       bool   `json:"enabled" bson:"enabled"`
	Strategy      string `json:"strategy" bson:"strategy"` // "soft_delete", "archive", "hard_delete"
	RetentionDays int    `json:"retention_days" bson:"retention_days"`
}

// Integration identifies one external listing source and how to consume it.
type Integration struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	BaseURL       string             `json:"base_url" bson:"base_url"`
	AuthType      string             `json:"auth_type" bson:"auth_type"`
	AuthSecret    string             `json:"auth_secret,omitempty" bson:"auth_secret,omitempty"`
	APIKeyHeader  string             `json:"api_key_header,omitempty" bson:"api_key_header,omitempty"`
	Mapping       FieldMapping       `json:"mapping" bson:"mapping"`
	RateLimit     int                `json:"rate_limit" bson:"rate_limit"` // requests per minute
	IsActive      bool               `json:"is_active" bson:"is_active"`
	Deletion      DeletionPolicy     `json:"deletion" bson:"deletion"`
	WebhookSecret string             `json:"webhook_secret,omitempty" bson:"webhook_secret,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
