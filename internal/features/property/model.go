package property

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Property is the platform's canonical listing record, independent of any
// external source's field names.
type Property struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	// Natural key: (external_id, source_id)
	ExternalID string             `json:"external_id" bson:"external_id"`
	SourceID   primitive.ObjectID `json:"source_id" bson:"source_id"`

	// Mandatory canonical fields
	City         string  `json:"city" bson:"city"`
	Neighborhood string  `json:"neighborhood" bson:"neighborhood"`
	Price        float64 `json:"price" bson:"price"`
	PropertyType string  `json:"property_type" bson:"property_type"`
	DealType     string  `json:"deal_type" bson:"deal_type"` // "sale" or "rent"
	Sector       string  `json:"sector" bson:"sector"`

	// Optional fields
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	Area            float64            `json:"area,omitempty" bson:"area,omitempty"`
	Contact         string             `json:"contact,omitempty" bson:"contact,omitempty"`
	Images          []string           `json:"images,omitempty" bson:"images,omitempty"`
	Characteristics map[string]float64 `json:"characteristics,omitempty" bson:"characteristics,omitempty"`
	BrokerCode      string             `json:"broker_code,omitempty" bson:"broker_code,omitempty"`
	Address         string             `json:"address,omitempty" bson:"address,omitempty"`

	// Sync metadata
	SyncedAt         time.Time  `json:"synced_at" bson:"synced_at"`
	Active           bool       `json:"active" bson:"active"`
	RetiredAt        *time.Time `json:"retired_at,omitempty" bson:"retired_at,omitempty"`
	RetirementReason string     `json:"retirement_reason,omitempty" bson:"retirement_reason,omitempty"`
}
