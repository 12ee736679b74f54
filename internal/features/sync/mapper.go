package sync

import (
	"fmt"
	"strings"

	"go-listings/internal/features/integration"
	"go-listings/internal/features/property"
)

// MapRecord translates one raw external record into the canonical shape
// using the integration's field mapping. Missing or uncoercible optional
// data never fails the call; only a structurally unusable record does.
// Validation of mandatory fields is a separate step (Validate).
func MapRecord(raw map[string]interface{}, mapping integration.FieldMapping) (*property.Property, error) {
	if raw == nil {
		return nil, fmt.Errorf("record is not an object")
	}

	p := &property.Property{}

	for field, path := range mapping.Fields {
		val := lookupPath(raw, path)

		if expr, ok := mapping.Transforms[field]; ok && expr != "" && val != nil {
			transformed, err := applyTransform(expr, val)
			if err != nil {
				return nil, fmt.Errorf("transform for %q: %w", field, err)
			}
			val = transformed
		}

		switch field {
		case "external_id":
			p.ExternalID, _ = asString(val)
		case "city":
			p.City, _ = asString(val)
		case "neighborhood":
			p.Neighborhood, _ = asString(val)
		case "price":
			p.Price, _ = asNumber(val)
		case "property_type":
			p.PropertyType, _ = asString(val)
		case "deal_type":
			p.DealType, _ = asString(val)
		case "sector":
			p.Sector, _ = asString(val)
		case "description":
			p.Description, _ = asString(val)
		case "area":
			p.Area, _ = asNumber(val)
		case "contact":
			p.Contact, _ = asString(val)
		case "images":
			p.Images = asStringList(val)
		case "broker_code":
			p.BrokerCode, _ = asString(val)
		case "address":
			p.Address, _ = asString(val)
		}
	}

	// Characteristics are applied key-by-key; unmapped or non-numeric
	// values are omitted rather than defaulted to zero.
	for name, path := range mapping.Characteristics {
		if n, ok := asNumber(lookupPath(raw, path)); ok {
			if p.Characteristics == nil {
				p.Characteristics = make(map[string]float64)
			}
			p.Characteristics[name] = n
		}
	}

	return p, nil
}

// Validate checks the mandatory canonical fields and returns human-readable
// violations. An empty result means the record can be persisted.
func Validate(p *property.Property) []string {
	var errs []string

	if strings.TrimSpace(p.ExternalID) == "" {
		errs = append(errs, "external_id is missing or empty")
	}
	if strings.TrimSpace(p.City) == "" {
		errs = append(errs, "city is missing or empty")
	}
	if strings.TrimSpace(p.Neighborhood) == "" {
		errs = append(errs, "neighborhood is missing or empty")
	}
	if p.Price <= 0 {
		errs = append(errs, "price must be greater than zero")
	}
	if strings.TrimSpace(p.PropertyType) == "" {
		errs = append(errs, "property_type is missing or empty")
	}
	if strings.TrimSpace(p.DealType) == "" {
		errs = append(errs, "deal_type is missing or empty")
	}
	if strings.TrimSpace(p.Sector) == "" {
		errs = append(errs, "sector is missing or empty")
	}

	return errs
}
