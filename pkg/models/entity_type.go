package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
)

// PropertyType enumerates the value types an entity property may hold.
type PropertyType string

const (
	PropertyText       PropertyType = "text"
	PropertyNumber     PropertyType = "number"
	PropertyCurrency   PropertyType = "currency"
	PropertyPercentage PropertyType = "percentage"
	PropertyDate       PropertyType = "date"
	PropertyBoolean    PropertyType = "boolean"
	PropertyEmail      PropertyType = "email"
	PropertyURL        PropertyType = "url"
)

// IsValid reports whether t is a known property type.
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyText, PropertyNumber, PropertyCurrency, PropertyPercentage,
		PropertyDate, PropertyBoolean, PropertyEmail, PropertyURL:
		return true
	}
	return false
}

// EntityProperty defines one property slot on an EntityType.
type EntityProperty struct {
	Key     string       `json:"key"`
	Label   string       `json:"label"`
	Type    PropertyType `json:"type"`
	Visible bool         `json:"visible"`
}

// EntityType is a user- or projector-defined business object category
// (e.g. "Instructor", "Location"). Slug is derived from the name and unique
// per org. Deleting a type cascades to its entities and any relationships
// touching them.
// Stored in engine_entity_types table.
type EntityType struct {
	ID         uuid.UUID        `json:"id"`
	OrgID      uuid.UUID        `json:"org_id"`
	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	Icon       string           `json:"icon"`
	Color      string           `json:"color"`
	Properties []EntityProperty `json:"properties"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// PropertyByKey returns the property definition for key, or false.
func (t *EntityType) PropertyByKey(key string) (EntityProperty, bool) {
	for _, p := range t.Properties {
		if p.Key == key {
			return p, true
		}
	}
	return EntityProperty{}, false
}

// Validate checks the type's name, property keys, and property types.
// Property keys must be unique within the type.
func (t *EntityType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("entity type name cannot be empty")
	}

	seen := make(map[string]bool, len(t.Properties))
	for _, p := range t.Properties {
		if strings.TrimSpace(p.Key) == "" {
			return fmt.Errorf("property key cannot be empty")
		}
		if seen[p.Key] {
			return fmt.Errorf("duplicate property key %q", p.Key)
		}
		seen[p.Key] = true
		if !p.Type.IsValid() {
			return fmt.Errorf("unknown property type %q for key %q", p.Type, p.Key)
		}
	}
	return nil
}

var slugCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// SlugForName derives a URL-safe slug from a display name.
// "Yoga Instructors" becomes "yoga-instructor" (singularized, lowercased,
// non-alphanumerics collapsed to hyphens).
func SlugForName(name string) string {
	singular := inflection.Singular(strings.TrimSpace(name))
	slug := slugCleaner.ReplaceAllString(strings.ToLower(singular), "-")
	return strings.Trim(slug, "-")
}
