package models

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyValue is a typed value stored in an entity's property bag.
// Exactly one value field is meaningful, selected by Kind. Values are
// validated against the owning EntityType's property definitions at write
// time rather than trusting arbitrary JSON.
type PropertyValue struct {
	Kind     PropertyType `json:"kind"`
	Text     string       `json:"text,omitempty"`     // text, email, url
	Number   float64      `json:"number,omitempty"`   // number, currency, percentage
	Currency string       `json:"currency,omitempty"` // ISO code, currency kind only
	Bool     bool         `json:"bool,omitempty"`     // boolean kind
	Date     *time.Time   `json:"date,omitempty"`     // date kind
}

// Entity is one instance of an EntityType. SourceUploadID is a provenance
// back-reference to the upload that created it, not an ownership relation.
// Deleting an entity cascades to relationships referencing it (either end).
// Stored in engine_entities table.
type Entity struct {
	ID             uuid.UUID                `json:"id"`
	OrgID          uuid.UUID                `json:"org_id"`
	EntityTypeID   uuid.UUID                `json:"entity_type_id"`
	Name           string                   `json:"name"`
	Properties     map[string]PropertyValue `json:"properties"`
	SourceUploadID *uuid.UUID               `json:"source_upload_id,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// ValidateAgainst checks that the value matches a property definition.
func (v PropertyValue) ValidateAgainst(prop EntityProperty) error {
	if v.Kind != prop.Type {
		return fmt.Errorf("property %q expects %s, got %s", prop.Key, prop.Type, v.Kind)
	}

	switch v.Kind {
	case PropertyEmail:
		if _, err := mail.ParseAddress(v.Text); err != nil {
			return fmt.Errorf("property %q: invalid email %q", prop.Key, v.Text)
		}
	case PropertyURL:
		u, err := url.Parse(v.Text)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("property %q: invalid url %q", prop.Key, v.Text)
		}
	case PropertyDate:
		if v.Date == nil {
			return fmt.Errorf("property %q: missing date value", prop.Key)
		}
	}
	return nil
}

// ValidateProperties checks every value in props against the entity type's
// property definitions. Keys without a definition are rejected.
func ValidateProperties(t *EntityType, props map[string]PropertyValue) error {
	for key, val := range props {
		prop, ok := t.PropertyByKey(key)
		if !ok {
			return fmt.Errorf("unknown property %q for entity type %q", key, t.Name)
		}
		if err := val.ValidateAgainst(prop); err != nil {
			return err
		}
	}
	return nil
}

// dateLayouts are accepted when parsing raw date cells, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
}

// ParsePropertyValue coerces a raw string cell into a typed PropertyValue for
// the given property type. Numeric kinds tolerate currency symbols, thousands
// separators, and a trailing percent sign.
func ParsePropertyValue(propType PropertyType, raw string) (PropertyValue, error) {
	raw = strings.TrimSpace(raw)

	switch propType {
	case PropertyText, PropertyEmail, PropertyURL:
		v := PropertyValue{Kind: propType, Text: raw}
		return v, nil

	case PropertyNumber, PropertyCurrency, PropertyPercentage:
		n, err := ParseNumericCell(raw)
		if err != nil {
			return PropertyValue{}, fmt.Errorf("cannot parse %q as %s: %w", raw, propType, err)
		}
		return PropertyValue{Kind: propType, Number: n}, nil

	case PropertyBoolean:
		b, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return PropertyValue{}, fmt.Errorf("cannot parse %q as boolean: %w", raw, err)
		}
		return PropertyValue{Kind: PropertyBoolean, Bool: b}, nil

	case PropertyDate:
		d, err := ParseDateCell(raw)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Kind: PropertyDate, Date: &d}, nil
	}

	return PropertyValue{}, fmt.Errorf("unknown property type %q", propType)
}

// ParseNumericCell parses a raw numeric cell, stripping common formatting
// ($1,234.50, 12.5%, whitespace).
func ParseNumericCell(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

// ParseDateCell parses a raw date cell with the accepted layouts.
func ParseDateCell(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as date", raw)
}

// PropertiesJSON marshals a property bag for storage in a JSONB column.
func PropertiesJSON(props map[string]PropertyValue) ([]byte, error) {
	if props == nil {
		props = map[string]PropertyValue{}
	}
	return json.Marshal(props)
}
