package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugForName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Instructor", expected: "instructor"},
		{name: "plural is singularized", input: "Yoga Instructors", expected: "yoga-instructor"},
		{name: "punctuation collapsed", input: "Front-of-House Staff", expected: "front-of-house-staff"},
		{name: "surrounding whitespace", input: "  Location  ", expected: "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SlugForName(tt.input))
		})
	}
}

func TestEntityTypeValidate(t *testing.T) {
	valid := EntityType{
		Name: "Instructor",
		Properties: []EntityProperty{
			{Key: "email", Label: "Email", Type: PropertyEmail},
			{Key: "rate", Label: "Hourly Rate", Type: PropertyCurrency},
		},
	}
	assert.NoError(t, valid.Validate())

	t.Run("empty name", func(t *testing.T) {
		et := EntityType{Name: "  "}
		assert.Error(t, et.Validate())
	})

	t.Run("duplicate property key", func(t *testing.T) {
		et := EntityType{
			Name: "Instructor",
			Properties: []EntityProperty{
				{Key: "email", Type: PropertyEmail},
				{Key: "email", Type: PropertyText},
			},
		}
		assert.ErrorContains(t, et.Validate(), "duplicate property key")
	})

	t.Run("unknown property type", func(t *testing.T) {
		et := EntityType{
			Name:       "Instructor",
			Properties: []EntityProperty{{Key: "x", Type: PropertyType("blob")}},
		}
		assert.Error(t, et.Validate())
	})
}
