package jsonutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"Alice"`, "Alice"},
		{"integer", `1200`, "1200"},
		{"float", `45.5`, "45.5"},
		{"boolean true", `true`, "true"},
		{"boolean false", `false`, "false"},
		{"null", `null`, ""},
		{"empty", ``, ""},
		{"quoted number stays verbatim", `"1200.00"`, "1200.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleStringValue(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexibleStringRow(t *testing.T) {
	raw := map[string]json.RawMessage{
		"Instructor": json.RawMessage(`"Alice"`),
		"Revenue":    json.RawMessage(`1200`),
		"Active":     json.RawMessage(`true`),
		"Notes":      json.RawMessage(`null`),
	}

	row := FlexibleStringRow(raw)

	assert.Equal(t, "Alice", row["Instructor"])
	assert.Equal(t, "1200", row["Revenue"])
	assert.Equal(t, "true", row["Active"])
	assert.Equal(t, "", row["Notes"])
}
