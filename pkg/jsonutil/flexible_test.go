package jsonutil

import (
	"encoding/json"
	"testing"
)

func TestFlexibleStringValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"hello"`, "hello"},
		{"integer", `42`, "42"},
		{"float", `3.14`, "3.14"},
		{"negative integer", `-7`, "-7"},
		{"boolean true", `true`, "true"},
		{"boolean false", `false`, "false"},
		{"null", `null`, ""},
		{"empty", ``, ""},
		{"array falls back to raw", `[1,2]`, "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleStringValue(json.RawMessage(tt.raw))
			if got != tt.want {
				t.Errorf("FlexibleStringValue(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFlexibleFloatValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"number", `0.85`, 0.85},
		{"integer", `1`, 1},
		{"quoted number", `"0.9"`, 0.9},
		{"quoted integer", `"7"`, 7},
		{"null", `null`, 0},
		{"empty", ``, 0},
		{"non-numeric string", `"high"`, 0},
		{"boolean", `true`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleFloatValue(json.RawMessage(tt.raw))
			if got != tt.want {
				t.Errorf("FlexibleFloatValue(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
