package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  support-tier1  ", "support-tier1"},
		{"removes null bytes", "billing\x00queue", "billingqueue"},
		{"removes control characters", "sales\x01\x02", "sales"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestValidateQueueName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "support-tier1", false},
		{"valid with underscore", "billing_es", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"starts with hyphen", "-support", true},
		{"contains spaces", "support tier", true},
		{"reserved", "admin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQueueName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid password", "Str0ng!pass", false},
		{"too short", "S1!a", true},
		{"missing uppercase", "weak1pass!", true},
		{"missing number", "Weakpass!", true},
		{"missing special", "Weakpass1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
