package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"local mobile format", "09171234567", "+639171234567"},
		{"already canonical", "+639171234567", "+639171234567"},
		{"with spaces", "0917 123 4567", "+639171234567"},
		{"with dashes", "0917-123-4567", "+639171234567"},
		{"too short local", "0917123456", "0917123456"},
		{"landline untouched", "0281234567", "0281234567"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+639171234567", true},
		{"+6391234567", false},  // one digit short
		{"+6391712345678", false},
		{"09171234567", false},  // local form must be normalized first
		{"+639a71234567", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidPhone(tt.phone))
		})
	}
}

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Password123!", true},
		{"password123!", false}, // no uppercase
		{"PASSWORD123", false},  // no symbol
		{"Pass word1!", false},  // contains space
		{"Pa1!", false},         // too short
		{"Pass\tword1!", false}, // tab counts as whitespace
		{"Abcdefg!", true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidPassword(tt.password))
		})
	}
}

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.gov.ph", true},
		{"a@company.com", false},
		{"juan@gmail.com", true},
		{"juan@yahoo.com", true},
		{"juan@hotmail.com", true},
		{"staff@caloocan.gov", true},
		{"staff@doh.gov.ph", true},
		{"juan@GMAIL.com", true},
		{"not-an-email", false},
		{"a@b", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidEmail(tt.email))
		})
	}
}
