package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"normal password", "Pass123", false},
		{"complex password", "Abc@123#XYZ", false},
		{"empty string", "", true},
		{"only whitespace", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HashPassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, got)
			assert.True(t, VerifyPassword(tt.password, got))
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	stored, err := HashPassword("Pass123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		plain    string
		hash     string
		expected bool
	}{
		{"correct password", "Pass123", stored, true},
		{"surrounding whitespace ignored", "  Pass123\n", stored, true},
		{"wrong password", "WrongPass", stored, false},
		{"case matters", "pass123", stored, false},
		{"empty plain", "", stored, false},
		{"empty hash", "Pass123", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerifyPassword(tt.plain, tt.hash))
		})
	}
}
