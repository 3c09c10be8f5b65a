package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone_ValidFormats(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0791234567", "+962791234567"},
		{"07 9123 4567", "+962791234567"},
		{"07-9123-4567", "+962791234567"},
		{"(079) 123-4567", "+962791234567"},
		{"962791234567", "+962791234567"},
		{"+962791234567", "+962791234567"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once, err := NormalizePhone("0791234567")
	require.NoError(t, err)

	twice, err := NormalizePhone(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizePhone_Empty(t *testing.T) {
	for _, input := range []string{"", " ", "   ", "\t"} {
		_, err := NormalizePhone(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestNormalizePhone_InvalidFormats(t *testing.T) {
	tests := []string{
		"abc",
		"07A1234567",
		"+111791234567", // foreign country code
		"+962612345678", // not a mobile prefix
		"0612345678",    // not 07
		"079123456",     // too short
		"07912345678",   // too long
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := NormalizePhone(input)
			require.Error(t, err)

			var phoneErr *InvalidPhoneError
			require.True(t, errors.As(err, &phoneErr))
			assert.Equal(t, "phoneNumber", phoneErr.Field)
		})
	}
}
