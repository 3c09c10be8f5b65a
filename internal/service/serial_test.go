package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSerialNumber_Shape(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		serial, err := newSerialNumber()
		require.NoError(t, err)
		assert.Len(t, serial, serialLength)

		for _, r := range serial {
			assert.True(t, strings.ContainsRune(serialAlphabet, r), "unexpected character %q", r)
		}

		seen[serial] = true
	}

	// Collisions in 100 draws from a 36^8 space would mean the
	// generator is broken, not unlucky.
	assert.Len(t, seen, 100)
}
