package service

import (
	"crypto/rand"
	"fmt"
)

const (
	serialLength   = 8
	serialAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	defaultSerialAttempts = 5
)

// newSerialNumber draws a random 8-character code. Uniqueness is not
// guaranteed here; callers insert against the unique index and
// regenerate on collision.
func newSerialNumber() (string, error) {
	buf := make([]byte, serialLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = serialAlphabet[int(b)%len(serialAlphabet)]
	}
	return string(buf), nil
}
