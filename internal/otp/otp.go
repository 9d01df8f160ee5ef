// Package otp implements the one-time code policy: fixed-length numeric codes
// with each digit drawn independently from crypto/rand.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const digits = "0123456789"

// Generate returns a numeric code of the given length and its expiry time.
func Generate(length int, ttl time.Duration) (string, time.Time, error) {
	if length <= 0 {
		return "", time.Time{}, fmt.Errorf("otp length must be positive, got %d", length)
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(digits)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", time.Time{}, fmt.Errorf("failed to generate otp digit: %w", err)
		}
		code[i] = digits[n.Int64()]
	}

	return string(code), time.Now().UTC().Add(ttl), nil
}

// Expired reports whether the challenge expiry has passed.
func Expired(expiresAt *time.Time) bool {
	return expiresAt != nil && time.Now().UTC().After(*expiresAt)
}
