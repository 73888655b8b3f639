// SPDX-FileCopyrightText: 2024 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

// Package pkcs5 implements the password-based key derivation functions
// of PKCS#5 v2.1 / RFC 8018: PBKDF2 (Section 5.2) with a pluggable
// pseudorandom function, and the legacy PBKDF1 (Section 5.1).
package pkcs5

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// MaxPRFOutputLen is the largest PRF output length in bytes accepted by
// the derivation functions. PRFs reporting a larger (or zero) output
// size are rejected with ErrInvalidPRF.
const MaxPRFOutputLen = 128

// MinSaltLen is the smallest salt accepted by GenerateSalt.
// See: RFC 8018, Section 4.1
const MinSaltLen = 8

var (
	ErrInvalidPRF              = errors.New("invalid PRF")
	ErrInvalidIterationCount   = errors.New("invalid iteration count")
	ErrInvalidDerivedKeyLength = errors.New("invalid derived key length")
	ErrDerivedKeyTooLong       = errors.New("derived key too long")

	errInvalidSaltLength = errors.New("invalid salt length")
)

// GenerateSalt returns n bytes read from the system's cryptographically
// secure random source. Salts shorter than MinSaltLen are refused.
func GenerateSalt(n int) ([]byte, error) {
	if n < MinSaltLen {
		return nil, fmt.Errorf("%w: must be at least %d bytes", errInvalidSaltLength, MinSaltLen)
	}

	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate random salt: %w", err)
	}

	return salt, nil
}
