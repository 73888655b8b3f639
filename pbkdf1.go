// SPDX-FileCopyrightText: 2024 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package pkcs5

import (
	"fmt"
	"hash"
)

// PBKDF1 derives len(dk) bytes of key material from the password and
// salt by iterating the plain digest algorithm:
//
//	T_1 = H(P || S), T_k = H(T_{k-1}), DK = T_c<0..dkLen-1>
//
// PBKDF1 cannot produce more than hLen bytes; longer requests fail with
// ErrDerivedKeyTooLong. It is retained for compatibility with legacy
// PKCS#5 v1.5 encryption schemes only. New designs should use PBKDF2.
// See: RFC 8018, Section 5.1
func PBKDF1(h func() hash.Hash, password, salt []byte, iterations int, dk []byte) error {
	if h == nil {
		return fmt.Errorf("%w: missing digest", ErrInvalidPRF)
	}

	d := h()

	hLen := d.Size()
	if hLen < 1 || hLen > MaxPRFOutputLen {
		return fmt.Errorf("%w: unsupported output length %d", ErrInvalidPRF, hLen)
	}

	if iterations < 1 {
		return ErrInvalidIterationCount
	}

	if len(dk) < 1 {
		return ErrInvalidDerivedKeyLength
	}

	if len(dk) > hLen {
		return ErrDerivedKeyTooLong
	}

	d.Write(password)
	d.Write(salt)
	T := d.Sum(nil)

	for u := 2; u <= iterations; u++ {
		d.Reset()
		d.Write(T)
		T = d.Sum(T[:0])
	}

	copy(dk, T)

	return nil
}

// PBKDF1Key derives a key of dkLen bytes and returns it in a freshly
// allocated buffer.
func PBKDF1Key(h func() hash.Hash, password, salt []byte, iterations, dkLen int) ([]byte, error) {
	if dkLen < 1 {
		return nil, ErrInvalidDerivedKeyLength
	}

	dk := make([]byte, dkLen)
	if err := PBKDF1(h, password, salt, iterations, dk); err != nil {
		return nil, err
	}

	return dk, nil
}
