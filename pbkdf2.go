// SPDX-FileCopyrightText: 2024 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package pkcs5

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// maxBlockCount is the largest number of PRF blocks a derived key may
// span: INT(i) is a 4-byte counter, so valid block indices are 1..2^32-1.
// See: RFC 8018, Section 5.2, Step 1
const maxBlockCount = 1<<32 - 1

// PBKDF2 derives len(dk) bytes of key material from the password and
// salt by applying the PRF iterations times per output block, and writes
// them into dk:
//
//	DK = T_1 || T_2 || ... || T_l<0..r-1>
//	T_i = U_1 ^ U_2 ^ ... ^ U_c
//	U_1 = PRF(P, S || INT(i)), U_k = PRF(P, U_{k-1})
//
// On error the contents of dk are unspecified and must not be used.
// See: RFC 8018, Section 5.2
func PBKDF2(prf PRF, password, salt []byte, iterations int, dk []byte) error {
	hLen, err := checkParams(prf, iterations, len(dk))
	if err != nil {
		return err
	}

	ctx, err := prf.Open()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPRF, err)
	}
	defer ctx.Close()

	l := (len(dk) + hLen - 1) / hLen
	for i := 1; i <= l; i++ {
		i := i
		end := min(i*hLen, len(dk))
		if err := deriveBlock(ctx, password, salt, iterations, hLen, uint32(i), dk[(i-1)*hLen:end]); err != nil {
			return err
		}
	}

	return nil
}

// PBKDF2Key derives a key of dkLen bytes and returns it in a freshly
// allocated buffer.
func PBKDF2Key(prf PRF, password, salt []byte, iterations, dkLen int) ([]byte, error) {
	// Validate before allocating: dkLen may exceed any sane allocation.
	if _, err := checkParams(prf, iterations, dkLen); err != nil {
		return nil, err
	}

	dk := make([]byte, dkLen)
	if err := PBKDF2(prf, password, salt, iterations, dk); err != nil {
		return nil, err
	}

	return dk, nil
}

// PBKDF2Parallel behaves exactly like PBKDF2 but computes the output
// blocks on up to workers goroutines, each with its own PRF context.
// Blocks only depend on their own index, so the result is byte-identical
// to the sequential derivation. The chained iterations within a block
// remain strictly sequential. workers < 1 means one goroutine per block.
func PBKDF2Parallel(prf PRF, password, salt []byte, iterations int, dk []byte, workers int) error {
	hLen, err := checkParams(prf, iterations, len(dk))
	if err != nil {
		return err
	}

	g := errgroup.Group{}
	if workers > 0 {
		g.SetLimit(workers)
	}

	l := (len(dk) + hLen - 1) / hLen
	for i := 1; i <= l; i++ {
		i := i
		end := min(i*hLen, len(dk))

		g.Go(func() error {
			ctx, err := prf.Open()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPRF, err)
			}
			defer ctx.Close()

			return deriveBlock(ctx, password, salt, iterations, hLen, uint32(i), dk[(i-1)*hLen:end])
		})
	}

	return g.Wait()
}

// checkParams validates the PRF and the derivation parameters and
// returns hLen. PRF suitability is checked first, then the iteration
// count, then the key length and its RFC 8018 ceiling.
func checkParams(prf PRF, iterations, dkLen int) (int, error) {
	hLen := prf.Size()
	if hLen < 1 || hLen > MaxPRFOutputLen {
		return 0, fmt.Errorf("%w: unsupported output length %d", ErrInvalidPRF, hLen)
	}

	if iterations < 1 {
		return 0, ErrInvalidIterationCount
	}

	if dkLen < 1 {
		return 0, ErrInvalidDerivedKeyLength
	}

	if uint64(dkLen) > maxBlockCount*uint64(hLen) {
		return 0, ErrDerivedKeyTooLong
	}

	return hLen, nil
}

// deriveBlock computes T_i and writes its first len(out) bytes into out.
// All blocks span hLen bytes except the last, which out truncates to r.
func deriveBlock(ctx PRFContext, password, salt []byte, iterations, hLen int, i uint32, out []byte) error {
	var index [4]byte
	putBlockIndex(index[:], i)

	T := make([]byte, hLen)
	U := make([]byte, 0, hLen)

	for u := 1; u <= iterations; u++ {
		ctx.Reset()
		if err := ctx.SetKey(password); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPRF, err)
		}

		if u == 1 {
			_, _ = ctx.Write(salt)
			_, _ = ctx.Write(index[:])
		} else {
			_, _ = ctx.Write(U)
		}

		var err error
		if U, err = ctx.Sum(U[:0]); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPRF, err)
		} else if len(U) != hLen {
			return fmt.Errorf("%w: digest has %d bytes, expected %d", ErrInvalidPRF, len(U), hLen)
		}

		for k := range T {
			T[k] ^= U[k]
		}
	}

	copy(out, T)

	return nil
}

// putBlockIndex encodes the block index into the four bytes of b, most
// significant byte first, independent of the platform byte order.
func putBlockIndex(b []byte, i uint32) {
	b[0] = byte(i >> 24)
	b[1] = byte(i >> 16)
	b[2] = byte(i >> 8)
	b[3] = byte(i)
}
