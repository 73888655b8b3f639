// SPDX-FileCopyrightText: 2024 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package pkcs5_test

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"hash"
	"testing"

	"github.com/stretchr/testify/require"

	"cunicu.li/go-pkcs5"
)

func TestPBKDF1Vector(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	salt, err := hex.DecodeString("78578e5a5d63cb06")
	require.NoError(err)

	dk, err := pkcs5.PBKDF1Key(sha1.New, []byte("password"), salt, 1000, 16)
	require.NoError(err)

	expected, err := hex.DecodeString("dc19847e05c64d2faf10ebfb4a3d2a20")
	require.NoError(err)
	require.Equal(expected, dk)
}

// PBKDF1 is the iterated digest chain T_c(H(P || S)); verify against a
// chain computed directly on the digest.
func TestPBKDF1Chain(t *testing.T) {
	t.Parallel()

	password := []byte("chain-password")
	salt := []byte("chain-salt")

	for name, h := range map[string]func() hash.Hash{
		"md5":  md5.New,
		"sha1": sha1.New,
	} {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			d := h()
			d.Write(password)
			d.Write(salt)
			T := d.Sum(nil)

			for u := 2; u <= 100; u++ {
				d.Reset()
				d.Write(T)
				T = d.Sum(nil)
			}

			dk, err := pkcs5.PBKDF1Key(h, password, salt, 100, d.Size())
			require.NoError(err)
			require.Equal(T, dk)

			// Shorter keys are truncations of the final digest.
			dk8, err := pkcs5.PBKDF1Key(h, password, salt, 100, 8)
			require.NoError(err)
			require.Equal(T[:8], dk8)
		})
	}
}

func TestPBKDF1Bounds(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	password := []byte("password")
	salt := []byte("salt")

	err := pkcs5.PBKDF1(nil, password, salt, 1, make([]byte, 16))
	require.ErrorIs(err, pkcs5.ErrInvalidPRF)

	err = pkcs5.PBKDF1(sha1.New, password, salt, 0, make([]byte, 16))
	require.ErrorIs(err, pkcs5.ErrInvalidIterationCount)

	err = pkcs5.PBKDF1(sha1.New, password, salt, 1, nil)
	require.ErrorIs(err, pkcs5.ErrInvalidDerivedKeyLength)

	// PBKDF1 cannot stretch beyond one digest output.
	err = pkcs5.PBKDF1(sha1.New, password, salt, 1, make([]byte, sha1.Size+1))
	require.ErrorIs(err, pkcs5.ErrDerivedKeyTooLong)

	_, err = pkcs5.PBKDF1Key(sha1.New, password, salt, 1, 0)
	require.ErrorIs(err, pkcs5.ErrInvalidDerivedKeyLength)
}
