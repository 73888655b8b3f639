// SPDX-FileCopyrightText: 2024 Steffen Vogel <post@steffenvogel.de>
// SPDX-License-Identifier: Apache-2.0

package pkcs5

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
	"golang.org/x/crypto/sha3"
)

var errNotKeyed = errors.New("context is not keyed")

// A PRF describes a family of keyed pseudorandom functions usable as the
// underlying primitive of PBKDF2.
type PRF interface {
	// Size returns the output length of the PRF in bytes (hLen).
	Size() int

	// Open returns a fresh, unkeyed context. The caller must release it
	// with Close.
	Open() (PRFContext, error)
}

// A PRFContext is a single keyed-hash computation state. It is not safe
// for concurrent use; concurrent derivations must each open their own.
type PRFContext interface {
	io.Writer

	// SetKey keys the context for subsequent writes. Re-keying with an
	// unchanged key leaves the context untouched.
	SetKey(key []byte) error

	// Reset discards the message transcript, keeping the key.
	Reset()

	// Sum appends the finalized digest to b and returns the result.
	Sum(b []byte) ([]byte, error)

	// Close releases the context and erases its key material.
	Close()
}

// HMAC returns the standard PBKDF2 pseudorandom function, HMAC over the
// given digest algorithm.
func HMAC(h func() hash.Hash) PRF {
	return &hmacPRF{hash: h, size: h().Size()}
}

// The HMAC families named by RFC 8018 and common extensions of it.
var (
	HMACWithSHA1      = HMAC(sha1.New)
	HMACWithSHA256    = HMAC(sha256.New)
	HMACWithSHA384    = HMAC(sha512.New384)
	HMACWithSHA512    = HMAC(sha512.New)
	HMACWithSHA3_256  = HMAC(sha3.New256)
	HMACWithSHA3_512  = HMAC(sha3.New512)
	HMACWithBLAKE2b   = HMAC(newBLAKE2b)
	HMACWithBLAKE2s   = HMAC(newBLAKE2s)
	HMACWithRIPEMD160 = HMAC(ripemd160.New)
)

func newBLAKE2b() hash.Hash {
	h, _ := blake2b.New512(nil)
	return h
}

func newBLAKE2s() hash.Hash {
	h, _ := blake2s.New256(nil)
	return h
}

type hmacPRF struct {
	hash func() hash.Hash
	size int
}

func (p *hmacPRF) Size() int {
	return p.size
}

func (p *hmacPRF) Open() (PRFContext, error) {
	return &hmacContext{hash: p.hash}, nil
}

type hmacContext struct {
	hash func() hash.Hash
	key  []byte
	mac  hash.Hash
}

func (c *hmacContext) SetKey(key []byte) error {
	// Re-keying with an unchanged key keeps the precomputed pads.
	if c.mac != nil && bytes.Equal(key, c.key) {
		return nil
	}

	c.mac = hmac.New(c.hash, key)
	c.key = append(c.key[:0], key...)

	return nil
}

func (c *hmacContext) Reset() {
	if c.mac != nil {
		c.mac.Reset()
	}
}

func (c *hmacContext) Write(p []byte) (int, error) {
	if c.mac == nil {
		return 0, errNotKeyed
	}

	return c.mac.Write(p)
}

func (c *hmacContext) Sum(b []byte) ([]byte, error) {
	if c.mac == nil {
		return nil, errNotKeyed
	}

	return c.mac.Sum(b), nil
}

func (c *hmacContext) Close() {
	for i := range c.key {
		c.key[i] = 0
	}

	c.key = nil
	c.mac = nil
}
