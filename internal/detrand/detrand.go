// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package detrand provides a deterministic counter-based random source for
// reproducible witness generation.
//
// Benchmark circuits need input data, but the data itself is irrelevant for
// benchmarking. To keep repeated runs byte-identical, any input which is not
// supplied explicitly is drawn from a [Source] seeded with a fixed value. The
// source is an explicit dependency of witness population, never hidden global
// state, so tests can substitute their own sequences.
package detrand

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// DefaultSeed seeds every source used for unspecified benchmark inputs.
const DefaultSeed uint64 = 42

// Source is a deterministic stream of pseudo-random bytes. It implements
// io.Reader so it can be passed directly to key generation functions which
// expect a randomness source.
type Source struct {
	cipher *chacha20.Cipher
}

// New returns a source producing the ChaCha20 keystream keyed from seed with
// a zero nonce. Two sources with the same seed produce identical streams.
func New(seed uint64) *Source {
	var key [chacha20.KeySize]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// key and nonce sizes are correct by construction
		panic(err)
	}
	return &Source{cipher: c}
}

// Read fills p with the next keystream bytes. It never fails.
func (s *Source) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Bytes returns the next n bytes of the stream.
func (s *Source) Bytes(n int) []byte {
	b := make([]byte, n)
	s.Read(b) //nolint:errcheck // never fails
	return b
}

// Uint32 returns the next 32-bit word of the stream.
func (s *Source) Uint32() uint32 {
	var b [4]byte
	s.Read(b[:]) //nolint:errcheck // never fails
	return binary.LittleEndian.Uint32(b[:])
}

// Uint32n returns a value in [0, n). It uses simple modular reduction; the
// bias is irrelevant for benchmark input generation.
func (s *Source) Uint32n(n uint32) uint32 {
	if n == 0 {
		panic("detrand: Uint32n with n == 0")
	}
	return s.Uint32() % n
}
