// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package word32 implements the 32-bit word recurrence
//
//	f(x) = (x·x mod 2^32) ⊕ ROTR^rot(x) [⊕ SHR^shift(x)]
//
// twice: once symbolically over a [frontend.API] (the [Gadget]) and once
// natively over uint32 ([Step], [Iterate]). The two realizations must stay in
// lock-step; every constraint the gadget emits is satisfied exactly by the
// value the native functions compute. Tests compare them over random and
// boundary inputs.
package word32

import (
	mathbits "math/bits"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/bits"
	"github.com/consensys/gnark/std/math/bitslice"
)

// Mask32 is the truncation constant keeping the low 32 bits of a word.
const Mask32 = 0xFFFF_FFFF

// Truncation selects how the gadget constrains a 64-bit value to its low 32
// bits. Both mechanisms assert the same property, value mod 2^32 == value;
// they differ only in the constraints the backend ends up with.
type Truncation uint8

const (
	// TruncateMask decomposes the value into 64 bits and recomposes the low
	// 32, the in-circuit equivalent of AND with [Mask32].
	TruncateMask Truncation = iota
	// TruncateAdd adds a zero constant and splits the 32-bit-width sum with
	// the range-checker backed partition, the in-circuit equivalent of a
	// 32-bit addition that drops high bits.
	TruncateAdd
)

// Valid reports whether t names a known mechanism.
func (t Truncation) Valid() bool {
	return t == TruncateMask || t == TruncateAdd
}

func (t Truncation) String() string {
	switch t {
	case TruncateMask:
		return "mask"
	case TruncateAdd:
		return "add"
	default:
		return "unknown"
	}
}

// Gadget emits word-level constraints over a native field. Word values are
// carried as 32 least-significant first bits so that rotations and shifts are
// free wire permutations.
type Gadget struct {
	api   frontend.API
	trunc Truncation
}

// NewGadget returns a gadget using the given truncation mechanism.
func NewGadget(api frontend.API, trunc Truncation) *Gadget {
	if !trunc.Valid() {
		panic("word32: unknown truncation mechanism")
	}
	return &Gadget{api: api, trunc: trunc}
}

// AssertWord32 constrains v to fit in 32 bits: the truncated value must equal
// v itself. A witness with any bit set at position 32 or above fails here.
func (g *Gadget) AssertWord32(v frontend.Variable) {
	switch g.trunc {
	case TruncateMask:
		bts := bits.ToBinary(g.api, v, bits.WithNbDigits(64))
		masked := bits.FromBinary(g.api, bts[:32])
		g.api.AssertIsEqual(v, masked)
	case TruncateAdd:
		sum := g.api.Add(v, 0)
		lo, _ := bitslice.Partition(g.api, sum, 32, bitslice.WithNbDigits(64))
		g.api.AssertIsEqual(v, lo)
	}
}

// Bits32 decomposes a value already constrained to 32 bits.
func (g *Gadget) Bits32(v frontend.Variable) []frontend.Variable {
	return bits.ToBinary(g.api, v, bits.WithNbDigits(32))
}

// FromBits recomposes a 32-bit word from its LSB-first bits.
func (g *Gadget) FromBits(bts []frontend.Variable) frontend.Variable {
	return bits.FromBinary(g.api, bts)
}

// Truncate reduces a value known to fit in 64 bits to its low 32 bits using
// the configured mechanism.
func (g *Gadget) Truncate(v frontend.Variable) frontend.Variable {
	switch g.trunc {
	case TruncateAdd:
		sum := g.api.Add(v, 0)
		lo, _ := bitslice.Partition(g.api, sum, 32, bitslice.WithNbDigits(64))
		return lo
	default:
		bts := bits.ToBinary(g.api, v, bits.WithNbDigits(64))
		return bits.FromBinary(g.api, bts[:32])
	}
}

// truncateToBits reduces a value known to fit in 64 bits to its low 32 bits,
// using the configured mechanism, and returns the bit decomposition.
func (g *Gadget) truncateToBits(v frontend.Variable) []frontend.Variable {
	switch g.trunc {
	case TruncateAdd:
		sum := g.api.Add(v, 0)
		lo, _ := bitslice.Partition(g.api, sum, 32, bitslice.WithNbDigits(64))
		return bits.ToBinary(g.api, lo, bits.WithNbDigits(32))
	default:
		bts := bits.ToBinary(g.api, v, bits.WithNbDigits(64))
		return bts[:32]
	}
}

// Step applies f once. xBits is the LSB-first decomposition of the current
// word; the result is returned in the same form. shift == 0 disables the
// shifted term.
func (g *Gadget) Step(xBits []frontend.Variable, rot, shift int) []frontend.Variable {
	if len(xBits) != 32 {
		panic("word32: step expects 32 bits")
	}
	x := bits.FromBinary(g.api, xBits)
	// x < 2^32, so the full square fits in 64 bits and in the native field.
	sqBits := g.truncateToBits(g.api.Mul(x, x))
	out := make([]frontend.Variable, 32)
	for i := 0; i < 32; i++ {
		// bit i of ROTR^rot(x) is bit (i+rot) mod 32 of x
		v := g.api.Xor(sqBits[i], xBits[(i+rot)%32])
		if shift > 0 && i+shift < 32 {
			// bit i of SHR^shift(x); high bits are zero and XOR with zero is
			// the identity, so they are skipped.
			v = g.api.Xor(v, xBits[i+shift])
		}
		out[i] = v
	}
	return out
}

// Step is the native mirror of [Gadget.Step].
func Step(x uint32, rot, shift int) uint32 {
	y := x*x ^ mathbits.RotateLeft32(x, -rot)
	if shift > 0 {
		y ^= x >> shift
	}
	return y
}

// Iterate applies the native step n times starting from x0.
func Iterate(x0 uint32, n, rot, shift int) uint32 {
	x := x0
	for i := 0; i < n; i++ {
		x = Step(x, rot, shift)
	}
	return x
}
