// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package pmfield describes the pseudo-Mersenne prime fields used by the
// squaring-chain circuits and provides the native mirror of the in-circuit
// field arithmetic.
//
// A pseudo-Mersenne prime has the form p = 2^B − s for a small subtrahend s,
// which keeps the reduction constraints cheap. The symbolic side of the
// arithmetic is gnark's emulated field; this package supplies the
// [emulated.FieldParams] for the small field, the prime descriptions with
// their exact subtrahend limbs, and big.Int mirrors of multiply and square.
package pmfield

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-bench/internal/limbs"
)

// PseudoMersenne describes the prime p = 2^Bits − Subtrahend, with the
// subtrahend given least-significant limb first.
type PseudoMersenne struct {
	Bits       uint
	Subtrahend []uint64
}

// Modulus returns p as a fresh big integer.
func (pm PseudoMersenne) Modulus() *big.Int {
	p := new(big.Int).Lsh(big.NewInt(1), pm.Bits)
	return p.Sub(p, limbs.ToBig(pm.Subtrahend))
}

var (
	// Secp256k1Scalar is the secp256k1 scalar field order, 2^256 − s.
	Secp256k1Scalar = PseudoMersenne{
		Bits:       256,
		Subtrahend: []uint64{0x402da1732fc9bebf, 0x4551231950b75fc4, 1},
	}

	// Small is the 32-bit prime 2^32 − 5, written as 2^64 minus a 64-bit
	// subtrahend to match the word-level representation of its limbs.
	Small = PseudoMersenne{
		Bits:       64,
		Subtrahend: []uint64{0xFFFF_FFFF_0000_0005},
	}
)

// fScaleLimbs is the fixed scaling factor 2^(32·7) − 1 applied to the f
// output before squaring in the 256-bit chain.
var fScaleLimbs = []uint64{
	0xFFFF_FFFF_FFFF_FFFF,
	0xFFFF_FFFF_FFFF_FFFF,
	0xFFFF_FFFF_FFFF_FFFF,
	0x0000_0000_FFFF_FFFF,
}

// FScale returns the fixed scaling constant for the 256-bit squaring chain.
func FScale() *big.Int {
	return limbs.ToBig(fScaleLimbs)
}

// Small32Fr parametrizes the emulated field for the modulus 2^32 − 5 on a
// single 32-bit limb.
type Small32Fr struct{}

func (Small32Fr) NbLimbs() uint     { return 1 }
func (Small32Fr) BitsPerLimb() uint { return 32 }
func (Small32Fr) IsPrime() bool     { return true }
func (Small32Fr) Modulus() *big.Int { return Small.Modulus() }

// Field is the native mirror of the emulated field arithmetic. All methods
// return values reduced into [0, p).
type Field struct {
	p *big.Int
}

// New validates the prime description and returns its native field.
func New(pm PseudoMersenne) (*Field, error) {
	if pm.Bits == 0 {
		return nil, fmt.Errorf("pmfield: zero bit width")
	}
	if uint(len(pm.Subtrahend)*64) > pm.Bits+63 {
		return nil, fmt.Errorf("pmfield: subtrahend has more limbs than the bit width allows")
	}
	p := pm.Modulus()
	if p.Sign() <= 0 || p.BitLen() < 2 {
		return nil, fmt.Errorf("pmfield: subtrahend %v leaves no valid modulus at %d bits", pm.Subtrahend, pm.Bits)
	}
	return &Field{p: p}, nil
}

// Modulus returns a copy of p.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.p)
}

// Mul returns a·b mod p.
func (f *Field) Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mod(new(big.Int).Mul(a, b), f.p)
}

// Square returns a·a mod p.
func (f *Field) Square(a *big.Int) *big.Int {
	return f.Mul(a, a)
}

// Reduce returns a mod p.
func (f *Field) Reduce(a *big.Int) *big.Int {
	return new(big.Int).Mod(a, f.p)
}

// NbLimbs returns the number of 64-bit limbs needed for a field element.
func (f *Field) NbLimbs() int {
	return (f.p.BitLen() + 63) / 64
}
