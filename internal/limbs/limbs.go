// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package limbs converts between big-endian wire bytes, least-significant
// first 64-bit limb sequences and big integers.
//
// Signature gadget inputs (digest, signature r and s, public key
// coordinates) arrive as big-endian byte strings from the signing library.
// Non-native field elements store their value least-significant limb first.
// Each field is therefore byte-reversed independently before limb packing;
// reversing an already little-endian field, or forgetting the reversal,
// silently produces an unsatisfiable witness, so the conversion lives here
// behind unit tests instead of being inlined at every call site.
package limbs

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// FromBytesBE packs a big-endian byte string into least-significant first
// 64-bit limbs. The input is copied, reversed and zero-padded to a whole
// number of limbs.
func FromBytesBE(be []byte) []uint64 {
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	n := (len(le) + 7) / 8
	le = append(le, make([]byte, n*8-len(le))...)
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(le[i*8:])
	}
	return out
}

// ToBig returns the integer Σ limb[i]·2^(64·i).
func ToBig(limbs []uint64) *big.Int {
	v := new(big.Int)
	tmp := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Add(v, tmp.SetUint64(limbs[i]))
	}
	return v
}

// FromBig decomposes v into n least-significant first 64-bit limbs. It
// errors when v does not fit.
func FromBig(v *big.Int, n int) ([]uint64, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("limbs: negative value")
	}
	if v.BitLen() > 64*n {
		return nil, fmt.Errorf("limbs: value has %d bits, does not fit in %d limbs", v.BitLen(), n)
	}
	be := make([]byte, n*8)
	v.FillBytes(be)
	out := make([]uint64, n)
	for i := range out {
		out[i] = binary.BigEndian.Uint64(be[(n-1-i)*8:])
	}
	return out, nil
}

// Pad extends a limb sequence with zero limbs up to length n. Shrinking is a
// limb-count mismatch and returns an error.
func Pad(in []uint64, n int) ([]uint64, error) {
	if len(in) > n {
		return nil, fmt.Errorf("limbs: cannot pad %d limbs to %d", len(in), n)
	}
	out := make([]uint64, n)
	copy(out, in)
	return out, nil
}

// BigFromBytesBE is shorthand for ToBig(FromBytesBE(be)).
func BigFromBytesBE(be []byte) *big.Int {
	return ToBig(FromBytesBE(be))
}
