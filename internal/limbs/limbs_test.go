// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package limbs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBytesBE(t *testing.T) {
	// 0x0102...20 as a big-endian integer
	be := make([]byte, 32)
	for i := range be {
		be[i] = byte(i + 1)
	}
	got := FromBytesBE(be)
	require.Len(t, got, 4)
	// least-significant limb holds the trailing bytes of the big-endian string
	require.Equal(t, uint64(0x191a1b1c1d1e1f20), got[0])
	require.Equal(t, uint64(0x0102030405060708), got[3])
	require.Equal(t, 0, new(big.Int).SetBytes(be).Cmp(ToBig(got)))
}

// Reversing a field that is already little-endian is as wrong as not
// reversing at all; the packing must only be applied to big-endian input.
func TestFromBytesBEOrderMatters(t *testing.T) {
	be := []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xFF}
	le := []byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	require.NotEqual(t, FromBytesBE(be), FromBytesBE(le))
	require.Equal(t, []uint64{0x01000000000000FF}, FromBytesBE(be))
}

func TestFromBytesBEPadding(t *testing.T) {
	require.Equal(t, []uint64{0xABCD}, FromBytesBE([]byte{0xAB, 0xCD}))
	require.Empty(t, FromBytesBE(nil))
}

func TestBigRoundTrip(t *testing.T) {
	v, ok := new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	require.True(t, ok)
	ls, err := FromBig(v, 4)
	require.NoError(t, err)
	require.Equal(t, 0, v.Cmp(ToBig(ls)))

	_, err = FromBig(v, 3)
	require.Error(t, err)
	_, err = FromBig(big.NewInt(-1), 4)
	require.Error(t, err)
}

func TestPad(t *testing.T) {
	got, err := Pad([]uint64{1, 2}, 4)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 0, 0}, got)

	_, err = Pad([]uint64{1, 2, 3}, 2)
	require.Error(t, err)
}

func TestBigFromBytesBE(t *testing.T) {
	be := []byte{0x12, 0x34, 0x56, 0x78}
	require.Equal(t, int64(0x12345678), BigFromBytesBE(be).Int64())
}
