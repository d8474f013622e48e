// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"
	gecdsa "github.com/consensys/gnark/std/signature/ecdsa"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-bench/internal/detrand"
	"github.com/consensys/gnark-bench/internal/limbs"
)

func TestEcdsaVerifySolves(t *testing.T) {
	e := NewEcdsaVerify()
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

func TestEcdsaVerifyMultipleSlots(t *testing.T) {
	e := &EcdsaVerify{Params: EcdsaVerifyParams{Signatures: 2}}
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	slots := w.(*ecdsaVerifyCircuit).Sigs
	require.Len(t, slots, 2)
	// each slot draws a fresh keypair and digest from the shared source
	require.NotEqual(t, slots[0].Z.Limbs, slots[1].Z.Limbs)
	require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

// Signs with a deterministic keypair and flips a single byte of one
// big-endian wire field before limb packing. Any such flip must be caught by
// the verification constraint.
func tamperedEcdsaSlot(t *testing.T, field string) ecdsaSignatureSlot {
	t.Helper()
	rng := detrand.New(detrand.DefaultSeed)
	sk, err := ecdsa.GenerateKey(rng)
	require.NoError(t, err)
	digest := rng.Bytes(fr.Bytes)
	sigBin, err := sk.Sign(digest, nil)
	require.NoError(t, err)
	var sig ecdsa.Signature
	_, err = sig.SetBytes(sigBin)
	require.NoError(t, err)

	r := append([]byte(nil), sig.R[:fr.Bytes]...)
	s := append([]byte(nil), sig.S[:fr.Bytes]...)
	pkxArr := sk.PublicKey.A.X.Bytes()
	pkyArr := sk.PublicKey.A.Y.Bytes()
	pkx := pkxArr[:]
	pky := pkyArr[:]

	switch field {
	case "digest":
		digest[5] ^= 1
	case "r":
		r[5] ^= 1
	case "s":
		s[5] ^= 1
	case "pk_x":
		pkx[5] ^= 1
	default:
		t.Fatalf("unknown field %q", field)
	}

	return ecdsaSignatureSlot{
		Z: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(digest)),
		R: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(r)),
		S: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(s)),
		Pub: gecdsa.PublicKey[emparams.Secp256k1Fp, emparams.Secp256k1Fr]{
			X: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pkx)),
			Y: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pky)),
		},
	}
}

func TestEcdsaVerifyTamperedWitnessFails(t *testing.T) {
	for _, field := range []string{"digest", "r", "s", "pk_x"} {
		t.Run(field, func(t *testing.T) {
			c, err := NewEcdsaVerify().Build()
			require.NoError(t, err)
			w := &ecdsaVerifyCircuit{Sigs: []ecdsaSignatureSlot{tamperedEcdsaSlot(t, field)}}
			require.Error(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
		})
	}
}

func TestEcdsaVerifyInvalidParams(t *testing.T) {
	for _, n := range []int{0, -1} {
		e := &EcdsaVerify{Params: EcdsaVerifyParams{Signatures: n}}
		_, err := e.Build()
		require.Error(t, err)
		_, err = e.PopulateWitness()
		require.Error(t, err)
	}
}
