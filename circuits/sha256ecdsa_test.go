// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-bench/internal/detrand"
)

func TestSha256EcdsaVerifySolves(t *testing.T) {
	msg := []byte("The quick brown fox jumps over the lazy dog over and over again.")
	e := &Sha256EcdsaVerify{
		Params:   Sha256EcdsaVerifyParams{MessageLen: len(msg)},
		Instance: Sha256EcdsaVerifyInstance{Message: msg},
	}
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

func TestSha256EcdsaVerifyDefaultMessage(t *testing.T) {
	// same shape, message drawn from the deterministic source
	e := &Sha256EcdsaVerify{Params: Sha256EcdsaVerifyParams{MessageLen: 64}}
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

// Flipping one message byte after signing changes the in-circuit digest, so
// the signature no longer verifies.
func TestSha256EcdsaVerifyTamperedMessageFails(t *testing.T) {
	msg := make([]byte, 64)
	detrand.New(7).Read(msg)
	e := &Sha256EcdsaVerify{
		Params:   Sha256EcdsaVerifyParams{MessageLen: len(msg)},
		Instance: Sha256EcdsaVerifyInstance{Message: msg},
	}
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	cw := w.(*sha256EcdsaVerifyCircuit)
	cw.Msg[0] = uints.NewU8(msg[0] ^ 1)
	require.Error(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

func TestSha256EcdsaVerifyMessageLengthMismatch(t *testing.T) {
	e := &Sha256EcdsaVerify{
		Params:   Sha256EcdsaVerifyParams{MessageLen: 32},
		Instance: Sha256EcdsaVerifyInstance{Message: make([]byte, 16)},
	}
	_, err := e.PopulateWitness()
	require.Error(t, err)
	require.ErrorContains(t, err, "circuit expects")
}

func TestSha256EcdsaVerifyInvalidParams(t *testing.T) {
	for _, n := range []int{0, -1} {
		e := &Sha256EcdsaVerify{Params: Sha256EcdsaVerifyParams{MessageLen: n}}
		_, err := e.Build()
		require.Error(t, err)
		_, err = e.PopulateWitness()
		require.Error(t, err)
	}
}
