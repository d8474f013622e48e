// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"
	gecdsa "github.com/consensys/gnark/std/signature/ecdsa"

	"github.com/consensys/gnark-bench/internal/detrand"
	"github.com/consensys/gnark-bench/internal/limbs"
)

// EcdsaVerifyParams fixes the number of signature slots of the verification
// circuit.
type EcdsaVerifyParams struct {
	Signatures int
}

func (p EcdsaVerifyParams) validate() error {
	if p.Signatures < 1 {
		return fmt.Errorf("signature count must be positive, got %d", p.Signatures)
	}
	return nil
}

// EcdsaVerifyInstance carries the randomness source used to derive the
// keypairs and digests. The signatures themselves are always generated; the
// circuit benchmarks verification, not signing.
type EcdsaVerifyInstance struct {
	Rand *detrand.Source
}

// EcdsaVerify verifies pre-hashed secp256k1 ECDSA signatures: for every
// slot, the digest, signature and public key are wired as inputs and the
// verification predicate's validity bit is asserted to be 1.
type EcdsaVerify struct {
	Params   EcdsaVerifyParams
	Instance EcdsaVerifyInstance
}

// NewEcdsaVerify returns the default single-signature shape.
func NewEcdsaVerify() *EcdsaVerify {
	return &EcdsaVerify{Params: EcdsaVerifyParams{Signatures: 1}}
}

// Build implements [Example].
func (e *EcdsaVerify) Build() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("ecdsa-verify params: %w", err)
	}
	return &ecdsaVerifyCircuit{Sigs: make([]ecdsaSignatureSlot, e.Params.Signatures)}, nil
}

// PopulateWitness implements [Example]. Every slot gets a fresh keypair and
// digest from the deterministic source; signing failures propagate.
func (e *EcdsaVerify) PopulateWitness() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("ecdsa-verify params: %w", err)
	}
	rng := e.Instance.Rand
	if rng == nil {
		rng = detrand.New(detrand.DefaultSeed)
	}
	slots := make([]ecdsaSignatureSlot, e.Params.Signatures)
	for i := range slots {
		slot, err := signSlot(rng)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		slots[i] = slot
	}
	return &ecdsaVerifyCircuit{Sigs: slots}, nil
}

// ParamSummary implements [Example].
func (e *EcdsaVerify) ParamSummary() string {
	return fmt.Sprintf("%ds", e.Params.Signatures)
}

// signSlot derives a keypair and digest from rng, signs natively and packs
// the big-endian signature bytes into the little-endian limb layout of the
// non-native field elements. Each field is byte-reversed independently.
func signSlot(rng *detrand.Source) (ecdsaSignatureSlot, error) {
	sk, err := ecdsa.GenerateKey(rng)
	if err != nil {
		return ecdsaSignatureSlot{}, fmt.Errorf("generate key: %w", err)
	}
	digest := rng.Bytes(fr.Bytes)

	// the digest is already the value to sign; no extra hashing
	sigBin, err := sk.Sign(digest, nil)
	if err != nil {
		return ecdsaSignatureSlot{}, fmt.Errorf("sign: %w", err)
	}
	var sig ecdsa.Signature
	if _, err := sig.SetBytes(sigBin); err != nil {
		return ecdsaSignatureSlot{}, fmt.Errorf("decode signature: %w", err)
	}

	pkx := sk.PublicKey.A.X.Bytes()
	pky := sk.PublicKey.A.Y.Bytes()

	return ecdsaSignatureSlot{
		Z: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(digest)),
		R: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(sig.R[:fr.Bytes])),
		S: emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(sig.S[:fr.Bytes])),
		Pub: gecdsa.PublicKey[emparams.Secp256k1Fp, emparams.Secp256k1Fr]{
			X: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pkx[:])),
			Y: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pky[:])),
		},
	}, nil
}

type ecdsaSignatureSlot struct {
	Z   emulated.Element[emparams.Secp256k1Fr]
	R   emulated.Element[emparams.Secp256k1Fr]
	S   emulated.Element[emparams.Secp256k1Fr]
	Pub gecdsa.PublicKey[emparams.Secp256k1Fp, emparams.Secp256k1Fr]
}

type ecdsaVerifyCircuit struct {
	Sigs []ecdsaSignatureSlot
}

func (c *ecdsaVerifyCircuit) Define(api frontend.API) error {
	curveParams := sw_emulated.GetCurveParams[emparams.Secp256k1Fp]()
	for i := range c.Sigs {
		slot := &c.Sigs[i]
		sig := gecdsa.Signature[emparams.Secp256k1Fr]{R: slot.R, S: slot.S}
		valid := slot.Pub.IsValid(api, curveParams, &slot.Z, &sig)
		api.AssertIsEqual(valid, 1)
	}
	return nil
}
