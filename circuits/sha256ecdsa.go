// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"crypto/sha256"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/secp256k1/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/conversion"
	"github.com/consensys/gnark/std/hash/sha2"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"
	"github.com/consensys/gnark/std/math/uints"
	gecdsa "github.com/consensys/gnark/std/signature/ecdsa"

	"github.com/consensys/gnark-bench/internal/detrand"
	"github.com/consensys/gnark-bench/internal/limbs"
)

// DefaultSha256MessageLen is the default message length in bytes.
const DefaultSha256MessageLen = 2048

// Sha256EcdsaVerifyParams fixes the message length of the combined
// hash-and-verify circuit. The length is part of the circuit shape.
type Sha256EcdsaVerifyParams struct {
	MessageLen int
}

func (p Sha256EcdsaVerifyParams) validate() error {
	if p.MessageLen < 1 {
		return fmt.Errorf("message length must be positive, got %d", p.MessageLen)
	}
	return nil
}

// Sha256EcdsaVerifyInstance carries the run-time message. When Message is
// nil a deterministic one is drawn; when set, its length must match the
// circuit's message length.
type Sha256EcdsaVerifyInstance struct {
	Message []byte
	Rand    *detrand.Source
}

// Sha256EcdsaVerify hashes a fixed-length message with the in-circuit
// SHA-256 gadget and verifies a secp256k1 ECDSA signature over the digest.
// Unlike [EcdsaVerify], the digest is not an input; it is recomputed inside
// the circuit.
type Sha256EcdsaVerify struct {
	Params   Sha256EcdsaVerifyParams
	Instance Sha256EcdsaVerifyInstance
}

// NewSha256EcdsaVerify returns the default 2048-byte-message shape.
func NewSha256EcdsaVerify() *Sha256EcdsaVerify {
	return &Sha256EcdsaVerify{Params: Sha256EcdsaVerifyParams{MessageLen: DefaultSha256MessageLen}}
}

// Build implements [Example].
func (e *Sha256EcdsaVerify) Build() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("sha256-ecdsa-verify params: %w", err)
	}
	return &sha256EcdsaVerifyCircuit{Msg: make([]uints.U8, e.Params.MessageLen)}, nil
}

// PopulateWitness implements [Example]. The message is hashed natively, the
// digest signed with a deterministic keypair, and the signature bytes packed
// into limb layout.
func (e *Sha256EcdsaVerify) PopulateWitness() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("sha256-ecdsa-verify params: %w", err)
	}
	rng := e.Instance.Rand
	if rng == nil {
		rng = detrand.New(detrand.DefaultSeed)
	}
	msg := e.Instance.Message
	if msg == nil {
		msg = rng.Bytes(e.Params.MessageLen)
	} else if len(msg) != e.Params.MessageLen {
		return nil, fmt.Errorf("message has %d bytes, circuit expects %d", len(msg), e.Params.MessageLen)
	}
	digest := sha256.Sum256(msg)

	sk, err := ecdsa.GenerateKey(rng)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	sigBin, err := sk.Sign(digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	var sig ecdsa.Signature
	if _, err := sig.SetBytes(sigBin); err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}

	pkx := sk.PublicKey.A.X.Bytes()
	pky := sk.PublicKey.A.Y.Bytes()

	return &sha256EcdsaVerifyCircuit{
		Msg: uints.NewU8Array(msg),
		R:   emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(sig.R[:fr.Bytes])),
		S:   emulated.ValueOf[emparams.Secp256k1Fr](limbs.BigFromBytesBE(sig.S[:fr.Bytes])),
		Pub: gecdsa.PublicKey[emparams.Secp256k1Fp, emparams.Secp256k1Fr]{
			X: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pkx[:])),
			Y: emulated.ValueOf[emparams.Secp256k1Fp](limbs.BigFromBytesBE(pky[:])),
		},
	}, nil
}

// ParamSummary implements [Example].
func (e *Sha256EcdsaVerify) ParamSummary() string {
	return fmt.Sprintf("%db", e.Params.MessageLen)
}

type sha256EcdsaVerifyCircuit struct {
	Msg []uints.U8
	R   emulated.Element[emparams.Secp256k1Fr]
	S   emulated.Element[emparams.Secp256k1Fr]
	Pub gecdsa.PublicKey[emparams.Secp256k1Fp, emparams.Secp256k1Fr]
}

func (c *sha256EcdsaVerifyCircuit) Define(api frontend.API) error {
	h, err := sha2.New(api)
	if err != nil {
		return fmt.Errorf("sha2 gadget: %w", err)
	}
	h.Write(c.Msg)
	digest := h.Sum()
	if len(digest) != 32 {
		return fmt.Errorf("unexpected digest length %d", len(digest))
	}

	// the digest bytes are big-endian; they are interpreted modulo the group
	// order, matching native signing which does not reduce the digest either
	z, err := conversion.BytesToEmulated[emparams.Secp256k1Fr](api, digest, conversion.WithAllowOverflow())
	if err != nil {
		return fmt.Errorf("digest to scalar: %w", err)
	}

	sig := gecdsa.Signature[emparams.Secp256k1Fr]{R: c.R, S: c.S}
	valid := c.Pub.IsValid(api, sw_emulated.GetCurveParams[emparams.Secp256k1Fp](), z, &sig)
	api.AssertIsEqual(valid, 1)
	return nil
}
