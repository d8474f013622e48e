// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/emulated/emparams"

	"github.com/consensys/gnark-bench/pmfield"
	"github.com/consensys/gnark-bench/word32"
)

// Default shapes of the squaring-chain benchmarks.
const (
	DefaultIteratedGIterations   = 1 << 14
	DefaultIteratedG32Iterations = 1 << 15
)

// GField selects the pseudo-Mersenne field of the squaring chain.
type GField uint8

const (
	// GFieldSecp256k1 squares in the secp256k1 scalar field (2^256 − s),
	// scaling f(x) by the fixed constant before each squaring.
	GFieldSecp256k1 GField = iota
	// GFieldSmall32 squares in the 32-bit field 2^32 − 5, unscaled.
	GFieldSmall32
)

func (f GField) String() string {
	switch f {
	case GFieldSecp256k1:
		return "secp256k1fr"
	case GFieldSmall32:
		return "2^32-5"
	default:
		return "unknown"
	}
}

// IteratedGParams fixes the shape of a squaring-chain circuit.
type IteratedGParams struct {
	Iterations int
	RotRight   int
	Truncation word32.Truncation
	Field      GField
}

func (p IteratedGParams) validate() error {
	if p.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", p.Iterations)
	}
	if p.RotRight < 1 || p.RotRight > 31 {
		return fmt.Errorf("rotation amount must be in [1, 31], got %d", p.RotRight)
	}
	if !p.Truncation.Valid() {
		return fmt.Errorf("unknown truncation mechanism %d", p.Truncation)
	}
	if p.Field != GFieldSecp256k1 && p.Field != GFieldSmall32 {
		return fmt.Errorf("unknown field %d", p.Field)
	}
	return nil
}

func (p IteratedGParams) prime() pmfield.PseudoMersenne {
	if p.Field == GFieldSmall32 {
		return pmfield.Small
	}
	return pmfield.Secp256k1Scalar
}

// scale returns the fixed scaling constant, or nil when the chain is
// unscaled.
func (p IteratedGParams) scale() *big.Int {
	if p.Field == GFieldSecp256k1 {
		return pmfield.FScale()
	}
	return nil
}

// IteratedG applies g(x) = prefix32((f(x)·scale)^2 mod p) for a fixed number
// of steps: the 32-bit recurrence output is embedded as the least-significant
// limb of a zero-padded field element, optionally scaled, then squared in the
// field. The declared output is the masked low 32 bits of the final value.
type IteratedG struct {
	Params   IteratedGParams
	Instance IteratedFInstance
}

// NewIteratedG returns the 256-bit benchmark shape: secp256k1 scalar field,
// scaled, rotation 14, 2^14 iterations.
func NewIteratedG() *IteratedG {
	return &IteratedG{Params: IteratedGParams{
		Iterations: DefaultIteratedGIterations,
		RotRight:   14,
		Truncation: word32.TruncateMask,
		Field:      GFieldSecp256k1,
	}}
}

// NewIteratedG32 returns the small-field benchmark shape: modulus 2^32 − 5,
// unscaled, rotation 14, 2^15 iterations.
func NewIteratedG32() *IteratedG {
	return &IteratedG{Params: IteratedGParams{
		Iterations: DefaultIteratedG32Iterations,
		RotRight:   14,
		Truncation: word32.TruncateMask,
		Field:      GFieldSmall32,
	}}
}

// Build implements [Example].
func (e *IteratedG) Build() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-g params: %w", err)
	}
	switch e.Params.Field {
	case GFieldSmall32:
		return &iteratedGCircuit[pmfield.Small32Fr]{params: e.Params}, nil
	default:
		return &iteratedGCircuit[emparams.Secp256k1Fr]{params: e.Params}, nil
	}
}

// PopulateWitness implements [Example]. The chain is recomputed over
// big integers with the same modulus, scale and low-word extraction.
func (e *IteratedG) PopulateWitness() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-g params: %w", err)
	}
	fld, err := pmfield.New(e.Params.prime())
	if err != nil {
		return nil, fmt.Errorf("iterated-g field: %w", err)
	}
	x0 := resolveWord(e.Instance.X0, e.Instance.Rand)
	scale := e.Params.scale()

	mask := new(big.Int).SetUint64(word32.Mask32)
	low32 := func(v *big.Int) uint32 {
		return uint32(new(big.Int).And(v, mask).Uint64())
	}

	// keep the running value canonically reduced, like the circuit does
	// before every low-word extraction
	x := fld.Reduce(new(big.Int).SetUint64(uint64(x0)))
	for i := 0; i < e.Params.Iterations; i++ {
		fv := word32.Step(low32(x), e.Params.RotRight, 0)
		fb := new(big.Int).SetUint64(uint64(fv))
		if scale != nil {
			fb = fld.Mul(fb, scale)
		}
		x = fld.Square(fb)
	}
	xFinal := uint64(low32(x))

	switch e.Params.Field {
	case GFieldSmall32:
		return &iteratedGCircuit[pmfield.Small32Fr]{X0: x0, XFinal: xFinal, params: e.Params}, nil
	default:
		return &iteratedGCircuit[emparams.Secp256k1Fr]{X0: x0, XFinal: xFinal, params: e.Params}, nil
	}
}

// ParamSummary implements [Example].
func (e *IteratedG) ParamSummary() string {
	return fmt.Sprintf("%di", e.Params.Iterations)
}

type iteratedGCircuit[T emulated.FieldParams] struct {
	X0     frontend.Variable `gnark:",public"`
	XFinal frontend.Variable `gnark:",public"`

	params IteratedGParams
}

func (c *iteratedGCircuit[T]) Define(api frontend.API) error {
	g := word32.NewGadget(api, c.params.Truncation)
	g.AssertWord32(c.X0)

	f, err := emulated.NewField[T](api)
	if err != nil {
		return fmt.Errorf("emulated field: %w", err)
	}

	var scale *emulated.Element[T]
	if s := c.params.scale(); s != nil {
		sc := emulated.ValueOf[T](s)
		scale = &sc
	}

	// embed x0 as the least-significant bits of a field element; the
	// remaining limbs are zero
	x := f.FromBits(g.Bits32(c.X0)...)

	for i := 0; i < c.params.Iterations; i++ {
		// f over the low 32 bits of the reduced value
		low := f.ToBits(f.Reduce(x))[:32]
		fb := g.Step(low, c.params.RotRight, 0)
		fe := f.FromBits(fb...)
		if scale != nil {
			fe = f.Mul(fe, scale)
		}
		x = f.Mul(fe, fe)
	}

	// prefix32: the masked least-significant limb of the final value
	prefix := g.FromBits(f.ToBits(f.Reduce(x))[:32])
	api.AssertIsEqual(prefix, c.XFinal)
	return nil
}
