// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/cmp"

	"github.com/consensys/gnark-bench/internal/detrand"
	"github.com/consensys/gnark-bench/word32"
)

// DefaultConditionalIterations is the default step count of the conditional
// recurrence benchmark.
const DefaultConditionalIterations = 1 << 13

// IteratedFConditionalParams fixes the shape of the conditional recurrence.
type IteratedFConditionalParams struct {
	Iterations int
	RotRight   int
	Truncation word32.Truncation
}

func (p IteratedFConditionalParams) validate() error {
	if p.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", p.Iterations)
	}
	if p.Iterations > word32.Mask32 {
		return fmt.Errorf("iterations must fit in 32 bits, got %d", p.Iterations)
	}
	if p.RotRight < 1 || p.RotRight > 31 {
		return fmt.Errorf("rotation amount must be in [1, 31], got %d", p.RotRight)
	}
	if !p.Truncation.Valid() {
		return fmt.Errorf("unknown truncation mechanism %d", p.Truncation)
	}
	return nil
}

// IteratedFConditionalInstance carries the run-time inputs. Y selects how
// many trailing steps apply f; it must lie in [1, Iterations] for the
// circuit to be satisfiable.
type IteratedFConditionalInstance struct {
	X0   *uint32
	Y    *uint32
	Rand *detrand.Source
}

// IteratedFConditional mirrors [IteratedF] with an additional selector y in
// {1, ..., N}: at step i in [1, N], x is updated to f(x) iff y + i > N.
// Exactly the last y steps apply f; the first N − y leave x unchanged, so
// y = N is equivalent to the unconditional recurrence.
type IteratedFConditional struct {
	Params   IteratedFConditionalParams
	Instance IteratedFConditionalInstance
}

// NewIteratedFConditional returns the default benchmark shape: rotation 14,
// 2^13 iterations, mask truncation.
func NewIteratedFConditional() *IteratedFConditional {
	return &IteratedFConditional{Params: IteratedFConditionalParams{
		Iterations: DefaultConditionalIterations,
		RotRight:   14,
		Truncation: word32.TruncateMask,
	}}
}

// Build implements [Example].
func (e *IteratedFConditional) Build() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-f-conditional params: %w", err)
	}
	return &iteratedFConditionalCircuit{params: e.Params}, nil
}

// PopulateWitness implements [Example]. An out-of-range Y is assigned as
// given; the in-circuit range assertion is what rejects it.
func (e *IteratedFConditional) PopulateWitness() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-f-conditional params: %w", err)
	}
	rng := e.Instance.Rand
	if rng == nil {
		rng = detrand.New(detrand.DefaultSeed)
	}
	x0 := resolveWord(e.Instance.X0, rng)
	var y uint32
	if e.Instance.Y != nil {
		y = *e.Instance.Y
	} else {
		y = rng.Uint32n(uint32(e.Params.Iterations)) + 1
	}

	xFinal, _ := ConditionalTrace(x0, y, e.Params.Iterations, e.Params.RotRight)
	return &iteratedFConditionalCircuit{
		X0:     x0,
		Y:      y,
		XFinal: xFinal,
		params: e.Params,
	}, nil
}

// ParamSummary implements [Example].
func (e *IteratedFConditional) ParamSummary() string {
	return fmt.Sprintf("%di", e.Params.Iterations)
}

// ConditionalTrace is the native mirror of the conditional recurrence. It
// returns the final value together with the set of step indices (zero-based)
// that applied f. The per-step decision uses a 32-bit wrapping add exactly
// like the circuit.
func ConditionalTrace(x0, y uint32, n, rot int) (uint32, *bitset.BitSet) {
	applied := bitset.New(uint(n))
	x := x0
	for i := 1; i <= n; i++ {
		if y+uint32(i) > uint32(n) {
			x = word32.Step(x, rot, 0)
			applied.Set(uint(i - 1))
		}
	}
	return x, applied
}

type iteratedFConditionalCircuit struct {
	X0     frontend.Variable `gnark:",public"`
	Y      frontend.Variable `gnark:",public"`
	XFinal frontend.Variable `gnark:",public"`

	params IteratedFConditionalParams
}

func (c *iteratedFConditionalCircuit) Define(api frontend.API) error {
	g := word32.NewGadget(api, c.params.Truncation)
	g.AssertWord32(c.X0)
	g.AssertWord32(c.Y)

	n := c.params.Iterations

	// The selector range check comes before any recurrence constraint: an
	// out-of-range y must fail here first.
	bc := cmp.NewBoundedComparator(api, new(big.Int).Lsh(big.NewInt(1), 33), false)
	geOne := bc.IsLessEq(1, c.Y)
	leN := bc.IsLessEq(c.Y, n)
	api.AssertIsEqual(api.And(geOne, leN), 1)

	xb := g.Bits32(c.X0)
	for i := 1; i <= n; i++ {
		next := g.Step(xb, c.params.RotRight, 0)
		// apply = (y + i) mod 2^32 > n
		yPlusI := g.Truncate(api.Add(c.Y, i))
		apply := bc.IsLess(n, yPlusI)
		for j := range xb {
			xb[j] = api.Select(apply, next[j], xb[j])
		}
	}

	api.AssertIsEqual(g.FromBits(xb), c.XFinal)
	return nil
}
