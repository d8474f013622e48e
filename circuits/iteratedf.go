// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/gnark-bench/internal/detrand"
	"github.com/consensys/gnark-bench/word32"
)

// Default shapes of the unconditional recurrence benchmarks. Rotation amount
// and truncation mechanism are orthogonal knobs of the same recurrence, not
// separate circuit families.
const (
	DefaultIteratedFIterations      = 1 << 13
	DefaultIteratedFAddIterations   = 1 << 15
	DefaultIteratedFShiftIterations = 1 << 13
)

// IteratedFParams fixes the shape of an unconditional recurrence circuit.
type IteratedFParams struct {
	// Iterations is the number of applications of f baked into the circuit.
	Iterations int
	// RotRight is the rotation amount of the XORed term, in [1, 31].
	RotRight int
	// ShiftRight, when non-zero, adds a right-shifted term to the XOR.
	ShiftRight int
	// Truncation selects the 32-bit truncation mechanism.
	Truncation word32.Truncation
}

func (p IteratedFParams) validate() error {
	if p.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative, got %d", p.Iterations)
	}
	if p.RotRight < 1 || p.RotRight > 31 {
		return fmt.Errorf("rotation amount must be in [1, 31], got %d", p.RotRight)
	}
	if p.ShiftRight < 0 || p.ShiftRight > 31 {
		return fmt.Errorf("shift amount must be in [0, 31], got %d", p.ShiftRight)
	}
	if !p.Truncation.Valid() {
		return fmt.Errorf("unknown truncation mechanism %d", p.Truncation)
	}
	return nil
}

// IteratedFInstance carries the run-time inputs of the recurrence.
type IteratedFInstance struct {
	// X0 is the 32-bit initial value. When nil, a deterministic
	// pseudo-random value is drawn from Rand.
	X0 *uint32
	// Rand overrides the default seed-42 source used for unset inputs.
	Rand *detrand.Source
}

// IteratedF applies f(x) = (x·x mod 2^32) ⊕ ROTR(x) [⊕ SHR(x)] a fixed
// number of times starting from X0 and asserts the declared final value.
type IteratedF struct {
	Params   IteratedFParams
	Instance IteratedFInstance
}

// NewIteratedF returns the original benchmark shape: mask truncation,
// rotation 3, 2^13 iterations.
func NewIteratedF() *IteratedF {
	return &IteratedF{Params: IteratedFParams{
		Iterations: DefaultIteratedFIterations,
		RotRight:   3,
		Truncation: word32.TruncateMask,
	}}
}

// NewIteratedFAdd returns the add-truncation shape: rotation 14, 2^15
// iterations, truncation through 32-bit addition.
func NewIteratedFAdd() *IteratedF {
	return &IteratedF{Params: IteratedFParams{
		Iterations: DefaultIteratedFAddIterations,
		RotRight:   14,
		Truncation: word32.TruncateAdd,
	}}
}

// NewIteratedFShift returns the shifted shape: rotation 14 plus a
// right-shift-3 term, 2^13 iterations, mask truncation.
func NewIteratedFShift() *IteratedF {
	return &IteratedF{Params: IteratedFParams{
		Iterations: DefaultIteratedFShiftIterations,
		RotRight:   14,
		ShiftRight: 3,
		Truncation: word32.TruncateMask,
	}}
}

// Build implements [Example].
func (e *IteratedF) Build() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-f params: %w", err)
	}
	return &iteratedFCircuit{params: e.Params}, nil
}

// PopulateWitness implements [Example]. The final value is recomputed with
// native wrapping arithmetic, mirroring the circuit step for step.
func (e *IteratedF) PopulateWitness() (frontend.Circuit, error) {
	if err := e.Params.validate(); err != nil {
		return nil, fmt.Errorf("iterated-f params: %w", err)
	}
	x0 := resolveWord(e.Instance.X0, e.Instance.Rand)
	xFinal := word32.Iterate(x0, e.Params.Iterations, e.Params.RotRight, e.Params.ShiftRight)
	return &iteratedFCircuit{
		X0:     x0,
		XFinal: xFinal,
		params: e.Params,
	}, nil
}

// ParamSummary implements [Example].
func (e *IteratedF) ParamSummary() string {
	return fmt.Sprintf("%di", e.Params.Iterations)
}

type iteratedFCircuit struct {
	X0     frontend.Variable `gnark:",public"`
	XFinal frontend.Variable `gnark:",public"`

	params IteratedFParams
}

func (c *iteratedFCircuit) Define(api frontend.API) error {
	g := word32.NewGadget(api, c.params.Truncation)
	// the initial value must be a 32-bit word
	g.AssertWord32(c.X0)

	xb := g.Bits32(c.X0)
	for i := 0; i < c.params.Iterations; i++ {
		xb = g.Step(xb, c.params.RotRight, c.params.ShiftRight)
	}

	api.AssertIsEqual(g.FromBits(xb), c.XFinal)
	return nil
}
