// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package circuits

import (
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
	"github.com/stretchr/testify/require"

	"github.com/consensys/gnark-bench/word32"
)

func TestConditionalTraceAppliedSteps(t *testing.T) {
	const x0, rot = uint32(0x12345678), 14

	// y selects exactly the last y of the n steps
	xFinal, applied := ConditionalTrace(x0, 3, 8, rot)
	require.Equal(t, uint(3), applied.Count())
	for i := uint(0); i < 5; i++ {
		require.False(t, applied.Test(i))
	}
	for i := uint(5); i < 8; i++ {
		require.True(t, applied.Test(i))
	}
	require.Equal(t, word32.Iterate(x0, 3, rot, 0), xFinal)

	// y = n applies every step, matching the unconditional recurrence
	xFinal, applied = ConditionalTrace(x0, 8, 8, rot)
	require.Equal(t, uint(8), applied.Count())
	require.Equal(t, word32.Iterate(x0, 8, rot, 0), xFinal)

	// y = 1 applies only the final step
	xFinal, applied = ConditionalTrace(x0, 1, 8, rot)
	require.Equal(t, uint(1), applied.Count())
	require.True(t, applied.Test(7))
	require.Equal(t, word32.Step(x0, rot, 0), xFinal)
}

// The per-step decision uses 32-bit wrapping addition: a huge y wraps past
// zero and never exceeds n, so no step applies.
func TestConditionalTraceWrapsAt32Bits(t *testing.T) {
	xFinal, applied := ConditionalTrace(0x12345678, word32.Mask32, 4, 14)
	require.Equal(t, uint(0), applied.Count())
	require.Equal(t, uint32(0x12345678), xFinal)
}

func TestConditionalCircuitMatchesNative(t *testing.T) {
	params := IteratedFConditionalParams{Iterations: 8, RotRight: 14, Truncation: word32.TruncateMask}
	for _, y := range []uint32{1, 3, 8} {
		t.Run(fmt.Sprintf("y%d", y), func(t *testing.T) {
			e := &IteratedFConditional{
				Params:   params,
				Instance: IteratedFConditionalInstance{X0: u32ptr(0x12345678), Y: u32ptr(y)},
			}
			c, err := e.Build()
			require.NoError(t, err)
			w, err := e.PopulateWitness()
			require.NoError(t, err)
			require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
		})
	}
}

func TestConditionalCircuitAddTruncation(t *testing.T) {
	e := &IteratedFConditional{
		Params:   IteratedFConditionalParams{Iterations: 8, RotRight: 14, Truncation: word32.TruncateAdd},
		Instance: IteratedFConditionalInstance{X0: u32ptr(0x12345678), Y: u32ptr(5)},
	}
	c, err := e.Build()
	require.NoError(t, err)
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	require.NoError(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
}

// An out-of-range selector is assigned as given; the in-circuit range
// assertion rejects it before any recurrence constraint.
func TestConditionalOutOfRangeSelectorFails(t *testing.T) {
	params := IteratedFConditionalParams{Iterations: 8, RotRight: 14, Truncation: word32.TruncateMask}
	for _, y := range []uint32{0, 9} {
		t.Run(fmt.Sprintf("y%d", y), func(t *testing.T) {
			e := &IteratedFConditional{
				Params:   params,
				Instance: IteratedFConditionalInstance{X0: u32ptr(0x12345678), Y: u32ptr(y)},
			}
			c, err := e.Build()
			require.NoError(t, err)
			w, err := e.PopulateWitness()
			require.NoError(t, err)
			require.Error(t, test.IsSolved(c, w, ecc.BN254.ScalarField()))
		})
	}
}

func TestConditionalInvalidParams(t *testing.T) {
	bad := []IteratedFConditionalParams{
		{Iterations: 0, RotRight: 14, Truncation: word32.TruncateMask},
		{Iterations: 8, RotRight: 0, Truncation: word32.TruncateMask},
		{Iterations: 8, RotRight: 14, Truncation: word32.Truncation(99)},
	}
	for _, p := range bad {
		e := &IteratedFConditional{Params: p}
		_, err := e.Build()
		require.Error(t, err)
		_, err = e.PopulateWitness()
		require.Error(t, err)
	}
}

// The default selector must land in [1, N] whatever the seed produces.
func TestConditionalDefaultSelectorInRange(t *testing.T) {
	e := NewIteratedFConditional()
	w, err := e.PopulateWitness()
	require.NoError(t, err)
	y := w.(*iteratedFConditionalCircuit).Y.(uint32)
	require.GreaterOrEqual(t, y, uint32(1))
	require.LessOrEqual(t, y, uint32(e.Params.Iterations))
}
