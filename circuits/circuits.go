// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package circuits defines the benchmark circuit families.
//
// Every family follows the same build/populate duality: Build emits the
// symbolic constraint description for a fixed parameter shape, and
// PopulateWitness independently recomputes the same recurrence (or signs the
// same data) over concrete values to produce an assignment satisfying every
// emitted constraint. Keeping the two sides in lock-step is the correctness
// contract of this package; the unit tests solve each family against its own
// witness and against tampered ones.
//
// Parameters fix the circuit shape at build time and are immutable
// afterwards. Instances carry run-time data; any field left unset defaults
// to a value drawn from a fresh deterministic source seeded with
// [detrand.DefaultSeed], so repeated populate calls produce byte-identical
// witnesses.
package circuits

import (
	"sort"

	"github.com/consensys/gnark/frontend"

	"github.com/consensys/gnark-bench/internal/detrand"
)

// Example is the contract every circuit family implements. It is consumed by
// the benchmark harness.
type Example interface {
	// Build returns the circuit skeleton whose shape is fixed by the family
	// parameters. It fails on invalid parameters before emitting anything.
	Build() (frontend.Circuit, error)
	// PopulateWitness returns a complete assignment for the circuit returned
	// by Build, computed by the native mirror of the in-circuit logic. It
	// fails only when witness data cannot be produced (for example a signing
	// failure); no partial assignment is ever returned.
	PopulateWitness() (frontend.Circuit, error)
	// ParamSummary returns a short parameter label for reporting.
	ParamSummary() string
}

// Registry maps family names to constructors with default parameters.
func Registry() map[string]func() Example {
	return map[string]func() Example{
		"iterated-f":             func() Example { return NewIteratedF() },
		"iterated-f-add":         func() Example { return NewIteratedFAdd() },
		"iterated-f-shift":       func() Example { return NewIteratedFShift() },
		"iterated-f-conditional": func() Example { return NewIteratedFConditional() },
		"iterated-g":             func() Example { return NewIteratedG() },
		"iterated-g32":           func() Example { return NewIteratedG32() },
		"ecdsa-verify":           func() Example { return NewEcdsaVerify() },
		"sha256-ecdsa-verify":    func() Example { return NewSha256EcdsaVerify() },
	}
}

// Names returns the registered family names in stable order.
func Names() []string {
	reg := Registry()
	names := make([]string, 0, len(reg))
	for name := range reg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveWord returns *v when supplied, otherwise the next word from rng,
// falling back to a fresh default-seeded source.
func resolveWord(v *uint32, rng *detrand.Source) uint32 {
	if v != nil {
		return *v
	}
	if rng == nil {
		rng = detrand.New(detrand.DefaultSeed)
	}
	return rng.Uint32()
}
