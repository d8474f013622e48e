// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/fxamacker/cbor/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/gnark-bench/circuits"
	"github.com/consensys/gnark-bench/internal/detrand"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "compile and solve one circuit family, or all of them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "circuit", Value: "all", Usage: "family name, or 'all'"},
			&cli.IntFlag{Name: "iterations", Usage: "override the iteration count"},
			&cli.Uint64Flag{Name: "x0", Usage: "initial 32-bit value of the recurrence"},
			&cli.Uint64Flag{Name: "y", Usage: "conditional selector in [1, iterations]"},
			&cli.IntFlag{Name: "signatures", Usage: "signature slot count"},
			&cli.IntFlag{Name: "msg-len", Usage: "message length in bytes"},
			&cli.Uint64Flag{Name: "seed", Value: detrand.DefaultSeed, Usage: "seed for unspecified inputs"},
			&cli.BoolFlag{Name: "prove", Usage: "run Groth16 setup, prove and verify"},
			&cli.IntFlag{Name: "parallel", Value: 1, Usage: "number of families processed concurrently"},
			&cli.PathFlag{Name: "report", Usage: "write CBOR-encoded run records to this file"},
		},
		Action: runAction,
	}
}

// runRecord is one benchmark result, CBOR-encoded into the report file.
type runRecord struct {
	Circuit     string `cbor:"circuit"`
	Params      string `cbor:"params"`
	Constraints int    `cbor:"constraints"`
	CompileMS   int64  `cbor:"compile_ms"`
	PopulateMS  int64  `cbor:"populate_ms"`
	SolveMS     int64  `cbor:"solve_ms"`
	Proved      bool   `cbor:"proved"`
	SetupMS     int64  `cbor:"setup_ms,omitempty"`
	ProveMS     int64  `cbor:"prove_ms,omitempty"`
	VerifyMS    int64  `cbor:"verify_ms,omitempty"`
}

func runAction(c *cli.Context) error {
	names := circuits.Names()
	if sel := c.String("circuit"); sel != "all" {
		if _, ok := circuits.Registry()[sel]; !ok {
			return fmt.Errorf("unknown circuit %q, expected one of: all, %s", sel, strings.Join(names, ", "))
		}
		names = []string{sel}
	}

	limit := c.Int("parallel")
	if limit < 1 {
		limit = 1
	}

	// runs are independent; no state crosses family instances
	records := make([]runRecord, len(names))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			rec, err := runOne(c, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if out := c.Path("report"); out != "" {
		if err := writeReport(out, records); err != nil {
			return err
		}
		log.Info().Str("path", out).Msg("report written")
	}
	return nil
}

// newExample instantiates a family with its defaults, then applies the
// command-line overrides relevant to it.
func newExample(c *cli.Context, name string) (circuits.Example, error) {
	e := circuits.Registry()[name]()

	var rand *detrand.Source
	if c.IsSet("seed") {
		rand = detrand.New(c.Uint64("seed"))
	}
	var x0 *uint32
	if c.IsSet("x0") {
		if c.Uint64("x0") > uint64(^uint32(0)) {
			return nil, fmt.Errorf("x0 %#x does not fit in 32 bits", c.Uint64("x0"))
		}
		v := uint32(c.Uint64("x0"))
		x0 = &v
	}

	switch e := e.(type) {
	case *circuits.IteratedF:
		if c.IsSet("iterations") {
			e.Params.Iterations = c.Int("iterations")
		}
		e.Instance.X0 = x0
		e.Instance.Rand = rand
	case *circuits.IteratedFConditional:
		if c.IsSet("iterations") {
			e.Params.Iterations = c.Int("iterations")
		}
		if c.IsSet("y") {
			if c.Uint64("y") > uint64(^uint32(0)) {
				return nil, fmt.Errorf("y %#x does not fit in 32 bits", c.Uint64("y"))
			}
			v := uint32(c.Uint64("y"))
			e.Instance.Y = &v
		}
		e.Instance.X0 = x0
		e.Instance.Rand = rand
	case *circuits.IteratedG:
		if c.IsSet("iterations") {
			e.Params.Iterations = c.Int("iterations")
		}
		e.Instance.X0 = x0
		e.Instance.Rand = rand
	case *circuits.EcdsaVerify:
		if c.IsSet("signatures") {
			e.Params.Signatures = c.Int("signatures")
		}
		e.Instance.Rand = rand
	case *circuits.Sha256EcdsaVerify:
		if c.IsSet("msg-len") {
			e.Params.MessageLen = c.Int("msg-len")
		}
		e.Instance.Rand = rand
	}
	return e, nil
}

func runOne(c *cli.Context, name string) (runRecord, error) {
	e, err := newExample(c, name)
	if err != nil {
		return runRecord{}, err
	}
	lg := log.With().Str("circuit", name).Str("params", e.ParamSummary()).Logger()

	skeleton, err := e.Build()
	if err != nil {
		return runRecord{}, fmt.Errorf("build: %w", err)
	}
	start := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, skeleton)
	if err != nil {
		return runRecord{}, fmt.Errorf("compile: %w", err)
	}
	compile := time.Since(start)
	lg.Info().Int("constraints", ccs.GetNbConstraints()).Dur("took", compile).Msg("compiled")

	start = time.Now()
	assignment, err := e.PopulateWitness()
	if err != nil {
		return runRecord{}, fmt.Errorf("populate witness: %w", err)
	}
	populate := time.Since(start)

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return runRecord{}, fmt.Errorf("new witness: %w", err)
	}
	start = time.Now()
	if _, err := ccs.Solve(w); err != nil {
		return runRecord{}, fmt.Errorf("solve: %w", err)
	}
	solve := time.Since(start)
	lg.Info().Dur("took", solve).Msg("solved")

	rec := runRecord{
		Circuit:     name,
		Params:      e.ParamSummary(),
		Constraints: ccs.GetNbConstraints(),
		CompileMS:   compile.Milliseconds(),
		PopulateMS:  populate.Milliseconds(),
		SolveMS:     solve.Milliseconds(),
	}

	if c.Bool("prove") {
		start = time.Now()
		pk, vk, err := groth16.Setup(ccs)
		if err != nil {
			return runRecord{}, fmt.Errorf("setup: %w", err)
		}
		rec.SetupMS = time.Since(start).Milliseconds()

		start = time.Now()
		proof, err := groth16.Prove(ccs, pk, w)
		if err != nil {
			return runRecord{}, fmt.Errorf("prove: %w", err)
		}
		rec.ProveMS = time.Since(start).Milliseconds()

		pub, err := w.Public()
		if err != nil {
			return runRecord{}, fmt.Errorf("public witness: %w", err)
		}
		start = time.Now()
		if err := groth16.Verify(proof, vk, pub); err != nil {
			return runRecord{}, fmt.Errorf("verify: %w", err)
		}
		rec.VerifyMS = time.Since(start).Milliseconds()
		rec.Proved = true
		lg.Info().Dur("prove", time.Duration(rec.ProveMS)*time.Millisecond).Msg("proved and verified")
	}

	return rec, nil
}

func writeReport(path string, records []runRecord) error {
	data, err := cbor.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
