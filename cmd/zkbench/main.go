// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// zkbench compiles, solves and optionally proves the benchmark circuit
// families.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/consensys/gnark-bench/circuits"
)

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
	With().Timestamp().Logger()

func main() {
	app := &cli.App{
		Name:  "zkbench",
		Usage: "benchmark harness for the circuit families",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the registered circuit families",
				Action: func(*cli.Context) error {
					fmt.Println(strings.Join(circuits.Names(), "\n"))
					return nil
				},
			},
			runCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("zkbench failed")
	}
}
