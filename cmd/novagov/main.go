// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// novagov runs and inspects governance plugins of Nova DAOs.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
	datadirFlag = &cli.StringFlag{
		Name:  "datadir",
		Usage: "database directory (overrides the config file)",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "novagov",
		Usage: "Nova DAO governance plugin engine",
		Flags: []cli.Flag{configFlag, verbosityFlag},
		Before: func(ctx *cli.Context) error {
			useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
			output := io.Writer(os.Stderr)
			if useColor {
				output = colorable.NewColorableStderr()
			}
			handler := log.NewTerminalHandlerWithLevel(output, log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)), useColor)
			log.SetDefault(log.NewLogger(handler))
			return nil
		},
		Commands: []*cli.Command{
			demoCommand,
			inspectCommand,
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
