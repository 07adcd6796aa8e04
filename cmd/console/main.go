// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/relabs-tech/barometer/internal/app"
)

func main() {
	a := app.NewCLI("console", "print simulated BMP390 readings", true, func(c *cli.Context) error {
		log.Info("starting barometer (mock console)")
		return app.RunMockConsole(c.Int("count"))
	})
	a.Flags = append(a.Flags, cli.IntFlag{
		Name:  "count, n",
		Usage: "stop after `N` readings (0 runs forever)",
	})
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
