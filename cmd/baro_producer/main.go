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
	a := app.NewCLI("baro_producer", "sample the BMP390 and publish readings to MQTT", false, func(c *cli.Context) error {
		log.Info("starting barometer producer (BMP390 → MQTT)")
		return app.RunBaroProducer(c.Bool("mock"))
	})
	a.Flags = append(a.Flags, cli.BoolFlag{
		Name:  "mock",
		Usage: "use the simulated BMP390 instead of the I2C device",
	})

	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
