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
	a := app.NewCLI("display", "show barometer data on an SSD1306", false, func(c *cli.Context) error {
		log.Info("starting barometer display")
		return app.RunDisplay()
	})
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
