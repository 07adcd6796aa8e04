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
	a := app.NewCLI("web", "barometer dashboard (MQTT subscriber)", false, func(c *cli.Context) error {
		log.Info("starting barometer web server (MQTT subscriber)")
		log.Info("Note: live data requires baro_producer to be running")
		return app.RunWeb()
	})
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
