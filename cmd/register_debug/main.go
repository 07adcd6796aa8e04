// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"net/http"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/relabs-tech/barometer/internal/app"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/sensors"
)

func main() {
	a := app.NewCLI("register_debug", "BMP390 register debug tool", false, serve)
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func serve(c *cli.Context) error {
	log.Info("starting BMP390 register debug tool (standalone)")
	cfg := config.Get()

	mgr := sensors.GetBaroManager()
	if err := mgr.Init(); err != nil {
		return err
	}
	defer mgr.Close()

	// Run bring-up now so the page opens on a configured device.
	if err := mgr.Reinitialize(); err != nil {
		log.Warnf("BMP390 not ready: %v", err)
		log.Warn("Continuing anyway - use init from the page once the sensor is attached")
	} else {
		log.WithField("state", mgr.State()).Info("BMP390 available")
	}
	if cfg.RegisterWriteAllowed == "" {
		log.Warn("REGISTER_WRITE_ALLOWED is empty, register writes are disabled")
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)
	http.HandleFunc("/api/baro", app.HandleBaroData)
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Infof("Register debug tool listening on %s", addr)
	log.Infof("Open http://localhost%s in your browser", addr)
	return http.ListenAndServe(addr, nil)
}
