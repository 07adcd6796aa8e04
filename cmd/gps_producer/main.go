package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/relabs-tech/barometer/internal/app"
)

func main() {
	a := app.NewCLI("gps_producer", "read NMEA from the GPS and publish fixes to MQTT", false, func(c *cli.Context) error {
		log.Info("starting GPS producer (NMEA → MQTT)")
		return app.RunGPSProducer()
	})
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
