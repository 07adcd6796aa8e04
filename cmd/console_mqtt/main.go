package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/relabs-tech/barometer/internal/app"
)

func main() {
	a := app.NewCLI("console_mqtt", "print barometer and GPS messages from MQTT", false, func(c *cli.Context) error {
		log.Info("starting barometer MQTT console")
		return app.RunConsoleMQTT()
	})
	if err := a.Run(os.Args); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
