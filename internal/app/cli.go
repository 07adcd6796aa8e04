package app

import (
	"github.com/urfave/cli"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/barometer/internal/config"
)

// DefaultConfigFile is read when --config is not given.
const DefaultConfigFile = "baro_config.txt"

// NewCLI returns a command with the flags every barometer binary shares
// (--config, --debug). The config file is loaded into the global config
// before action runs unless skipConfig is set.
func NewCLI(name, usage string, skipConfig bool, action func(c *cli.Context) error) *cli.App {
	a := cli.NewApp()
	a.Name = name
	a.Usage = usage
	a.Version = "0.1.0"
	a.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: DefaultConfigFile,
			Usage: "load configuration from `FILE`",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	a.Before = func(c *cli.Context) error {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		if c.Bool("debug") {
			log.SetLevel(log.DebugLevel)
		}
		if skipConfig {
			return nil
		}
		if err := config.InitGlobal(c.String("config")); err != nil {
			return cli.NewExitError("failed to load config: "+err.Error(), 1)
		}
		return nil
	}
	a.Action = action
	return a
}
