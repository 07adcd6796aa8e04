package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/gps"
	log "github.com/sirupsen/logrus"
)

func formatBaro(s env.Sample) string {
	return fmt.Sprintf(
		"[BARO]  %-6s T=%6.2f°C  P=%9.2f Pa (%7.2f hPa)  ALT=%7.1f m",
		s.Source, s.Temperature, s.Pressure, s.PressureHPa, s.Altitude,
	)
}

func formatGPS(f gps.Fix) string {
	alt := "   n/a"
	if f.HasAltitude() {
		alt = fmt.Sprintf("%6.1f", f.Altitude)
	}
	return fmt.Sprintf(
		"[GPS ]  time=%s date=%s lat=%.6f lon=%.6f alt=%sm speed=%.1fkn course=%.1f° validity=%s",
		f.Time, f.Date, f.Latitude, f.Longitude, alt, f.SpeedKnots, f.CourseDeg, f.Validity,
	)
}

// RunConsoleMQTT prints every barometer and GPS message until interrupted.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	err = subscribeJSON(client, cfg.TopicBaro, func(s env.Sample) {
		fmt.Println(formatBaro(s))
	})
	if err != nil {
		return err
	}

	err = subscribeJSON(client, cfg.TopicGPS, func(f gps.Fix) {
		fmt.Println(formatGPS(f))
	})
	if err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("console: shutting down")
	client.Disconnect(250)
	return nil
}
