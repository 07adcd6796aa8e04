package app

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/gps"
)

// applySentence folds one NMEA sentence into fix. GGA carries altitude and
// fix quality; RMC carries the rest and completes a fix, so it reports true.
func applySentence(fix *gps.Fix, sentence nmea.Sentence) bool {
	switch sentence.DataType() {
	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		fix.Altitude = m.Altitude // MSL, metres
		fix.FixQuality = m.FixQuality
		return false

	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		fix.Time = m.Time.String()
		fix.Date = m.Date.String()
		fix.Latitude = m.Latitude   // decimal degrees
		fix.Longitude = m.Longitude // decimal degrees
		fix.SpeedKnots = m.Speed
		fix.CourseDeg = m.Course
		fix.Validity = string(m.Validity)
		return true
	}
	// GSA, GSV, VTG etc. are not used
	return false
}

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes a combined fix as JSON to TOPIC_GPS on every RMC.
func RunGPSProducer() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	if serialOpts.PortName == "" {
		serialOpts.PortName = "/dev/serial0"
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("GPS serial open %s: %w", serialOpts.PortName, err)
	}
	defer port.Close()
	log.Infof("GPS serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	reader := bufio.NewReader(port)
	var current gps.Fix

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("GPS read: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			log.Debugf("NMEA parse error: %v (line: %q)", err, line)
			continue
		}
		if !applySentence(&current, sentence) {
			continue
		}

		payload, err := json.Marshal(current)
		if err != nil {
			log.Warnf("GPS JSON marshal error: %v", err)
			continue
		}
		if err := publishRetained(client, cfg.TopicGPS, payload); err != nil {
			log.Warnf("GPS publish error: %v", err)
			continue
		}
		log.Debugf("published GPS fix: %+v", current)
	}
}
