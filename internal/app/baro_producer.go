// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/metrics"
	"github.com/relabs-tech/barometer/internal/sensors"
	"github.com/relabs-tech/barometer/internal/store"
	log "github.com/sirupsen/logrus"
)

// errNonFinite marks a read whose compensated values cannot be stored or
// published, such as a bus stuck high giving a negative pressure.
var errNonFinite = errors.New("baro: non-finite sample")

func finite(fs ...float64) bool {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

type baroReader interface {
	Read() (env.Sample, error)
	State() bmp390.State
}

type sampleRecorder interface {
	Record(env.Sample) error
}

// baroProducer turns one sensor read into metrics, a stored row and an
// MQTT message.
type baroProducer struct {
	src     baroReader
	rec     sampleRecorder // optional
	publish func(payload []byte) error
}

func (p *baroProducer) tick() (env.Sample, error) {
	before := p.src.State()
	s, err := p.src.Read()
	if err == nil && !finite(s.Temperature, s.Pressure, s.Altitude) {
		err = fmt.Errorf("%w: T=%v P=%v alt=%v", errNonFinite, s.Temperature, s.Pressure, s.Altitude)
	}
	metrics.ObserveState(before, p.src.State())
	metrics.Observe(s, err)
	if err != nil {
		return env.Sample{}, err
	}

	if p.rec != nil {
		if err := p.rec.Record(s); err != nil {
			log.WithError(err).Warn("baro: history record failed")
		}
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return s, fmt.Errorf("json marshal: %w", err)
	}
	if err := p.publish(payload); err != nil {
		return s, fmt.Errorf("MQTT publish: %w", err)
	}
	return s, nil
}

// RunBaroProducer samples the BMP390 every BARO_SAMPLE_INTERVAL and
// publishes each sample as retained JSON on TOPIC_BARO. mock forces the
// simulated sensor regardless of BARO_MOCK.
func RunBaroProducer(mock bool) error {
	log.Info("starting barometer producer")
	cfg := config.Get()

	mgr := sensors.GetBaroManager()
	if mock && !cfg.BaroMock {
		log.Info("baro: using simulated BMP390")
		mgr.InitWithTransport(sensors.NewSimulator(), "sim", cfg.SeaLevelPressurePa)
	} else if err := mgr.Init(); err != nil {
		return fmt.Errorf("barometer init: %w", err)
	}
	defer mgr.Close()

	p := &baroProducer{src: mgr}

	if cfg.BaroDBPath != "" {
		rec, err := store.Open(cfg.BaroDBPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		p.rec = rec
		log.WithField("path", cfg.BaroDBPath).Info("baro: recording history")
	}

	if cfg.MetricsPort > 0 {
		metrics.Register()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			addr := fmt.Sprintf(":%d", cfg.MetricsPort)
			log.Infof("baro: metrics on %s/metrics", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.WithError(err).Error("baro: metrics server stopped")
			}
		}()
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	p.publish = func(payload []byte) error {
		return publishRetained(client, cfg.TopicBaro, payload)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.BaroSampleInterval) * time.Millisecond)
	defer ticker.Stop()
	log.WithField("topic", cfg.TopicBaro).Info("baro: starting publish loop")

	for {
		select {
		case <-sigCh:
			log.Info("baro: shutting down")
			return nil
		case <-ticker.C:
			s, err := p.tick()
			if err != nil {
				log.WithField("state", mgr.State()).Errorf("baro: %v", err)
				continue
			}
			log.WithFields(log.Fields{
				"temp_c":      fmt.Sprintf("%.2f", s.Temperature),
				"pressure_pa": fmt.Sprintf("%.1f", s.Pressure),
				"altitude_m":  fmt.Sprintf("%.1f", s.Altitude),
			}).Debug("baro: tick")
		}
	}
}
