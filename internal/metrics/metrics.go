// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes barometer readings to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/env"
)

var (
	readingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baro_readings_total",
			Help: "BMP390 read attempts by result.",
		},
		[]string{"result"},
	)

	initTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "baro_init_attempts_total",
			Help: "BMP390 bring-up attempts by result.",
		},
		[]string{"result"},
	)

	temperature = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "baro_temperature_celsius",
		Help: "Last compensated temperature.",
	})

	pressure = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "baro_pressure_pascal",
		Help: "Last compensated pressure.",
	})

	altitudeM = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "baro_altitude_meters",
		Help: "Last pressure altitude.",
	})

	state = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "baro_driver_state",
		Help: "Driver state (0 uninitialized .. 4 configured, 5 failed).",
	})

	registerOnce sync.Once
)

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(readingsTotal, initTotal, temperature, pressure, altitudeM, state)
	})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Observe records one read attempt. Gauges keep their last good value on
// failure.
func Observe(s env.Sample, err error) {
	readingsTotal.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	temperature.Set(s.Temperature)
	pressure.Set(s.Pressure)
	altitudeM.Set(s.Altitude)
}

// ObserveState records the driver state after a read. When the read ran a
// bring-up (before was not Configured) its outcome is counted as well.
func ObserveState(before, after bmp390.State) {
	state.Set(float64(after))
	if before == bmp390.Configured {
		return
	}
	if after == bmp390.Configured {
		initTotal.WithLabelValues("ok").Inc()
	} else {
		initTotal.WithLabelValues("error").Inc()
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
