package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/env"
)

func TestObserve(t *testing.T) {
	okBefore := testutil.ToFloat64(readingsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(readingsTotal.WithLabelValues("error"))

	Observe(env.Sample{Temperature: 21.5, Pressure: 100900, Altitude: 35}, nil)
	Observe(env.Sample{}, errors.New("bus"))

	if got := testutil.ToFloat64(readingsTotal.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok readings delta = %v", got)
	}
	if got := testutil.ToFloat64(readingsTotal.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error readings delta = %v", got)
	}
	// The failed read must not clobber the gauges.
	if got := testutil.ToFloat64(temperature); got != 21.5 {
		t.Errorf("temperature = %v", got)
	}
	if got := testutil.ToFloat64(pressure); got != 100900 {
		t.Errorf("pressure = %v", got)
	}
	if got := testutil.ToFloat64(altitudeM); got != 35 {
		t.Errorf("altitude = %v", got)
	}
}

func TestObserveState(t *testing.T) {
	okBefore := testutil.ToFloat64(initTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(initTotal.WithLabelValues("error"))

	ObserveState(bmp390.Uninitialized, bmp390.Failed)
	ObserveState(bmp390.Failed, bmp390.Configured)
	ObserveState(bmp390.Configured, bmp390.Configured)

	if got := testutil.ToFloat64(initTotal.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok inits delta = %v", got)
	}
	if got := testutil.ToFloat64(initTotal.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("failed inits delta = %v", got)
	}
	if got := testutil.ToFloat64(state); got != float64(bmp390.Configured) {
		t.Errorf("state = %v", got)
	}
}

func TestHandler(t *testing.T) {
	Observe(env.Sample{Temperature: 19, Pressure: 101000}, nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"baro_readings_total", "baro_pressure_pascal", "baro_temperature_celsius"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
