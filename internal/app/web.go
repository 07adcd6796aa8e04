package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/relabs-tech/barometer/internal/altitude"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/gps"
	"github.com/relabs-tech/barometer/internal/store"
	log "github.com/sirupsen/logrus"
)

type historySource interface {
	History(from, to time.Time) ([]env.Sample, error)
}

// altitudeReport is the /api/altitude response. QNH fields are only set
// when a GPS fix with altitude is available.
type altitudeReport struct {
	PressurePa        float64  `json:"pressure_pa"`
	SeaLevelPa        float64  `json:"sea_level_pa"`
	PressureAltitudeM float64  `json:"pressure_altitude_m"`
	GPSAltitudeM      *float64 `json:"gps_altitude_m,omitempty"`
	QNHPa             *float64 `json:"qnh_pa,omitempty"`
	QNHAltitudeM      *float64 `json:"qnh_altitude_m,omitempty"`
}

// webServer keeps the latest messages seen on MQTT and serves them.
type webServer struct {
	mu       sync.RWMutex
	lastBaro env.Sample
	haveBaro bool
	lastFix  gps.Fix
	haveFix  bool

	seaLevel float64
	history  historySource // optional
	hub      *hub
}

func newWebServer(seaLevel float64, history historySource) *webServer {
	if seaLevel <= 0 {
		seaLevel = altitude.StandardPressure
	}
	return &webServer{seaLevel: seaLevel, history: history, hub: newHub()}
}

func (s *webServer) updateBaro(sample env.Sample) {
	s.mu.Lock()
	s.lastBaro = sample
	s.haveBaro = true
	s.mu.Unlock()
	s.hub.Broadcast(liveMessage{Type: "baro", Data: sample})
}

func (s *webServer) updateGPS(fix gps.Fix) {
	s.mu.Lock()
	s.lastFix = fix
	s.haveFix = true
	s.mu.Unlock()
	s.hub.Broadcast(liveMessage{Type: "gps", Data: fix})
}

func (s *webServer) routes(staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/baro", s.handleBaro)
	mux.HandleFunc("/api/gps", s.handleGPS)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/altitude", s.handleAltitude)
	mux.Handle("/ws", s.hub)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("web: json encode error: %v", err)
	}
}

func (s *webServer) handleBaro(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sample, ok := s.lastBaro, s.haveBaro
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, sample)
}

func (s *webServer) handleGPS(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	fix, ok := s.lastFix, s.haveFix
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, fix)
}

// handleHistory serves ?minutes=N (default 60) of recorded samples, or an
// explicit ?from=&to= RFC 3339 window.
func (s *webServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history recording disabled", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	to := time.Now()
	from := to.Add(-time.Hour)
	if v := q.Get("minutes"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m <= 0 {
			http.Error(w, fmt.Sprintf("invalid minutes %q", v), http.StatusBadRequest)
			return
		}
		from = to.Add(-time.Duration(m) * time.Minute)
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid from %q", v), http.StatusBadRequest)
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid to %q", v), http.StatusBadRequest)
			return
		}
		to = t
	}

	samples, err := s.history.History(from, to)
	if err != nil {
		log.WithError(err).Error("web: history query failed")
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	if samples == nil {
		samples = []env.Sample{}
	}
	writeJSON(w, samples)
}

func (s *webServer) handleAltitude(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sample, haveBaro := s.lastBaro, s.haveBaro
	fix, haveFix := s.lastFix, s.haveFix
	s.mu.RUnlock()
	if !haveBaro {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	rep := altitudeReport{
		PressurePa:        sample.Pressure,
		SeaLevelPa:        s.seaLevel,
		PressureAltitudeM: altitude.PressureAltitude(sample.Pressure, s.seaLevel),
	}
	if haveFix && fix.HasAltitude() {
		gpsAlt := fix.Altitude
		qnh := altitude.SeaLevelPressure(sample.Pressure, gpsAlt)
		qnhAlt := altitude.PressureAltitude(sample.Pressure, qnh)
		rep.GPSAltitudeM = &gpsAlt
		rep.QNHPa = &qnh
		rep.QNHAltitudeM = &qnhAlt
	}
	writeJSON(w, rep)
}

// RunWeb subscribes to the barometer and GPS topics and serves the live
// dashboard from ./web together with the JSON API.
func RunWeb() error {
	cfg := config.Get()

	var history historySource
	if cfg.BaroDBPath != "" {
		rec, err := store.Open(cfg.BaroDBPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		history = rec
	}

	srv := newWebServer(cfg.SeaLevelPressurePa, history)

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicBaro, srv.updateBaro); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicGPS, srv.updateGPS); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Infof("web server listening on %s", addr)
	return http.ListenAndServe(addr, srv.routes("web"))
}
