package app

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/barometer/internal/altitude"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/gps"
	"github.com/relabs-tech/barometer/internal/store"
)

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	return rec
}

func TestWebBaro(t *testing.T) {
	srv := newWebServer(101325, nil)
	mux := srv.routes("")

	if rec := get(t, mux, "/api/baro"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("before data: status %d", rec.Code)
	}

	srv.updateBaro(env.Sample{Source: "sim", Temperature: 21.5, Pressure: 100000})
	rec := get(t, mux, "/api/baro")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got env.Sample
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Pressure != 100000 || got.Temperature != 21.5 {
		t.Errorf("got %+v", got)
	}
}

func TestWebAltitude(t *testing.T) {
	srv := newWebServer(101325, nil)
	mux := srv.routes("")
	srv.updateBaro(env.Sample{Pressure: 95000})

	var rep altitudeReport
	if err := json.NewDecoder(get(t, mux, "/api/altitude").Body).Decode(&rep); err != nil {
		t.Fatal(err)
	}
	want := altitude.PressureAltitude(95000, 101325)
	if math.Abs(rep.PressureAltitudeM-want) > 1e-9 {
		t.Errorf("pressure altitude = %v, want %v", rep.PressureAltitudeM, want)
	}
	if rep.QNHPa != nil {
		t.Error("QNH reported without a GPS fix")
	}

	// A fix without altitude is ignored.
	srv.updateGPS(gps.Fix{FixQuality: "0", Altitude: 600})
	rep = altitudeReport{}
	json.NewDecoder(get(t, mux, "/api/altitude").Body).Decode(&rep)
	if rep.QNHPa != nil {
		t.Error("QNH reported for an invalid fix")
	}

	srv.updateGPS(gps.Fix{FixQuality: "1", Altitude: 600})
	rep = altitudeReport{}
	json.NewDecoder(get(t, mux, "/api/altitude").Body).Decode(&rep)
	if rep.QNHPa == nil || rep.GPSAltitudeM == nil || rep.QNHAltitudeM == nil {
		t.Fatalf("QNH missing: %+v", rep)
	}
	if math.Abs(*rep.QNHAltitudeM-600) > 0.01 {
		t.Errorf("altitude against QNH = %v, want 600", *rep.QNHAltitudeM)
	}
}

func TestWebHistory(t *testing.T) {
	if rec := get(t, newWebServer(0, nil).routes(""), "/api/history"); rec.Code != http.StatusNotFound {
		t.Errorf("disabled history: status %d", rec.Code)
	}

	rec, err := store.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()
	now := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		rec.Record(env.Sample{Source: "sim", Time: now.Add(-time.Duration(i) * 10 * time.Minute), Pressure: 100000 + float64(i)})
	}
	mux := newWebServer(0, rec).routes("")

	var got []env.Sample
	resp := get(t, mux, "/api/history?minutes=15")
	if resp.Code != http.StatusOK {
		t.Fatalf("status %d: %s", resp.Code, resp.Body)
	}
	json.NewDecoder(resp.Body).Decode(&got)
	if len(got) != 2 {
		t.Errorf("last 15 min: %d samples, want 2", len(got))
	}

	from := now.Add(-25 * time.Minute).Format(time.RFC3339)
	to := now.Add(-5 * time.Minute).Format(time.RFC3339)
	got = nil
	json.NewDecoder(get(t, mux, "/api/history?from="+from+"&to="+to).Body).Decode(&got)
	if len(got) != 2 {
		t.Errorf("explicit window: %d samples, want 2", len(got))
	}

	for _, bad := range []string{"?minutes=-1", "?minutes=x", "?from=yesterday"} {
		if rec := get(t, mux, "/api/history"+bad); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", bad, rec.Code)
		}
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	srv := newWebServer(0, nil)
	ts := httptest.NewServer(srv.routes(""))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	srv.updateBaro(env.Sample{Pressure: 99999})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type string     `json:"type"`
		Data env.Sample `json:"data"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "baro" || msg.Data.Pressure != 99999 {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebSocketStalledClientDropped(t *testing.T) {
	srv := newWebServer(0, nil)
	srv.hub.writeWait = 50 * time.Millisecond
	ts := httptest.NewServer(srv.routes(""))
	defer ts.Close()

	// This client never reads, so its socket buffers fill up.
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	big := strings.Repeat("x", 1<<20)
	for i := 0; i < 256 && srv.hub.Len() > 0; i++ {
		start := time.Now()
		srv.hub.Broadcast(liveMessage{Type: "baro", Data: big})
		if d := time.Since(start); d > time.Second {
			t.Fatalf("Broadcast %d blocked for %v", i, d)
		}
	}
	if n := srv.hub.Len(); n != 0 {
		t.Errorf("hub still has %d clients, want the stalled one dropped", n)
	}
}
