package store

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/relabs-tech/barometer/internal/env"
)

func TestRecordHistory(t *testing.T) {
	r, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s := env.Sample{
			Source:      "sim",
			Time:        base.Add(time.Duration(i) * time.Minute),
			Temperature: 20 + float64(i),
			Pressure:    101000 + float64(i)*10,
			Altitude:    float64(i),
		}
		if err := r.Record(s); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}

	got, err := r.History(base.Add(time.Minute), base.Add(3*time.Minute))
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("History returned %d samples, want 3", len(got))
	}
	for i, s := range got {
		n := i + 1
		if !s.Time.Equal(base.Add(time.Duration(n) * time.Minute)) {
			t.Errorf("sample %d time = %v", i, s.Time)
		}
		if s.Source != "sim" || s.Temperature != 20+float64(n) || s.Pressure != 101000+float64(n)*10 {
			t.Errorf("sample %d = %+v", i, s)
		}
		if s.PressureHPa != s.Pressure/100 {
			t.Errorf("sample %d hPa = %v", i, s.PressureHPa)
		}
	}
}

func TestHistoryEmpty(t *testing.T) {
	r, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	now := time.Now()
	got, err := r.History(now.Add(-time.Hour), now)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("History = %v, want empty", got)
	}
}

func TestHistoryNonFiniteSample(t *testing.T) {
	r, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	good := env.Sample{Source: "sim", Time: base, Temperature: 21.5, Pressure: 101325, Altitude: 0}
	// A bus stuck high compensates to a negative pressure with no altitude.
	bad := env.Sample{
		Source:      "sim",
		Time:        base.Add(time.Second),
		Temperature: 21.5,
		Pressure:    -160029.9,
		Altitude:    math.NaN(),
	}
	for _, s := range []env.Sample{good, bad} {
		if err := r.Record(s); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := r.History(base, base.Add(time.Minute))
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("History returned %d samples, want 2", len(got))
	}
	if got[0].Pressure != 101325 || got[0].Temperature != 21.5 {
		t.Errorf("good sample = %+v", got[0])
	}
	if got[1].Altitude != 0 || got[1].Pressure != -160029.9 {
		t.Errorf("bad sample = %+v, want NULL altitude read as 0", got[1])
	}
	if _, err := json.Marshal(got); err != nil {
		t.Errorf("json.Marshal(history): %v", err)
	}
}
