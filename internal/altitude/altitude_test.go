package altitude

import (
	"math"
	"testing"
)

func TestPressureAltitude(t *testing.T) {
	tests := []struct {
		name     string
		pressure float64
		want     float64
		tol      float64
	}{
		{"sea level", StandardPressure, 0, 1e-9},
		{"1000 hPa", 100000, 110.9, 0.5},
		{"850 hPa", 85000, 1457, 2},
		{"500 hPa", 50000, 5574, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PressureAltitude(tt.pressure, StandardPressure)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("PressureAltitude(%v) = %v, want %v±%v", tt.pressure, got, tt.want, tt.tol)
			}
		})
	}
}

func TestSeaLevelPressureRoundTrip(t *testing.T) {
	for _, qnh := range []float64{98000, StandardPressure, 103500} {
		for _, p := range []float64{70000, 90000, 101000} {
			h := PressureAltitude(p, qnh)
			if got := SeaLevelPressure(p, h); math.Abs(got-qnh) > 1e-6 {
				t.Errorf("SeaLevelPressure(%v, %v) = %v, want %v", p, h, got, qnh)
			}
		}
	}
}

func TestInvalidInput(t *testing.T) {
	if !math.IsNaN(PressureAltitude(0, StandardPressure)) {
		t.Error("PressureAltitude(0) is not NaN")
	}
	if !math.IsNaN(SeaLevelPressure(90000, 50000)) {
		t.Error("SeaLevelPressure above the model ceiling is not NaN")
	}
}

func TestFeet(t *testing.T) {
	if got := Feet(1000); math.Abs(got-3280.84) > 1e-9 {
		t.Errorf("Feet(1000) = %v", got)
	}
}
