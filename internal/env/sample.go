package env

import "time"

// Sample represents a single environmental measurement (BMP390).
type Sample struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`

	Temperature float64 `json:"temp_c"`       // °C
	Pressure    float64 `json:"pressure_pa"`  // Pa
	PressureHPa float64 `json:"pressure_hpa"` // hPa (same as mbar)
	Altitude    float64 `json:"altitude_m"`   // pressure altitude against the configured sea-level pressure
}
