package gps

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56"
	Date       string  `json:"date"`        // e.g. "2025-12-06"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	Altitude   float64 `json:"alt_m"`       // MSL altitude from GGA
	FixQuality string  `json:"fix_quality"` // GGA quality, "0" when no fix
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void), etc.
}

// HasAltitude reports whether Altitude comes from a real GGA fix.
func (f Fix) HasAltitude() bool {
	return f.FixQuality != "" && f.FixQuality != "0"
}
