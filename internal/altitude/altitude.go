// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package altitude converts between static pressure and altitude using the
// International Standard Atmosphere troposphere model.
package altitude

import "math"

// StandardPressure is ISA sea-level pressure in Pa.
const StandardPressure = 101325.0

const (
	scaleHeight = 44330.0 // m
	exponent    = 1.0 / 5.255
)

// PressureAltitude returns the altitude in meters at which the ISA pressure
// equals pressurePa, given the sea-level reference seaLevelPa.
//
//	h = 44330 * (1 - (p/p0)^(1/5.255))
func PressureAltitude(pressurePa, seaLevelPa float64) float64 {
	if pressurePa <= 0 || seaLevelPa <= 0 {
		return math.NaN()
	}
	return scaleHeight * (1.0 - math.Pow(pressurePa/seaLevelPa, exponent))
}

// SeaLevelPressure returns the sea-level reference (QNH) that makes
// pressurePa read as altitudeM.
func SeaLevelPressure(pressurePa, altitudeM float64) float64 {
	ratio := 1.0 - altitudeM/scaleHeight
	if pressurePa <= 0 || ratio <= 0 {
		return math.NaN()
	}
	return pressurePa / math.Pow(ratio, 1.0/exponent)
}

// Feet converts meters to feet.
func Feet(m float64) float64 {
	return m * 3.28084
}
