// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmp390

import (
	"fmt"
)

// Calibration holds the factory trimming coefficients rescaled into
// floating point. It is built once and never modified.
type Calibration struct {
	T1, T2, T3 float64

	P1, P2, P3, P4, P5, P6, P7, P8, P9, P10, P11 float64
}

// RawSample is one pair of 24-bit ADC counts.
type RawSample struct {
	Pressure    uint32
	Temperature uint32
}

// IsZero reports the "no data" sentinel.
func (s RawSample) IsZero() bool {
	return s.Pressure == 0 && s.Temperature == 0
}

// parseRawSample assembles the DATA_0..DATA_5 block, pressure first.
func parseRawSample(b []byte) RawSample {
	return RawSample{
		Pressure:    uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0]),
		Temperature: uint32(b[5])<<16 | uint32(b[4])<<8 | uint32(b[3]),
	}
}

// u16 joins two buffer bytes; hi is the later position.
func u16(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// ParseCalibration decodes the 21-byte NVM_PAR block read from RegCalib.
//
// An all-zero block means the NVM could not be read and is rejected with
// ErrCalibrationUnreadable.
func ParseCalibration(b []byte) (Calibration, error) {
	if len(b) != CalibLen {
		return Calibration{}, fmt.Errorf("%w: got %d bytes, want %d", ErrCalibrationUnreadable, len(b), CalibLen)
	}
	zero := true
	for _, v := range b {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return Calibration{}, fmt.Errorf("%w: block is all zero", ErrCalibrationUnreadable)
	}

	t1 := u16(b[1], b[0])
	t2 := u16(b[3], b[2])
	t3 := int8(b[4])
	p1 := int16(u16(b[6], b[5]))
	p2 := int16(u16(b[8], b[7]))
	p3 := int8(b[9])
	p4 := int8(b[10])
	p5 := u16(b[12], b[11])
	p6 := u16(b[14], b[13])
	p7 := int8(b[15])
	p8 := int8(b[16])
	p9 := int16(u16(b[18], b[17]))
	p10 := int8(b[19])
	p11 := int8(b[20])

	// Every divisor is a power of two, see datasheet section 8.4.
	return Calibration{
		T1:  float64(t1) / 0x1p-8,
		T2:  float64(t2) / 0x1p30,
		T3:  float64(t3) / 0x1p48,
		P1:  (float64(p1) - 0x1p14) / 0x1p20,
		P2:  (float64(p2) - 0x1p14) / 0x1p29,
		P3:  float64(p3) / 0x1p32,
		P4:  float64(p4) / 0x1p37,
		P5:  float64(p5) / 0x1p-3,
		P6:  float64(p6) / 0x1p6,
		P7:  float64(p7) / 0x1p8,
		P8:  float64(p8) / 0x1p15,
		P9:  float64(p9) / 0x1p48,
		P10: float64(p10) / 0x1p48,
		P11: float64(p11) / 0x1p65,
	}, nil
}

// LinearTemp is the linearized temperature produced by temperature
// compensation. Pressure compensation requires one from the same sample.
type LinearTemp float64

// Celsius returns t as degrees Celsius.
func (t LinearTemp) Celsius() float64 {
	return float64(t)
}

// CompensateTemperature converts a raw temperature count.
func (c Calibration) CompensateTemperature(ut uint32) LinearTemp {
	d1 := float64(ut) - c.T1
	d2 := d1 * c.T2
	return LinearTemp(d2 + d1*d1*c.T3)
}

// CompensatePressure converts a raw pressure count to Pascal using the
// linearized temperature of the same sample.
func (c Calibration) CompensatePressure(up uint32, t LinearTemp) float64 {
	tl := float64(t)
	tl2 := tl * tl
	tl3 := tl2 * tl
	p := float64(up)

	out1 := c.P5 + c.P6*tl + c.P7*tl2 + c.P8*tl3
	out2 := p * (c.P1 + c.P2*tl + c.P3*tl2 + c.P4*tl3)
	out3 := p*p*(c.P9+c.P10*tl) + p*p*p*c.P11
	return out1 + out2 + out3
}

// Compensate runs temperature then pressure compensation on s.
func (c Calibration) Compensate(s RawSample) (tempC, pressPa float64) {
	tl := c.CompensateTemperature(s.Temperature)
	return tl.Celsius(), c.CompensatePressure(s.Pressure, tl)
}

