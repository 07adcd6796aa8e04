// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmp390

// Addr is the I²C address of the BMP390 with SDO pulled high.
const Addr uint16 = 0x77

// Register addresses.
const (
	RegChipID  byte = 0x00
	RegData    byte = 0x04 // press xlsb..msb, temp xlsb..msb
	RegPwrCtrl byte = 0x1B
	RegOSR     byte = 0x1C
	RegODR     byte = 0x1D
	RegConfig  byte = 0x1F
	RegCalib   byte = 0x31
	RegCmd     byte = 0x7E
)

// ChipID is the value of RegChipID on a BMP390.
const ChipID byte = 0x60

// CmdSoftReset written to RegCmd resets all user configuration.
const CmdSoftReset byte = 0xB6

// Block lengths.
const (
	DataLen  = 6
	CalibLen = 21
)

const (
	pwrPressEn   byte = 1 << 0
	pwrTempEn    byte = 1 << 1
	osrTempShift      = 3
	modeShift         = 4
	filterShift       = 1
)

// Mode is the power mode written to PWR_CTRL[5:4].
type Mode byte

const (
	Sleep  Mode = 0x00
	Forced Mode = 0x01
	Normal Mode = 0x03
)

// Oversampling is the per-channel oversampling setting in OSR.
type Oversampling byte

const (
	O1x Oversampling = iota
	O2x
	O4x
	O8x
	O16x
	O32x
)

// OutputDataRate is the ODR register subdivision selector.
type OutputDataRate byte

const (
	ODR200Hz OutputDataRate = iota
	ODR100Hz
	ODR50Hz
	ODR25Hz
	ODR12p5Hz
	ODR6p25Hz
	ODR3p1Hz
	ODR1p5Hz
	ODR0p78Hz
	ODR0p39Hz
	ODR0p2Hz
	ODR0p1Hz
	ODR0p05Hz
	ODR0p02Hz
	ODR0p01Hz
	ODR0p006Hz
	ODR0p003Hz
	ODR0p0015Hz
)

// Filter is the IIR filter coefficient selector in CONFIG[3:1].
type Filter byte

const (
	FilterOff Filter = iota
	F1
	F3
	F7
	F15
	F31
	F63
	F127
)

// pwrCtrl encodes PWR_CTRL with both pressure and temperature measurement enabled.
func pwrCtrl(m Mode) byte {
	return byte(m)<<modeShift | pwrTempEn | pwrPressEn
}

func osr(press, temp Oversampling) byte {
	return byte(temp)<<osrTempShift | byte(press)
}

func iirConfig(f Filter) byte {
	return byte(f) << filterShift
}

// profile is the single operating profile this driver programs.
var profile = struct {
	mode        Mode
	press, temp Oversampling
	odr         OutputDataRate
	filter      Filter
}{Normal, O4x, O4x, ODR25Hz, FilterOff}
