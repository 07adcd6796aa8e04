// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bmp390 drives a Bosch BMP390 barometric pressure sensor over I²C.
//
// The driver programs one fixed profile: normal mode, 4x pressure and
// temperature oversampling, 25 Hz output rate and the IIR filter disabled.
// Compensation is done in double precision from the NVM calibration block.
//
// # Datasheet
//
// https://www.bosch-sensortec.com/media/boschsensortec/downloads/datasheets/bst-bmp390-ds002.pdf
package bmp390
