// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmp390

import (
	"periph.io/x/conn/v3/i2c"
)

// Transport is the narrow bus transaction interface the driver consumes.
type Transport interface {
	// Write sends w to the device at addr and ends the transaction with a
	// stop condition. A non-nil error is a non-success status.
	Write(addr uint16, w []byte) error
	// WriteRead sends w without a stop condition, then reads into r under a
	// repeated start. It returns the number of bytes actually received.
	WriteRead(addr uint16, w, r []byte) (int, error)
}

// i2cTransport adapts a periph I²C bus. periph performs the write and the
// read in a single Tx, which is a repeated start on every host driver.
type i2cTransport struct {
	bus i2c.Bus
}

// NewI2CTransport returns a Transport backed by a periph I²C bus.
func NewI2CTransport(bus i2c.Bus) Transport {
	return &i2cTransport{bus: bus}
}

func (t *i2cTransport) Write(addr uint16, w []byte) error {
	return t.bus.Tx(addr, w, nil)
}

func (t *i2cTransport) WriteRead(addr uint16, w, r []byte) (int, error) {
	if err := t.bus.Tx(addr, w, r); err != nil {
		return 0, err
	}
	return len(r), nil
}

func (t *i2cTransport) String() string {
	return t.bus.String()
}
