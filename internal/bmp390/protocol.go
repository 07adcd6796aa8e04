// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmp390

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Registers frames register reads and writes for one device on a Transport.
// Transactions are never retried.
type Registers struct {
	t    Transport
	addr uint16
	log  logrus.FieldLogger
}

// NewRegisters returns register access for the BMP390 at Addr.
func NewRegisters(t Transport, log logrus.FieldLogger) *Registers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registers{t: t, addr: Addr, log: log}
}

// Write sends reg followed by data in a single transaction.
func (r *Registers) Write(reg byte, data ...byte) error {
	w := make([]byte, 0, 1+len(data))
	w = append(w, reg)
	w = append(w, data...)
	if err := r.t.Write(r.addr, w); err != nil {
		r.log.Errorf("bmp390: I2C write error (reg 0x%02X): %v", reg, err)
		return fmt.Errorf("%w: write reg 0x%02X: %v", ErrIO, reg, err)
	}
	return nil
}

// Read returns n bytes starting at reg. On any transport error or short
// read it returns an error together with n zero bytes, never a partial
// buffer. An all-zero result is therefore ambiguous at this layer.
func (r *Registers) Read(reg byte, n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := r.t.WriteRead(r.addr, []byte{reg}, buf)
	if err == nil && got == n {
		return buf, nil
	}
	clear(buf)
	r.log.Errorf("bmp390: I2C read error (reg 0x%02X): got %d of %d bytes", reg, got, n)
	if err != nil {
		return buf, fmt.Errorf("%w: read reg 0x%02X: %v", ErrIO, reg, err)
	}
	return buf, fmt.Errorf("%w: read reg 0x%02X: got %d of %d bytes", ErrIO, reg, got, n)
}
