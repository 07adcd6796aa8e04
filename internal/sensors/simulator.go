// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/relabs-tech/barometer/internal/bmp390"
)

// simCalibration is the NVM block of the simulated part. With it,
// simBaseTemp/simBasePress read as 22.0 °C and 101325 Pa.
var simCalibration = [bmp390.CalibLen]byte{
	0x78, 0x69, 0x38, 0x4A, 0xF9, 0x10, 0xF5, 0x6C, 0xEE, 0x23, 0x02,
	0x32, 0x4B, 0xC0, 0x5D, 0x03, 0xF8, 0x9C, 0x18, 0x0F, 0xC4,
}

const (
	simBaseTemp  = 8157460
	simBasePress = 3191896
)

var errSimNack = errors.New("sim: address not acknowledged")

// Simulator is an in-memory BMP390 register file. It implements
// bmp390.Transport so the driver can run without hardware.
type Simulator struct {
	mu      sync.Mutex
	regs    [0x80]byte
	present bool
	start   time.Time
	now     func() time.Time
	writes  [][]byte
}

// NewSimulator returns a powered, present simulated BMP390.
func NewSimulator() *Simulator {
	s := &Simulator{present: true, now: time.Now}
	s.start = s.now()
	s.regs[bmp390.RegChipID] = bmp390.ChipID
	copy(s.regs[bmp390.RegCalib:], simCalibration[:])
	s.softReset()
	return s
}

// SetPresent makes the simulated chip stop (or resume) acknowledging.
func (s *Simulator) SetPresent(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = present
}

// Writes returns every write transaction seen so far.
func (s *Simulator) Writes() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.writes))
	for i, w := range s.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

func (s *Simulator) String() string {
	return "sim"
}

func (s *Simulator) Write(addr uint16, w []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != bmp390.Addr || !s.present || len(w) == 0 {
		return errSimNack
	}
	s.writes = append(s.writes, append([]byte(nil), w...))

	reg := w[0]
	if reg == bmp390.RegCmd {
		if len(w) > 1 && w[1] == bmp390.CmdSoftReset {
			s.softReset()
		}
		return nil
	}
	// Chip id, data and NVM are read-only.
	for i, v := range w[1:] {
		r := int(reg) + i
		if r >= len(s.regs) || isReadOnly(byte(r)) {
			continue
		}
		s.regs[r] = v
	}
	return nil
}

func (s *Simulator) WriteRead(addr uint16, w, r []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if addr != bmp390.Addr || !s.present || len(w) == 0 {
		return 0, errSimNack
	}
	reg := int(w[0])
	if reg <= int(bmp390.RegData) && reg+len(r) > int(bmp390.RegData) {
		s.sample()
	}
	if reg >= len(s.regs) {
		return 0, nil
	}
	return copy(r, s.regs[reg:]), nil
}

func isReadOnly(r byte) bool {
	switch {
	case r == bmp390.RegChipID:
		return true
	case r >= bmp390.RegData && r < bmp390.RegData+bmp390.DataLen:
		return true
	case r >= bmp390.RegCalib && r < bmp390.RegCalib+bmp390.CalibLen:
		return true
	}
	return false
}

// softReset restores power-on defaults; data reads zero until measuring.
func (s *Simulator) softReset() {
	s.regs[bmp390.RegPwrCtrl] = 0x00
	s.regs[bmp390.RegOSR] = 0x02
	s.regs[bmp390.RegODR] = 0x00
	s.regs[bmp390.RegConfig] = 0x00
	clear(s.regs[bmp390.RegData : bmp390.RegData+bmp390.DataLen])
}

// sample refreshes the data registers when the part is in normal mode with
// both channels enabled.
func (s *Simulator) sample() {
	if s.regs[bmp390.RegPwrCtrl] != 0x33 {
		return
	}
	el := s.now().Sub(s.start).Seconds()
	ut := uint32(simBaseTemp + int(2000*math.Sin(el/60)))
	up := uint32(simBasePress + int(500*math.Sin(el/30)))
	d := s.regs[bmp390.RegData:]
	d[0], d[1], d[2] = byte(up), byte(up>>8), byte(up>>16)
	d[3], d[4], d[5] = byte(ut), byte(ut>>8), byte(ut>>16)
}
