// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmp390

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
)

var (
	// ErrIO reports a failed or short bus transaction.
	ErrIO = errors.New("bmp390: i2c transaction failed")
	// ErrChipNotFound reports an unexpected chip identity.
	ErrChipNotFound = errors.New("bmp390: chip not found")
	// ErrCalibrationUnreadable reports an unusable NVM calibration block.
	ErrCalibrationUnreadable = errors.New("bmp390: calibration data unreadable")
	// ErrNoData reports an all-zero raw sample.
	ErrNoData = errors.New("bmp390: raw data zero")
)

const (
	startupDelay = 250 * time.Millisecond
	resetDelay   = 20 * time.Millisecond
	readyDelay   = 100 * time.Millisecond
)

// State is the position of a Dev in its initialization sequence.
type State int

const (
	Uninitialized State = iota
	Probed
	Reset
	CalibrationLoaded
	Configured
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Probed:
		return "probed"
	case Reset:
		return "reset"
	case CalibrationLoaded:
		return "calibration-loaded"
	case Configured:
		return "configured"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reading is one compensated measurement. Only Success tells whether the
// numeric fields are meaningful; a failed reading is the zero value.
type Reading struct {
	Temperature float64 `json:"temp_c"`
	Pressure    float64 `json:"pressure_pa"`
	Success     bool    `json:"success"`
}

// Dev is a BMP390 on an I²C bus.
//
// The device is initialized lazily on the first Sense. A failed
// initialization is retried from scratch on the next call. Dev is not safe
// for concurrent use.
type Dev struct {
	regs  *Registers
	log   logrus.FieldLogger
	name  string
	state State
	cal   Calibration
	sleep func(time.Duration)
}

// New returns a Dev talking over t. No bus traffic happens until the first
// Sense. log receives diagnostics; nil uses the logrus standard logger.
func New(t Transport, log logrus.FieldLogger) *Dev {
	if log == nil {
		log = logrus.StandardLogger()
	}
	name := "BMP390"
	if s, ok := t.(fmt.Stringer); ok {
		name = fmt.Sprintf("BMP390{%s}", s)
	}
	return &Dev{
		regs:  NewRegisters(t, log),
		log:   log,
		name:  name,
		sleep: time.Sleep,
	}
}

func (d *Dev) String() string {
	return d.name
}

// State returns the current initialization state.
func (d *Dev) State() State {
	return d.state
}

// Calibration returns the coefficients loaded during initialization.
func (d *Dev) Calibration() (Calibration, bool) {
	return d.cal, d.state == Configured
}

// Sense returns the current temperature and pressure.
func (d *Dev) Sense() Reading {
	r, _ := d.sense()
	return r
}

// SenseEnv fills e with the current temperature and pressure, reporting
// why a reading failed.
func (d *Dev) SenseEnv(e *physic.Env) error {
	r, err := d.sense()
	if err != nil {
		return err
	}
	e.Temperature = physic.ZeroCelsius + physic.Temperature(r.Temperature*float64(physic.Kelvin))
	e.Pressure = physic.Pressure(r.Pressure * float64(physic.Pascal))
	return nil
}

func (d *Dev) sense() (Reading, error) {
	if d.state != Configured {
		if err := d.init(); err != nil {
			d.log.Errorf("bmp390: init failed: %v", err)
			return Reading{}, err
		}
	}

	b, err := d.regs.Read(RegData, DataLen)
	s := parseRawSample(b)
	if s.IsZero() {
		d.log.Warn("bmp390: raw data zero")
		if err != nil {
			return Reading{}, errors.Join(ErrNoData, err)
		}
		return Reading{}, ErrNoData
	}

	t, p := d.cal.Compensate(s)
	return Reading{Temperature: t, Pressure: p, Success: true}, nil
}

// init runs the full bring-up sequence. Only the identity probe and the
// calibration load can fail it.
func (d *Dev) init() error {
	d.state = Uninitialized
	d.log.Info("bmp390: init")
	d.sleep(startupDelay)

	id, _ := d.regs.Read(RegChipID, 1)
	if id[0] != ChipID {
		d.state = Failed
		d.log.Errorf("bmp390: not found: 0x%02X", id[0])
		return fmt.Errorf("%w: id 0x%02X", ErrChipNotFound, id[0])
	}
	d.log.Info("bmp390: found")
	d.state = Probed

	_ = d.regs.Write(RegCmd, CmdSoftReset)
	d.sleep(resetDelay)
	d.state = Reset

	raw, _ := d.regs.Read(RegCalib, CalibLen)
	cal, err := ParseCalibration(raw)
	if err != nil {
		d.state = Failed
		d.log.Error("bmp390: calib data zero")
		d.log.Error("bmp390: calib data read failed")
		return err
	}
	d.cal = cal
	d.state = CalibrationLoaded

	// Reconfiguration writes are idempotent; failures are logged by
	// Registers and do not abort.
	_ = d.regs.Write(RegPwrCtrl, pwrCtrl(profile.mode))
	_ = d.regs.Write(RegOSR, osr(profile.press, profile.temp))
	_ = d.regs.Write(RegODR, byte(profile.odr))
	_ = d.regs.Write(RegConfig, iirConfig(profile.filter))

	d.log.Info("bmp390: ready")
	d.sleep(readyDelay)
	d.state = Configured
	return nil
}
