// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/barometer/internal/altitude"
	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// ErrNotInitialized is returned when the manager has no device yet.
var ErrNotInitialized = errors.New("sensors: barometer not initialized")

// BaroManager owns the single BMP390 of the process and serializes every
// access to it. Producers and the register debug tool share it.
type BaroManager struct {
	mu       sync.Mutex
	t        bmp390.Transport
	dev      *bmp390.Dev
	regs     *bmp390.Registers
	closer   io.Closer
	source   string
	seaLevel float64
	now      func() time.Time
}

var (
	baroManager     *BaroManager
	baroManagerOnce sync.Once
)

// GetBaroManager returns the process-wide barometer manager.
func GetBaroManager() *BaroManager {
	baroManagerOnce.Do(func() {
		baroManager = &BaroManager{
			seaLevel: altitude.StandardPressure,
			now:      time.Now,
		}
	})
	return baroManager
}

// Init attaches the manager to the sensor named by the global config: the
// simulator when BARO_MOCK is set, otherwise the BMP390 on BARO_I2C_BUS.
func (m *BaroManager) Init() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("sensors: config not loaded")
	}

	if cfg.BaroMock {
		log.Info("sensors: using simulated BMP390")
		m.InitWithTransport(NewSimulator(), "sim", cfg.SeaLevelPressurePa)
		return nil
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.BaroI2CBus)
	if err != nil {
		return fmt.Errorf("BMP390 I2C open %q: %w", cfg.BaroI2CBus, err)
	}
	if p, ok := bus.(i2c.Pins); ok {
		log.WithFields(log.Fields{"bus": bus.String(), "scl": p.SCL(), "sda": p.SDA()}).Info("sensors: BMP390 bus opened")
	}

	m.InitWithTransport(bmp390.NewI2CTransport(bus), bus.String(), cfg.SeaLevelPressurePa)
	m.mu.Lock()
	m.closer = bus
	m.mu.Unlock()
	return nil
}

// InitWithTransport attaches the manager to a BMP390 reachable over t.
// Any previously attached device is dropped without closing its bus.
func (m *BaroManager) InitWithTransport(t bmp390.Transport, source string, seaLevelPa float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seaLevelPa <= 0 {
		seaLevelPa = altitude.StandardPressure
	}
	logger := log.WithField("sensor", source)
	m.t = t
	m.dev = bmp390.New(t, logger)
	m.regs = bmp390.NewRegisters(t, logger)
	m.source = source
	m.seaLevel = seaLevelPa
	m.closer = nil
}

// Read takes one sample. The first call (and the first after a failure)
// runs the device bring-up sequence.
func (m *BaroManager) Read() (env.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return env.Sample{}, ErrNotInitialized
	}

	var e physic.Env
	if err := m.dev.SenseEnv(&e); err != nil {
		return env.Sample{}, fmt.Errorf("%s BMP390 sense: %w", m.source, err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return env.Sample{
		Source:      m.source,
		Time:        m.now(),
		Temperature: e.Temperature.Celsius(),
		Pressure:    pressurePa,
		PressureHPa: pressurePa / 100.0, // 1 hPa = 100 Pa
		Altitude:    altitude.PressureAltitude(pressurePa, m.seaLevel),
	}, nil
}

// State reports the driver's initialization state.
func (m *BaroManager) State() bmp390.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return bmp390.Uninitialized
	}
	return m.dev.State()
}

// Source names the attached sensor ("sim" or the bus name).
func (m *BaroManager) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source
}

// SeaLevelPressure returns the QNH used for altitude, in Pa.
func (m *BaroManager) SeaLevelPressure() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seaLevel
}

// SetSeaLevelPressure changes the QNH used for altitude.
func (m *BaroManager) SetSeaLevelPressure(pa float64) error {
	if !(pa >= 80000 && pa <= 110000) {
		return fmt.Errorf("sea-level pressure %.0f Pa out of range", pa)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seaLevel = pa
	return nil
}

// Reinitialize discards the driver state and runs bring-up immediately.
func (m *BaroManager) Reinitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.t == nil {
		return ErrNotInitialized
	}
	m.dev = bmp390.New(m.t, log.WithField("sensor", m.source))
	var e physic.Env
	if err := m.dev.SenseEnv(&e); err != nil {
		return fmt.Errorf("%s BMP390 reinit: %w", m.source, err)
	}
	return nil
}

// ReadRegister reads one raw register.
func (m *BaroManager) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs == nil {
		return 0, ErrNotInitialized
	}
	b, err := m.regs.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadAllRegisters reads every readable register in the register map.
func (m *BaroManager) ReadAllRegisters() (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs == nil {
		return nil, ErrNotInitialized
	}

	out := make(map[byte]byte)
	for _, info := range getBMP390RegisterMap() {
		if !strings.Contains(info.Access, "R") {
			continue
		}
		addr, err := parseRegisterAddress(info.Address)
		if err != nil {
			return nil, err
		}
		b, err := m.regs.Read(addr, 1)
		if err != nil {
			return nil, err
		}
		out[addr] = b[0]
	}
	return out, nil
}

// WriteRegister writes one raw register. The driver state is not updated;
// callers re-run Reinitialize to get back to the standard profile.
func (m *BaroManager) WriteRegister(addr, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.regs == nil {
		return ErrNotInitialized
	}
	return m.regs.Write(addr, value)
}

// GetRegisterMap returns the BMP390 register metadata.
func (m *BaroManager) GetRegisterMap() []RegisterInfo {
	return getBMP390RegisterMap()
}

// Close releases the bus, if the manager opened one.
func (m *BaroManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dev = nil
	m.regs = nil
	m.t = nil
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

func parseRegisterAddress(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad register address %q: %w", s, err)
	}
	return byte(v), nil
}
