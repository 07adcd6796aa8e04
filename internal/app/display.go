package app

import (
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/barometer/internal/altitude"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/gps"
)

const ssd1306Addr = 0x3C

// addrBus redirects the driver's fixed SSD1306 address to the configured one.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b *addrBus) Tx(addr uint16, w, r []byte) error {
	if addr == ssd1306Addr {
		addr = b.addr
	}
	return b.Bus.Tx(addr, w, r)
}

// displayData holds the latest data for the screen.
type displayData struct {
	mu       sync.RWMutex
	baro     env.Sample
	haveBaro bool
	fix      gps.Fix
	haveFix  bool
}

type displaySnapshot struct {
	baro     env.Sample
	haveBaro bool
	fix      gps.Fix
	haveFix  bool
	seaLevel float64
}

func (d *displayData) snapshot(seaLevel float64) displaySnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return displaySnapshot{
		baro:     d.baro,
		haveBaro: d.haveBaro,
		fix:      d.fix,
		haveFix:  d.haveFix,
		seaLevel: seaLevel,
	}
}

// RunDisplay shows DISPLAY_CONTENT on an SSD1306 until the process exits.
func RunDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	var dbus i2c.Bus = bus
	if cfg.DisplayI2CAddr != ssd1306Addr {
		dbus = &addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}
	}
	dev, err := ssd1306.NewI2C(dbus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Infof("display: initialized at 0x%02X", cfg.DisplayI2CAddr)

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Warnf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	err = subscribeJSON(client, cfg.TopicBaro, func(s env.Sample) {
		data.mu.Lock()
		data.baro = s
		data.haveBaro = true
		data.mu.Unlock()
	})
	if err != nil {
		return err
	}
	if cfg.DisplayContent == "gps" || cfg.DisplayContent == "altitude" {
		err = subscribeJSON(client, cfg.TopicGPS, func(f gps.Fix) {
			data.mu.Lock()
			data.fix = f
			data.haveFix = true
			data.mu.Unlock()
		})
		if err != nil {
			return err
		}
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Info("display: starting update loop")
	for range ticker.C {
		img, err := renderScreen(cfg.DisplayContent, data.snapshot(cfg.SeaLevelPressurePa))
		if err != nil {
			return err
		}
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Warnf("display: error updating display: %v", err)
		}
	}
	return nil
}

// screen is a 128x64 canvas with one line of 7x13 text per row.
type screen struct {
	img    *image1bit.VerticalLSB
	drawer *font.Drawer
}

func newScreen() *screen {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	return &screen{
		img: img,
		drawer: &font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: basicfont.Face7x13,
		},
	}
}

func (s *screen) line(x, y int, text string) {
	s.drawer.Dot = fixed.P(x, y)
	s.drawer.DrawString(text)
}

func (s *screen) waiting(title string) *image1bit.VerticalLSB {
	s.line(0, 26, title)
	s.line(0, 39, "Waiting...")
	return s.img
}

func renderScreen(content string, d displaySnapshot) (*image1bit.VerticalLSB, error) {
	switch content {
	case "baro":
		return renderBaro(d), nil
	case "altitude":
		return renderAltitude(d), nil
	case "gps":
		return renderGPS(d), nil
	}
	return nil, fmt.Errorf("unknown display content type: %s", content)
}

func renderBaro(d displaySnapshot) *image1bit.VerticalLSB {
	s := newScreen()
	if !d.haveBaro {
		return s.waiting("BMP390")
	}
	s.line(0, 13, fmt.Sprintf("T: %6.2f C", d.baro.Temperature))
	s.line(0, 26, fmt.Sprintf("P: %7.2f hPa", d.baro.PressureHPa))
	s.line(0, 39, fmt.Sprintf("Alt: %6.1f m", d.baro.Altitude))
	return s.img
}

func renderAltitude(d displaySnapshot) *image1bit.VerticalLSB {
	s := newScreen()
	if !d.haveBaro {
		return s.waiting("Altitude")
	}
	alt := altitude.PressureAltitude(d.baro.Pressure, d.seaLevel)
	s.line(0, 13, fmt.Sprintf("Baro: %6.1f m", alt))
	s.line(0, 26, fmt.Sprintf("      %6.0f ft", altitude.Feet(alt)))
	if d.haveFix && d.fix.HasAltitude() {
		qnh := altitude.SeaLevelPressure(d.baro.Pressure, d.fix.Altitude)
		s.line(0, 39, fmt.Sprintf("GPS:  %6.1f m", d.fix.Altitude))
		s.line(0, 52, fmt.Sprintf("QNH: %7.2f", qnh/100))
	} else {
		s.line(0, 39, fmt.Sprintf("QNH: %7.2f", d.seaLevel/100))
	}
	return s.img
}

func renderGPS(d displaySnapshot) *image1bit.VerticalLSB {
	s := newScreen()
	if !d.haveFix {
		return s.waiting("GPS Position")
	}

	latDir := "N"
	lat := d.fix.Latitude
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}
	s.line(0, 13, fmt.Sprintf("%.4f%s", lat, latDir))

	lonDir := "E"
	lon := d.fix.Longitude
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}
	s.line(0, 26, fmt.Sprintf("%.4f%s", lon, lonDir))

	if d.fix.HasAltitude() {
		s.line(0, 39, fmt.Sprintf("Alt: %.0fm", d.fix.Altitude))
	} else {
		s.line(0, 39, "Alt: no fix")
	}
	return s.img
}

func renderSplash() *image1bit.VerticalLSB {
	s := newScreen()
	s.line(10, 26, "Barometer")
	s.line(5, 43, "BMP390 ready")
	return s.img
}
