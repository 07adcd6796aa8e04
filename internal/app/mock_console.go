// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/relabs-tech/barometer/internal/altitude"
	"github.com/relabs-tech/barometer/internal/sensors"
	log "github.com/sirupsen/logrus"
)

// RunMockConsole runs the driver against the simulated BMP390 and prints
// readings, without a broker or hardware. n <= 0 runs forever.
func RunMockConsole(n int) error {
	mgr := sensors.GetBaroManager()
	mgr.InitWithTransport(sensors.NewSimulator(), "sim", altitude.StandardPressure)
	defer mgr.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; n <= 0 || i < n; i++ {
		<-ticker.C
		s, err := mgr.Read()
		if err != nil {
			log.WithField("state", mgr.State()).Errorf("mock console: %v", err)
			continue
		}
		fmt.Println(formatBaro(s))
	}
	return nil
}
