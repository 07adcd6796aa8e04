// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/sensors"
)

// registerDevice is the part of the barometer manager the debug tool uses.
type registerDevice interface {
	Read() (env.Sample, error)
	State() bmp390.State
	Reinitialize() error
	ReadRegister(addr byte) (byte, error)
	ReadAllRegisters() (map[byte]byte, error)
	WriteRegister(addr, value byte) error
	GetRegisterMap() []sensors.RegisterInfo
}

// RegisterCmd is a request from the register debug page.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, init, export_config
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is sent back for every command.
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile is the JSON document produced by export_config.
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

const debugDevice = "bmp390"

type registerDebugHandler struct {
	dev     registerDevice
	allowed []config.RegisterRange
	now     func() time.Time
}

func newRegisterDebugHandler(dev registerDevice, allowed []config.RegisterRange) *registerDebugHandler {
	return &registerDebugHandler{dev: dev, allowed: allowed, now: time.Now}
}

// HandleRegisterDebugWS serves the register debug websocket for the
// process-wide barometer, with writes limited to REGISTER_WRITE_ALLOWED.
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	allowed, err := config.ParseRegisterRanges(config.Get().RegisterWriteAllowed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	newRegisterDebugHandler(sensors.GetBaroManager(), allowed).ServeHTTP(w, r)
}

func (h *registerDebugHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(h.registerMap()); err != nil {
		log.Warnf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("register_debug: websocket error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(h.handle(cmd)); err != nil {
			log.Warnf("register_debug: write error: %v", err)
			return
		}
	}
}

func (h *registerDebugHandler) handle(cmd RegisterCmd) RegisterResponse {
	switch cmd.Action {
	case "get_map":
		return h.registerMap()
	case "read":
		return h.read(cmd)
	case "read_all":
		return h.readAll()
	case "write":
		return h.write(cmd)
	case "init":
		return h.reinit()
	case "export_config":
		return h.exportConfig()
	case "":
		return errorResponse("missing or invalid action field")
	}
	return errorResponse(fmt.Sprintf("unknown action: %s", cmd.Action))
}

func errorResponse(message string) RegisterResponse {
	return RegisterResponse{Type: "error", Message: message}
}

func parseHexByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

func hexMap(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, value := range regs {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", value)
	}
	return out
}

func (h *registerDebugHandler) registerMap() RegisterResponse {
	return RegisterResponse{
		Type:        "register_map",
		Device:      debugDevice,
		RegisterMap: h.dev.GetRegisterMap(),
	}
}

func (h *registerDebugHandler) read(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" {
		return errorResponse("missing addr field")
	}
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}

	value, err := h.dev.ReadRegister(addr)
	if err != nil {
		return errorResponse(fmt.Sprintf("read error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: h.now().Format(time.RFC3339),
	}
}

func (h *registerDebugHandler) readAll() RegisterResponse {
	regs, err := h.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("read all error: %v", err))
	}
	return RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Registers: hexMap(regs),
		Timestamp: h.now().Format(time.RFC3339),
	}
}

func (h *registerDebugHandler) write(cmd RegisterCmd) RegisterResponse {
	if cmd.Address == "" || cmd.Value == "" {
		return errorResponse("missing addr or value field")
	}
	addr, err := parseHexByte(cmd.Address)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseHexByte(cmd.Value)
	if err != nil {
		return errorResponse(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}
	if !isRegisterWritable(addr, h.allowed) {
		return errorResponse(fmt.Sprintf("register 0x%02X not in allowed write ranges", addr))
	}

	if err := h.dev.WriteRegister(addr, value); err != nil {
		return errorResponse(fmt.Sprintf("write error: %v", err))
	}
	log.WithFields(log.Fields{"addr": fmt.Sprintf("0x%02X", addr), "value": fmt.Sprintf("0x%02X", value)}).
		Info("register_debug: register written")
	return RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: h.now().Format(time.RFC3339),
		Message:   "write successful",
	}
}

func (h *registerDebugHandler) reinit() RegisterResponse {
	if err := h.dev.Reinitialize(); err != nil {
		return RegisterResponse{
			Type:    "error",
			Status:  h.dev.State().String(),
			Message: fmt.Sprintf("reinit error: %v", err),
		}
	}
	return RegisterResponse{
		Type:    "status",
		Device:  debugDevice,
		Status:  h.dev.State().String(),
		Message: "BMP390 reinitialized successfully",
	}
}

func (h *registerDebugHandler) exportConfig() RegisterResponse {
	regs, err := h.dev.ReadAllRegisters()
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}

	now := h.now()
	file := RegisterConfigFile{
		Version:   1,
		Device:    debugDevice,
		Timestamp: now.Format(time.RFC3339),
		Registers: hexMap(regs),
	}
	configJSON, err := json.Marshal(file)
	if err != nil {
		return errorResponse(fmt.Sprintf("export error: %v", err))
	}
	return RegisterResponse{
		Type:     "export_config",
		Device:   debugDevice,
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("%s_%s_registers.json", debugDevice, now.Format("20060102_150405")),
	}
}

// HandleBaroData serves one live reading from the process-wide barometer.
func HandleBaroData(w http.ResponseWriter, r *http.Request) {
	serveBaroData(sensors.GetBaroManager(), w)
}

func serveBaroData(dev registerDevice, w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	s, err := dev.Read()
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error": err.Error(),
			"state": dev.State().String(),
		})
		return
	}
	writeJSON(w, s)
}

// isRegisterWritable reports whether addr falls in one of the allowed
// ranges. No ranges means no writes.
func isRegisterWritable(addr byte, allowed []config.RegisterRange) bool {
	for _, r := range allowed {
		if addr >= r.From && addr <= r.To {
			return true
		}
	}
	return false
}
