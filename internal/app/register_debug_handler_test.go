package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/barometer/internal/bmp390"
	"github.com/relabs-tech/barometer/internal/config"
	"github.com/relabs-tech/barometer/internal/env"
	"github.com/relabs-tech/barometer/internal/sensors"
)

type fakeRegisters struct {
	regs      map[byte]byte
	state     bmp390.State
	reinitErr error
	writes    int
}

func newFakeRegisters() *fakeRegisters {
	return &fakeRegisters{regs: map[byte]byte{0x00: 0x60, 0x1B: 0x33, 0x1C: 0x12}, state: bmp390.Configured}
}

func (f *fakeRegisters) Read() (env.Sample, error) {
	if f.state != bmp390.Configured {
		return env.Sample{}, bmp390.ErrChipNotFound
	}
	return env.Sample{Source: "fake", Temperature: 20, Pressure: 100000}, nil
}

func (f *fakeRegisters) State() bmp390.State { return f.state }

func (f *fakeRegisters) Reinitialize() error {
	if f.reinitErr != nil {
		f.state = bmp390.Failed
		return f.reinitErr
	}
	f.state = bmp390.Configured
	return nil
}

func (f *fakeRegisters) ReadRegister(addr byte) (byte, error) {
	v, ok := f.regs[addr]
	if !ok {
		return 0, bmp390.ErrIO
	}
	return v, nil
}

func (f *fakeRegisters) ReadAllRegisters() (map[byte]byte, error) {
	return f.regs, nil
}

func (f *fakeRegisters) WriteRegister(addr, value byte) error {
	f.writes++
	f.regs[addr] = value
	return nil
}

func (f *fakeRegisters) GetRegisterMap() []sensors.RegisterInfo {
	return []sensors.RegisterInfo{{Address: "0x00", Name: "CHIP_ID", Access: "R"}}
}

func newTestRegisterHandler(dev registerDevice) *registerDebugHandler {
	h := newRegisterDebugHandler(dev, []config.RegisterRange{{From: 0x1B, To: 0x1F}})
	h.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func TestRegisterDebugRead(t *testing.T) {
	h := newTestRegisterHandler(newFakeRegisters())

	resp := h.handle(RegisterCmd{Action: "read", Address: "0x00"})
	if resp.Type != "register_data" || resp.Value != "0x60" || resp.Address != "0x00" {
		t.Errorf("read = %+v", resp)
	}
	if resp := h.handle(RegisterCmd{Action: "read", Address: "zz"}); resp.Type != "error" {
		t.Errorf("bad address = %+v", resp)
	}
	if resp := h.handle(RegisterCmd{Action: "read"}); resp.Type != "error" {
		t.Errorf("missing address = %+v", resp)
	}
	if resp := h.handle(RegisterCmd{Action: "read", Address: "0x50"}); resp.Type != "error" || !strings.Contains(resp.Message, "read error") {
		t.Errorf("bus error = %+v", resp)
	}

	all := h.handle(RegisterCmd{Action: "read_all"})
	if all.Registers["0x1C"] != "0x12" || len(all.Registers) != 3 {
		t.Errorf("read_all = %+v", all.Registers)
	}
}

func TestRegisterDebugWriteRanges(t *testing.T) {
	dev := newFakeRegisters()
	h := newTestRegisterHandler(dev)

	resp := h.handle(RegisterCmd{Action: "write", Address: "0x1C", Value: "0x0A"})
	if resp.Type != "register_data" || resp.Message != "write successful" {
		t.Fatalf("write = %+v", resp)
	}
	if dev.regs[0x1C] != 0x0A {
		t.Errorf("OSR = 0x%02X", dev.regs[0x1C])
	}

	resp = h.handle(RegisterCmd{Action: "write", Address: "0x7E", Value: "0xB6"})
	if resp.Type != "error" || dev.writes != 1 {
		t.Errorf("write outside range = %+v (writes %d)", resp, dev.writes)
	}
	if resp := h.handle(RegisterCmd{Action: "write", Address: "0x1C", Value: "0x100"}); resp.Type != "error" {
		t.Errorf("bad value = %+v", resp)
	}
}

func TestRegisterDebugInitAndExport(t *testing.T) {
	dev := newFakeRegisters()
	h := newTestRegisterHandler(dev)

	if resp := h.handle(RegisterCmd{Action: "init"}); resp.Type != "status" || resp.Status != "configured" {
		t.Errorf("init = %+v", resp)
	}
	dev.reinitErr = bmp390.ErrChipNotFound
	if resp := h.handle(RegisterCmd{Action: "init"}); resp.Type != "error" || resp.Status != "failed" {
		t.Errorf("failed init = %+v", resp)
	}

	resp := h.handle(RegisterCmd{Action: "export_config"})
	if resp.Type != "export_config" || resp.Filename != "bmp390_20260301_120000_registers.json" {
		t.Fatalf("export = %+v", resp)
	}
	var file RegisterConfigFile
	if err := json.Unmarshal([]byte(resp.Config), &file); err != nil {
		t.Fatal(err)
	}
	if file.Version != 1 || file.Registers["0x00"] != "0x60" {
		t.Errorf("exported file = %+v", file)
	}

	if resp := h.handle(RegisterCmd{Action: "nope"}); resp.Type != "error" {
		t.Errorf("unknown action = %+v", resp)
	}
}

func TestIsRegisterWritable(t *testing.T) {
	ranges := []config.RegisterRange{{From: 0x1B, To: 0x1D}, {From: 0x7E, To: 0x7E}}
	for addr, want := range map[byte]bool{0x1A: false, 0x1B: true, 0x1D: true, 0x1E: false, 0x7E: true} {
		if got := isRegisterWritable(addr, ranges); got != want {
			t.Errorf("0x%02X: got %v want %v", addr, got, want)
		}
	}
	if isRegisterWritable(0x1B, nil) {
		t.Error("writable with no ranges")
	}
}

func TestServeBaroData(t *testing.T) {
	dev := newFakeRegisters()
	rec := httptest.NewRecorder()
	serveBaroData(dev, rec)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pressure_pa":100000`) {
		t.Errorf("ok read: %d %s", rec.Code, rec.Body)
	}

	dev.state = bmp390.Failed
	rec = httptest.NewRecorder()
	serveBaroData(dev, rec)
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"state":"failed"`) {
		t.Errorf("failed read: %d %s", rec.Code, rec.Body)
	}
}

func TestRegisterDebugWebSocket(t *testing.T) {
	ts := httptest.NewServer(newTestRegisterHandler(newFakeRegisters()))
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first RegisterResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "register_map" || len(first.RegisterMap) != 1 {
		t.Errorf("greeting = %+v", first)
	}

	if err := conn.WriteJSON(RegisterCmd{Action: "read", Address: "0x1B"}); err != nil {
		t.Fatal(err)
	}
	var resp RegisterResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Value != "0x33" {
		t.Errorf("read over websocket = %+v", resp)
	}
}
