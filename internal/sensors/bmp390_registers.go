// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes one field inside a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is the metadata the register debug tool shows for a register.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// getBMP390RegisterMap returns metadata for the BMP390 registers this project touches.
func getBMP390RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Identification and status
		{Address: "0x00", Name: "CHIP_ID", Description: "Chip identification", Access: "R", Default: "0x60"},
		{Address: "0x01", Name: "REV_ID", Description: "ASIC mask revision", Access: "R", Default: "0x01"},
		{Address: "0x02", Name: "ERR_REG", Description: "Sensor error conditions", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2", Name: "conf_err", Description: "Sensor configuration error", Values: "cleared on read"},
				{Bits: "1", Name: "cmd_err", Description: "Command execution failed", Values: "cleared on read"},
				{Bits: "0", Name: "fatal_err", Description: "Fatal error", Values: ""},
			}},
		{Address: "0x03", Name: "STATUS", Description: "Sensor status", Access: "R", Default: "0x10",
			BitFields: []BitField{
				{Bits: "6", Name: "drdy_temp", Description: "Temperature data ready", Values: "reset on read"},
				{Bits: "5", Name: "drdy_press", Description: "Pressure data ready", Values: "reset on read"},
				{Bits: "4", Name: "cmd_rdy", Description: "Command decoder ready", Values: "0=busy, 1=ready"},
			}},

		// Sensor data registers (read-only)
		{Address: "0x04", Name: "DATA_0", Description: "Pressure XLSB [7:0]", Access: "R", Default: "0x00"},
		{Address: "0x05", Name: "DATA_1", Description: "Pressure LSB [15:8]", Access: "R", Default: "0x00"},
		{Address: "0x06", Name: "DATA_2", Description: "Pressure MSB [23:16]", Access: "R", Default: "0x80"},
		{Address: "0x07", Name: "DATA_3", Description: "Temperature XLSB [7:0]", Access: "R", Default: "0x00"},
		{Address: "0x08", Name: "DATA_4", Description: "Temperature LSB [15:8]", Access: "R", Default: "0x00"},
		{Address: "0x09", Name: "DATA_5", Description: "Temperature MSB [23:16]", Access: "R", Default: "0x80"},

		// Configuration
		{Address: "0x1B", Name: "PWR_CTRL", Description: "Power control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:4", Name: "mode", Description: "Power mode", Values: "0=Sleep, 1/2=Forced, 3=Normal"},
				{Bits: "1", Name: "temp_en", Description: "Temperature sensor enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "press_en", Description: "Pressure sensor enable", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x1C", Name: "OSR", Description: "Oversampling", Access: "RW", Default: "0x02",
			BitFields: []BitField{
				{Bits: "5:3", Name: "osr_t", Description: "Temperature oversampling", Values: "0=x1, 1=x2, 2=x4, 3=x8, 4=x16, 5=x32"},
				{Bits: "2:0", Name: "osr_p", Description: "Pressure oversampling", Values: "0=x1, 1=x2, 2=x4, 3=x8, 4=x16, 5=x32"},
			}},
		{Address: "0x1D", Name: "ODR", Description: "Output data rate", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4:0", Name: "odr_sel", Description: "Subdivision factor", Values: "0=200Hz, 1=100Hz, 2=50Hz, 3=25Hz ... 17=0.0015Hz"},
			}},
		{Address: "0x1F", Name: "CONFIG", Description: "IIR filter configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:1", Name: "iir_filter", Description: "IIR filter coefficient", Values: "0=Bypass, 1=1, 2=3, 3=7, 4=15, 5=31, 6=63, 7=127"},
			}},

		// Calibration (NVM_PAR_T1 .. NVM_PAR_P11)
		{Address: "0x31", Name: "NVM_PAR_T1_L", Description: "Calibration T1 LSB", Access: "R"},
		{Address: "0x32", Name: "NVM_PAR_T1_H", Description: "Calibration T1 MSB", Access: "R"},
		{Address: "0x33", Name: "NVM_PAR_T2_L", Description: "Calibration T2 LSB", Access: "R"},
		{Address: "0x34", Name: "NVM_PAR_T2_H", Description: "Calibration T2 MSB", Access: "R"},
		{Address: "0x35", Name: "NVM_PAR_T3", Description: "Calibration T3", Access: "R"},
		{Address: "0x36", Name: "NVM_PAR_P1_L", Description: "Calibration P1 LSB", Access: "R"},
		{Address: "0x37", Name: "NVM_PAR_P1_H", Description: "Calibration P1 MSB", Access: "R"},
		{Address: "0x38", Name: "NVM_PAR_P2_L", Description: "Calibration P2 LSB", Access: "R"},
		{Address: "0x39", Name: "NVM_PAR_P2_H", Description: "Calibration P2 MSB", Access: "R"},
		{Address: "0x3A", Name: "NVM_PAR_P3", Description: "Calibration P3", Access: "R"},
		{Address: "0x3B", Name: "NVM_PAR_P4", Description: "Calibration P4", Access: "R"},
		{Address: "0x3C", Name: "NVM_PAR_P5_L", Description: "Calibration P5 LSB", Access: "R"},
		{Address: "0x3D", Name: "NVM_PAR_P5_H", Description: "Calibration P5 MSB", Access: "R"},
		{Address: "0x3E", Name: "NVM_PAR_P6_L", Description: "Calibration P6 LSB", Access: "R"},
		{Address: "0x3F", Name: "NVM_PAR_P6_H", Description: "Calibration P6 MSB", Access: "R"},
		{Address: "0x40", Name: "NVM_PAR_P7", Description: "Calibration P7", Access: "R"},
		{Address: "0x41", Name: "NVM_PAR_P8", Description: "Calibration P8", Access: "R"},
		{Address: "0x42", Name: "NVM_PAR_P9_L", Description: "Calibration P9 LSB", Access: "R"},
		{Address: "0x43", Name: "NVM_PAR_P9_H", Description: "Calibration P9 MSB", Access: "R"},
		{Address: "0x44", Name: "NVM_PAR_P10", Description: "Calibration P10", Access: "R"},
		{Address: "0x45", Name: "NVM_PAR_P11", Description: "Calibration P11", Access: "R"},

		// Command
		{Address: "0x7E", Name: "CMD", Description: "Command register", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "cmd", Description: "Command", Values: "0x34=extmode_en_middle, 0xB0=fifo_flush, 0xB6=softreset"},
			}},
	}
}
