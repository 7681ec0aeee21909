// Package modbus connects the register map and float codec of the vsensor
// package to a real device using the simonvetter/modbus client.
package modbus

import (
	"fmt"
	"time"

	"github.com/rwirdemann/vsensor"
	"github.com/simonvetter/modbus"
)

// Adapter wraps a modbus client and reads/writes register values decoded and
// encoded per the V-Sensor register map.
type Adapter struct {
	client *modbus.ModbusClient
	unitId uint8
	format vsensor.FloatFormat
}

// NewAdapter opens a modbus connection described by conn. Floats are encoded
// and decoded with format.
func NewAdapter(conn vsensor.Connection, format vsensor.FloatFormat) (Adapter, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:      conn.Url,
		Speed:    uint(conn.Speed),
		DataBits: uint(conn.DataBits),
		Parity:   uint(conn.Parity),
		StopBits: uint(conn.StopBits),
		Timeout:  time.Duration(conn.Timeout) * time.Millisecond,
	})
	if err != nil {
		return Adapter{}, fmt.Errorf("create client: %w", err)
	}
	if err = client.Open(); err != nil {
		return Adapter{}, fmt.Errorf("open %s: %w", conn.Url, err)
	}

	return Adapter{client: client, unitId: conn.Unit, format: format}, nil
}

func (a Adapter) Close() {
	_ = a.client.Close()
}

// ReadValue reads the register block described by spec and returns its
// decoded value. Floats are decoded with the adapter's float format, s16
// registers are sign extended.
func (a Adapter) ReadValue(spec vsensor.RegisterSpec) (float64, error) {
	if err := a.client.SetUnitId(a.unitId); err != nil {
		return 0, fmt.Errorf("set unit id: %w", err)
	}

	regs, err := a.client.ReadRegisters(spec.ZeroBased(), spec.Quantity(), modbus.HOLDING_REGISTER)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", spec.Name, err)
	}

	switch spec.Datatype {
	case vsensor.F32:
		v, err := vsensor.DecodeFloat32(regs, a.format)
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", spec.Name, err)
		}
		return float64(v), nil
	case vsensor.S16:
		return float64(int16(regs[0])), nil
	default:
		return float64(regs[0]), nil
	}
}

// WriteValue encodes value per spec and writes it to the device. Read-only
// registers are rejected.
func (a Adapter) WriteValue(spec vsensor.RegisterSpec, value float64) error {
	if !spec.Writable() {
		return fmt.Errorf("%w: %s", vsensor.ErrNotWritable, spec.Name)
	}
	if err := a.client.SetUnitId(a.unitId); err != nil {
		return fmt.Errorf("set unit id: %w", err)
	}

	switch spec.Datatype {
	case vsensor.F32:
		if err := a.client.WriteRegisters(spec.ZeroBased(), vsensor.EncodeFloat32(float32(value), a.format)); err != nil {
			return fmt.Errorf("write %s: %w", spec.Name, err)
		}
	case vsensor.S16:
		if err := a.client.WriteRegister(spec.ZeroBased(), uint16(int16(value))); err != nil {
			return fmt.Errorf("write %s: %w", spec.Name, err)
		}
	default:
		if err := a.client.WriteRegister(spec.ZeroBased(), uint16(value)); err != nil {
			return fmt.Errorf("write %s: %w", spec.Name, err)
		}
	}
	return nil
}

// ReadRegisters reads quantity raw holding registers starting at the 0-based
// address. Escape hatch for addresses outside the register map.
func (a Adapter) ReadRegisters(address uint16, quantity uint16) ([]uint16, error) {
	if err := a.client.SetUnitId(a.unitId); err != nil {
		return nil, fmt.Errorf("set unit id: %w", err)
	}
	return a.client.ReadRegisters(address, quantity, modbus.HOLDING_REGISTER)
}

// WriteRegisters writes raw holding registers starting at the 0-based address.
func (a Adapter) WriteRegisters(address uint16, values []uint16) error {
	if err := a.client.SetUnitId(a.unitId); err != nil {
		return fmt.Errorf("set unit id: %w", err)
	}
	return a.client.WriteRegisters(address, values)
}
