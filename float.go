// Package vsensor talks to the CMR Controls V-Sensor over Modbus. The sensor
// stores 32-bit floats in pairs of 16-bit registers and supports four
// different byte/word orderings. This package contains the float codec, the
// register map of the device, a polling service and a TCP simulator.
package vsensor

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync/atomic"
)

// FloatFormat selects how the four bytes of a 32-bit float are spread across
// the two 16-bit registers that hold it.
type FloatFormat uint8

const (
	// Format1 uses little-endian bytes within each word, low word first.
	// This is the process default.
	Format1 FloatFormat = iota + 1
	// Format2 uses little-endian bytes within each word, high word first.
	Format2
	// Format3 uses big-endian bytes within each word, low word first.
	Format3
	// Format4 uses big-endian bytes within each word, high word first.
	Format4
)

// FloatFormatEnv is the environment variable that selects the process-wide
// default float format. It must hold one of FORMAT_1 to FORMAT_4; anything
// else falls back to Format1.
const FloatFormatEnv = "V_SENSOR_FLOAT_FORMAT"

// ErrRegisterCount is returned by DecodeFloat32 when the register slice does
// not hold exactly two registers.
const ErrRegisterCount Error = "expected exactly two registers"

func (f FloatFormat) String() string {
	switch f {
	case Format1:
		return "FORMAT_1"
	case Format2:
		return "FORMAT_2"
	case Format3:
		return "FORMAT_3"
	case Format4:
		return "FORMAT_4"
	default:
		return fmt.Sprintf("FloatFormat(%d)", uint8(f))
	}
}

// highWordFirst reports whether the register holding the high-order 16 bits
// comes first. The remaining formats transmit the low word first.
func (f FloatFormat) highWordFirst() bool {
	return f == Format2 || f == Format4
}

// bigEndianBytes reports whether the high byte of each register half comes
// first within its 16-bit word.
func (f FloatFormat) bigEndianBytes() bool {
	return f == Format3 || f == Format4
}

// ParseFloatFormat maps a configuration name such as "FORMAT_3" to its
// format. The match is exact and case-sensitive.
func ParseFloatFormat(s string) (FloatFormat, bool) {
	switch s {
	case "FORMAT_1":
		return Format1, true
	case "FORMAT_2":
		return Format2, true
	case "FORMAT_3":
		return Format3, true
	case "FORMAT_4":
		return Format4, true
	}
	return 0, false
}

// defaultFormat holds the process-wide default as a uint32 so that
// SetDefaultFormat is safe to call while other goroutines encode or decode.
var defaultFormat atomic.Uint32

func init() {
	defaultFormat.Store(uint32(formatFromEnv()))
}

func formatFromEnv() FloatFormat {
	v, set := os.LookupEnv(FloatFormatEnv)
	if !set {
		return Format1
	}
	f, ok := ParseFloatFormat(v)
	if !ok {
		slog.Warn("unrecognized float format, falling back", "env", FloatFormatEnv, "value", v, "fallback", Format1)
		return Format1
	}
	return f
}

// DefaultFormat returns the process-wide default float format.
func DefaultFormat() FloatFormat {
	return FloatFormat(defaultFormat.Load())
}

// SetDefaultFormat replaces the process-wide default for all subsequent calls
// that do not pass an explicit format.
func SetDefaultFormat(f FloatFormat) {
	defaultFormat.Store(uint32(f))
}

func swapBytes(w uint16) uint16 {
	return w<<8 | w>>8
}

// EncodeFloat32 splits value into two registers according to format. The
// transform is a pure bit rearrangement; every float32 including NaN payloads,
// signed zeros and infinities encodes without loss.
func EncodeFloat32(value float32, format FloatFormat) []uint16 {
	bits := math.Float32bits(value)
	hi := uint16(bits >> 16)
	lo := uint16(bits)
	if format.bigEndianBytes() {
		hi, lo = swapBytes(hi), swapBytes(lo)
	}
	if format.highWordFirst() {
		return []uint16{hi, lo}
	}
	return []uint16{lo, hi}
}

// DecodeFloat32 reassembles a float from two registers according to format.
// It is the exact inverse of EncodeFloat32.
func DecodeFloat32(registers []uint16, format FloatFormat) (float32, error) {
	if len(registers) != 2 {
		return 0, fmt.Errorf("%w, got %d", ErrRegisterCount, len(registers))
	}
	lo, hi := registers[0], registers[1]
	if format.highWordFirst() {
		lo, hi = hi, lo
	}
	if format.bigEndianBytes() {
		hi, lo = swapBytes(hi), swapBytes(lo)
	}
	return math.Float32frombits(uint32(hi)<<16 | uint32(lo)), nil
}

// Encode is EncodeFloat32 with the process-wide default format.
func Encode(value float32) []uint16 {
	return EncodeFloat32(value, DefaultFormat())
}

// Decode is DecodeFloat32 with the process-wide default format.
func Decode(registers []uint16) (float32, error) {
	return DecodeFloat32(registers, DefaultFormat())
}
