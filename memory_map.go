package vsensor

import "sync"

// MemoryMap holds the register contents of a simulated V-Sensor. Floats are
// stored and read with the map's float format. Safe for concurrent use, the
// simulator serves every client connection from its own goroutine.
type MemoryMap struct {
	mu          sync.RWMutex
	inputRegs   map[uint16]uint16
	holdingRegs map[uint16]uint16
	format      FloatFormat
}

// NewMemoryMap creates an empty MemoryMap encoding floats with format.
func NewMemoryMap(format FloatFormat) *MemoryMap {
	return &MemoryMap{
		inputRegs:   make(map[uint16]uint16),
		holdingRegs: make(map[uint16]uint16),
		format:      format,
	}
}

// PutInputReg sets the value of an input register in the memory map.
func (mm *MemoryMap) PutInputReg(address uint16, value uint16) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.inputRegs[address] = value
}

func (mm *MemoryMap) InputReg(address uint16) (uint16, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	value, ok := mm.inputRegs[address]
	return value, ok
}

// PutHoldingReg sets the value of a holding register in the memory map.
func (mm *MemoryMap) PutHoldingReg(address uint16, value uint16) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.holdingRegs[address] = value
}

func (mm *MemoryMap) HoldingReg(address uint16) (uint16, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	value, ok := mm.holdingRegs[address]
	return value, ok
}

// PutFloat32 stores value across the two holding registers starting at
// address, encoded with the map's float format.
func (mm *MemoryMap) PutFloat32(address uint16, value float32) {
	regs := EncodeFloat32(value, mm.format)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.holdingRegs[address] = regs[0]
	mm.holdingRegs[address+1] = regs[1]
}

// Float32 reads the float stored across the two holding registers starting
// at address.
func (mm *MemoryMap) Float32(address uint16) (float32, error) {
	mm.mu.RLock()
	regs := []uint16{mm.holdingRegs[address], mm.holdingRegs[address+1]}
	mm.mu.RUnlock()
	return DecodeFloat32(regs, mm.format)
}
