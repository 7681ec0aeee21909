package modbus

import (
	"testing"

	"github.com/rwirdemann/vsensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startSim runs a simulated V-Sensor on a random port and returns an adapter
// connected to it.
func startSim(t *testing.T) (Adapter, *vsensor.MemoryMap) {
	t.Helper()
	mem := vsensor.NewMemoryMap(vsensor.Format1)
	sim := vsensor.NewSim("tcp://localhost:0", 1, mem)
	require.NotNil(t, sim)
	require.NoError(t, sim.Start())
	t.Cleanup(func() { _ = sim.Close() })

	adapter, err := NewAdapter(vsensor.Connection{
		Url:     "tcp://" + sim.Addr(),
		Timeout: 1000,
		Unit:    1,
	}, vsensor.Format1)
	require.NoError(t, err)
	t.Cleanup(adapter.Close)
	return adapter, mem
}

func TestAdapterReadFloat32(t *testing.T) {
	adapter, mem := startSim(t)
	spec, ok := vsensor.RegisterByName("pascals")
	require.True(t, ok)
	mem.PutFloat32(spec.ZeroBased(), 12.5)

	value, err := adapter.ReadValue(spec)
	require.NoError(t, err)
	assert.Equal(t, 12.5, value)
}

func TestAdapterReadSigned(t *testing.T) {
	adapter, mem := startSim(t)
	spec, ok := vsensor.RegisterByName("pid_output")
	require.True(t, ok)
	mem.PutHoldingReg(spec.ZeroBased(), 0xFFFF)

	value, err := adapter.ReadValue(spec)
	require.NoError(t, err)
	assert.Equal(t, float64(-1), value)
}

func TestAdapterWriteFloat32(t *testing.T) {
	adapter, mem := startSim(t)
	spec, ok := vsensor.RegisterByName("setpoint")
	require.True(t, ok)

	require.NoError(t, adapter.WriteValue(spec, 10.5))

	got, err := mem.Float32(spec.ZeroBased())
	require.NoError(t, err)
	assert.Equal(t, float32(10.5), got)
}

func TestAdapterWriteUnsigned(t *testing.T) {
	adapter, mem := startSim(t)
	spec, ok := vsensor.RegisterByName("mode")
	require.True(t, ok)

	require.NoError(t, adapter.WriteValue(spec, 2))

	got, ok := mem.HoldingReg(spec.ZeroBased())
	require.True(t, ok)
	assert.Equal(t, uint16(2), got)
}

func TestAdapterWriteReadOnlyRegister(t *testing.T) {
	adapter, _ := startSim(t)
	spec, ok := vsensor.RegisterByName("pascals")
	require.True(t, ok)

	err := adapter.WriteValue(spec, 1)
	assert.ErrorIs(t, err, vsensor.ErrNotWritable)
}

func TestAdapterRawRegisters(t *testing.T) {
	adapter, _ := startSim(t)

	require.NoError(t, adapter.WriteRegisters(200, []uint16{0x0001, 0x0002}))

	regs, err := adapter.ReadRegisters(200, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x0001, 0x0002}, regs)
}
