package vsensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePort struct {
	values map[string]float64
	fail   map[string]bool
}

func (p *fakePort) ReadValue(spec RegisterSpec) (float64, error) {
	if p.fail[spec.Name] {
		return 0, ErrProtocolError
	}
	return p.values[spec.Name], nil
}

func TestNewServiceUnknownRegister(t *testing.T) {
	_, err := NewService(&fakePort{}, []string{"no_such_register"}, time.Second)
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

func TestServicePoll(t *testing.T) {
	port := &fakePort{values: map[string]float64{"pascals": 12.3, "heartbeat": 42}}
	service, err := NewService(port, []string{"pascals", "heartbeat"}, time.Second)
	require.NoError(t, err)

	service.poll()

	r, ok := service.Reading("pascals")
	require.True(t, ok)
	assert.Equal(t, 12.3, r.Value)
	assert.Equal(t, QualityOK, r.Quality)

	rr := service.Readings()
	require.Len(t, rr, 2)
	assert.Equal(t, "pascals", rr[0].Name)
	assert.Equal(t, "heartbeat", rr[1].Name)
}

func TestServicePollError(t *testing.T) {
	port := &fakePort{values: map[string]float64{"pascals": 12.3}, fail: map[string]bool{}}
	service, err := NewService(port, []string{"pascals"}, time.Second)
	require.NoError(t, err)

	service.poll()
	port.fail["pascals"] = true
	service.poll()

	r, ok := service.Reading("pascals")
	require.True(t, ok)
	assert.Equal(t, QualityError, r.Quality)
	// the last good value stays available
	assert.Equal(t, 12.3, r.Value)
}

func TestServiceStaleReading(t *testing.T) {
	port := &fakePort{values: map[string]float64{"pascals": 12.3}}
	service, err := NewService(port, []string{"pascals"}, time.Second)
	require.NoError(t, err)

	service.poll()
	service.mu.Lock()
	r := service.cache["pascals"]
	r.Updated = time.Now().Add(-3 * time.Second) // older than 2x interval
	service.cache["pascals"] = r
	service.mu.Unlock()

	got, ok := service.Reading("pascals")
	require.True(t, ok)
	assert.Equal(t, QualityStale, got.Quality)
}

func TestServiceStartStop(t *testing.T) {
	port := &fakePort{values: map[string]float64{"pascals": 12.3}}
	service, err := NewService(port, []string{"pascals"}, 10*time.Millisecond)
	require.NoError(t, err)

	service.Start()
	defer service.Stop()

	assert.Eventually(t, func() bool {
		_, ok := service.Reading("pascals")
		return ok
	}, time.Second, 5*time.Millisecond)

	service.Stop()
	service.Stop() // idempotent
}

func TestNewServiceDefaults(t *testing.T) {
	service, err := NewService(&fakePort{}, nil, 0)
	require.NoError(t, err)
	assert.Len(t, service.registers, len(Registers))
	assert.Equal(t, 5*time.Second, service.interval)
	assert.Equal(t, 10*time.Second, service.staleAfter)
}
