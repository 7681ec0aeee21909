package vsensor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWritePort struct {
	fakePort
	written map[string]float64
}

func (p *fakeWritePort) WriteValue(spec RegisterSpec, value float64) error {
	if !spec.Writable() {
		return ErrNotWritable
	}
	p.written[spec.Name] = value
	return nil
}

func newTestAPI(t *testing.T) (*API, *fakeWritePort) {
	t.Helper()
	port := &fakeWritePort{
		fakePort: fakePort{values: map[string]float64{"pascals": 12.3, "setpoint": 10}},
		written:  make(map[string]float64),
	}
	service, err := NewService(&port.fakePort, []string{"pascals", "setpoint"}, time.Second)
	require.NoError(t, err)
	service.poll()
	return NewAPI(service, port), port
}

func TestAPIReadAll(t *testing.T) {
	api, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/registers", nil)
	api.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))

	var readings []Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 2)
	assert.Equal(t, "pascals", readings[0].Name)
	assert.Equal(t, 12.3, readings[0].Value)
	assert.Equal(t, QualityOK, readings[0].Quality)
}

func TestAPIReadRegister(t *testing.T) {
	api, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/registers/pascals", nil)
	api.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var reading Reading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reading))
	assert.Equal(t, 12.3, reading.Value)
}

func TestAPIReadRegisterNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	for _, name := range []string{"flux_capacitor", "heartbeat"} { // unknown and not polled
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "http://example.com/registers/"+name, nil)
		api.Router().ServeHTTP(w, r)
		assert.Equal(t, http.StatusNotFound, w.Code, name)
	}
}

func TestAPIWriteRegister(t *testing.T) {
	api, port := newTestAPI(t)

	body, err := json.Marshal(RegisterValue{Value: 10.5})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/registers/setpoint", bytes.NewBuffer(body))
	api.Router().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10.5, port.written["setpoint"])
}

func TestAPIWriteRegisterFails(t *testing.T) {
	api, port := newTestAPI(t)

	// pascals is read-only, the port rejects the write
	body, _ := json.Marshal(RegisterValue{Value: 1})
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/registers/pascals", bytes.NewBuffer(body))
	api.Router().ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, port.written)
}

func TestAPIWriteRegisterBadRequests(t *testing.T) {
	api, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/registers/flux_capacitor", bytes.NewBufferString(`{"value": 1}`))
	api.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "http://example.com/registers/setpoint", bytes.NewBufferString("not json"))
	api.Router().ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
