package vsensor

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(path.Join(dir, "config.json"), []byte(content), 0644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `{
		"connection": {"url": "tcp://localhost:5020", "timeout": 1000, "unit": 3},
		"float_format": "FORMAT_2",
		"poll": {"interval": 2, "registers": ["pascals", "setpoint"]}
	}`)

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "tcp://localhost:5020", config.Connection.Url)
	assert.Equal(t, 1000, config.Connection.Timeout)
	assert.Equal(t, uint8(3), config.Connection.Unit)
	assert.Equal(t, Format2, config.Format())
	assert.Equal(t, 2, config.Poll.Interval)
	assert.Equal(t, []string{"pascals", "setpoint"}, config.Poll.Registers)
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `{}`)

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "rtu:///dev/ttyUSB0", config.Connection.Url)
	assert.Equal(t, 3000, config.Connection.Timeout)
	assert.Equal(t, 9600, config.Connection.Speed)
	assert.Equal(t, uint8(1), config.Connection.Unit)
	assert.Equal(t, 5, config.Poll.Interval)
	assert.Equal(t, DefaultFormat(), config.Format())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := writeConfig(t, `{"connection": {"url": "tcp://sensor:502", "unit": 2}}`)
	t.Setenv("V_SENSOR_URL", "tcp://other:502")
	t.Setenv("V_SENSOR_UNIT", "7")

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "tcp://other:502", config.Connection.Url)
	assert.Equal(t, uint8(7), config.Connection.Unit)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestConfigFormatUnknownName(t *testing.T) {
	config := Config{FloatFormat: "FORMAT_9"}
	assert.Equal(t, DefaultFormat(), config.Format())
}
