package vsensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strconv"
)

// Config holds the connection settings, the float format and the polling
// setup of the sensor. It is read from config.json in the config directory;
// V_SENSOR_URL and V_SENSOR_UNIT override the file values.
type Config struct {
	Connection  Connection `json:"connection"`
	FloatFormat string     `json:"float_format,omitempty"`
	Poll        Poll       `json:"poll"`
}

type Connection struct {
	Url      string `json:"url"`
	Timeout  int    `json:"timeout"` // milliseconds
	Speed    int    `json:"speed"`
	DataBits int    `json:"data_bits"`
	Parity   int    `json:"parity"`
	StopBits int    `json:"stop_bits"`
	Unit     uint8  `json:"unit"`
}

type Poll struct {
	Interval  int      `json:"interval"` // seconds
	Registers []string `json:"registers,omitempty"`
}

// Format resolves the configured float format name. Unknown or empty names
// select the process-wide default.
func (c Config) Format() FloatFormat {
	if f, ok := ParseFloatFormat(c.FloatFormat); ok {
		return f
	}
	return DefaultFormat()
}

func LoadConfig(configPath string) (Config, error) {
	if !exists(path.Join(configPath, "config.json")) {
		return Config{}, fmt.Errorf("configuration file not found: %s", path.Join(configPath, "config.json"))
	}

	bb, err := os.ReadFile(path.Join(configPath, "config.json"))
	if err != nil {
		return Config{}, fmt.Errorf("error reading file: %w", err)
	}
	var config Config
	if err := json.NewDecoder(bytes.NewReader(bb)).Decode(&config); err != nil {
		return Config{}, fmt.Errorf("error decoding file: %w", err)
	}
	applyDefaults(&config)
	applyEnv(&config)
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Connection.Url == "" {
		c.Connection.Url = "rtu:///dev/ttyUSB0"
	}
	if c.Connection.Timeout == 0 {
		c.Connection.Timeout = 3000
	}
	if c.Connection.Speed == 0 {
		c.Connection.Speed = 9600
	}
	if c.Connection.Unit == 0 {
		c.Connection.Unit = 1
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = 5
	}
}

func applyEnv(c *Config) {
	if url := os.Getenv("V_SENSOR_URL"); url != "" {
		c.Connection.Url = url
	}
	if unit := os.Getenv("V_SENSOR_UNIT"); unit != "" {
		if u, err := strconv.ParseUint(unit, 10, 8); err == nil {
			c.Connection.Unit = uint8(u)
		}
	}
}

func exists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil || !os.IsNotExist(err)
}
