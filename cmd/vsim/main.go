// Vsim runs a simulated V-Sensor on a TCP port. All documented registers are
// served out of a memory map; the heartbeat register ticks once per second.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/rwirdemann/vsensor"
)

func main() {
	url := flag.String("url", "tcp://localhost:5020", "url to listen on")
	unit := flag.Uint("unit", 1, "modbus unit id")
	format := flag.String("format", "FORMAT_1", "float format, FORMAT_1 to FORMAT_4")
	flag.Parse()

	f, ok := vsensor.ParseFloatFormat(*format)
	if !ok {
		f = vsensor.DefaultFormat()
	}

	mem := vsensor.NewMemoryMap(f)
	seed(mem)

	sim := vsensor.NewSim(*url, uint8(*unit), mem)
	if sim == nil {
		log.Fatalf("invalid url: %s", *url)
	}
	if err := sim.Start(); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = sim.Close() }()
	slog.Info("simulator listening", "addr", sim.Addr(), "unit", *unit, "format", f)

	go heartbeat(mem)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}

// seed fills the memory map with zeros for every documented register and a
// couple of plausible measurement values.
func seed(mem *vsensor.MemoryMap) {
	for _, r := range vsensor.Registers {
		for i := uint16(0); i < r.Quantity(); i++ {
			mem.PutHoldingReg(r.ZeroBased()+i, 0)
		}
	}
	putFloat(mem, "display_value", 21.5)
	putFloat(mem, "pascals", 12.3)
	putFloat(mem, "setpoint", 10)
	putFloat(mem, "low_alarm_threshold", -50)
	putFloat(mem, "high_alarm_threshold", 50)
}

func putFloat(mem *vsensor.MemoryMap, name string, value float32) {
	spec, ok := vsensor.RegisterByName(name)
	if !ok {
		return
	}
	mem.PutFloat32(spec.ZeroBased(), value)
}

func heartbeat(mem *vsensor.MemoryMap) {
	spec, ok := vsensor.RegisterByName("heartbeat")
	if !ok {
		return
	}
	for range time.Tick(time.Second) {
		v, _ := mem.HoldingReg(spec.ZeroBased())
		mem.PutHoldingReg(spec.ZeroBased(), v+1) // rolls over at 65535
	}
}
