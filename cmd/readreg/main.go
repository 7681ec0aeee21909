// Readreg reads a single V-Sensor register and prints its decoded value.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/rwirdemann/vsensor"
	"github.com/rwirdemann/vsensor/modbus"
)

func main() {
	configPath := flag.String("config", "config", "config base directory")
	reg := flag.String("reg", "", "register name or 1-based address")
	flag.Parse()
	if *reg == "" {
		flag.PrintDefaults()
		os.Exit(0)
	}

	config, err := vsensor.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	spec, err := resolve(*reg)
	if err != nil {
		log.Fatal(err)
	}

	adapter, err := modbus.NewAdapter(config.Connection, config.Format())
	if err != nil {
		log.Fatal(err)
	}
	defer adapter.Close()

	value, err := adapter.ReadValue(spec)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s (%d): %g\n", spec.Name, spec.Address, value)
}

func resolve(reg string) (vsensor.RegisterSpec, error) {
	if spec, ok := vsensor.RegisterByName(reg); ok {
		return spec, nil
	}
	address, err := strconv.ParseUint(reg, 10, 16)
	if err != nil {
		return vsensor.RegisterSpec{}, fmt.Errorf("%w: %s", vsensor.ErrUnknownRegister, reg)
	}
	spec, ok := vsensor.RegisterByAddress(uint16(address))
	if !ok {
		return vsensor.RegisterSpec{}, fmt.Errorf("%w: %s", vsensor.ErrUnknownRegister, reg)
	}
	return spec, nil
}
