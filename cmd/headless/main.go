// Headless runs the polling service without any UI and exposes the cached
// readings and register writes over HTTP.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/rwirdemann/vsensor"
	"github.com/rwirdemann/vsensor/modbus"
)

func main() {
	configPath := flag.String("config", "config", "config base directory")
	listen := flag.String("listen", ":8000", "address to serve the HTTP API on")
	flag.Parse()

	config, err := vsensor.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	adapter, err := modbus.NewAdapter(config.Connection, config.Format())
	if err != nil {
		log.Fatal(err)
	}
	defer adapter.Close()

	service, err := vsensor.NewService(adapter, config.Poll.Registers, time.Duration(config.Poll.Interval)*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	service.Start()
	defer service.Stop()

	api := vsensor.NewAPI(service, adapter)
	slog.Info("serving readings", "addr", *listen)
	log.Fatal(http.ListenAndServe(*listen, api.Router()))
}
