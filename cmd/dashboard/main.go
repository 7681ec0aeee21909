// Dashboard shows live V-Sensor readings in a desktop window and allows
// editing the control setpoint.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"strconv"
	"time"

	"github.com/rwirdemann/vsensor"
	"github.com/rwirdemann/vsensor/modbus"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var configPath string

func main() {
	flag.StringVar(&configPath, "config", "", "path to the configuration directory")
	flag.Parse()
	if configPath == "" {
		flag.PrintDefaults()
		return
	}

	config, err := vsensor.LoadConfig(configPath)
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

	myApp := app.New()
	myWindow := myApp.NewWindow("V-Sensor")

	names := config.Poll.Registers
	if len(names) == 0 {
		for _, spec := range vsensor.Registers {
			names = append(names, spec.Name)
		}
	}

	labels := make(map[string]*widget.Label)
	grid := container.NewVBox()
	for _, name := range names {
		label := widget.NewLabel("-")
		labels[name] = label
		grid.Add(container.NewHBox(widget.NewLabel(fmt.Sprintf("%-32s", name)), label))
	}

	setpointEntry := widget.NewEntry()
	setpointEntry.SetPlaceHolder("new setpoint")
	writeButton := widget.NewButton("Write Setpoint", func() {
		value, err := strconv.ParseFloat(setpointEntry.Text, 64)
		if err != nil {
			slog.Error("invalid setpoint", "input", setpointEntry.Text)
			return
		}
		spec, _ := vsensor.RegisterByName("setpoint")
		if err := adapter.WriteValue(spec, value); err != nil {
			slog.Error("error writing setpoint", "err", err)
		}
	})

	quit := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, r := range service.Readings() {
					label, ok := labels[r.Name]
					if !ok {
						continue
					}
					text := fmt.Sprintf("%g (%s)", r.Value, r.Quality)
					fyne.Do(func() { label.SetText(text) })
				}
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	scroll := container.NewScroll(grid)
	scroll.SetMinSize(fyne.NewSize(500, 500))
	myWindow.SetContent(container.NewVBox(scroll, container.NewHBox(setpointEntry, writeButton)))
	myWindow.Resize(fyne.NewSize(560, 620))
	myWindow.ShowAndRun()
}
