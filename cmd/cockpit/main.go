// Cockpit provides a TUI showing live V-Sensor readings polled in the
// background.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rwirdemann/vsensor"
	"github.com/rwirdemann/vsensor/modbus"
)

var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
	Light: "#909090",
	Dark:  "#626262",
}).Padding(0, 1)

func main() {
	configPath := flag.String("config", "config", "config base directory")
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

	m := newModel(service)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Println("Error running program:", err)
		os.Exit(1)
	}
}

type model struct {
	service *vsensor.Service
	table   table.Model
}

func newModel(service *vsensor.Service) model {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)

	columns := []table.Column{
		{Title: "Register", Width: 32},
		{Title: "Address", Width: 8},
		{Title: "Value", Width: 12},
		{Title: "Quality", Width: 8},
		{Title: "Updated", Width: 9},
	}

	readingTable := table.New(
		table.WithColumns(columns),
		table.WithRows(readingsToTableRows(service)),
		table.WithFocused(true),
	)
	readingTable.SetStyles(s)

	return model{service: service, table: readingTable}
}

func readingsToTableRows(service *vsensor.Service) []table.Row {
	var rows []table.Row
	for _, r := range service.Readings() {
		address := ""
		if spec, ok := vsensor.RegisterByName(r.Name); ok {
			address = fmt.Sprintf("%d", spec.Address)
		}
		rows = append(rows, table.Row{
			r.Name,
			address,
			fmt.Sprintf("%g", r.Value),
			string(r.Quality),
			r.Updated.Format("15:04:05"),
		})
	}
	return rows
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second*1, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd { return tickCmd() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tickMsg:
		m.table.SetRows(readingsToTableRows(m.service))
		return m, tickCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return baseStyle.Render(m.table.View()) + "\n" + helpStyle.Render("Press 'q' to quit")
}
