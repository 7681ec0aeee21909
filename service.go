package vsensor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Quality grades a cached reading.
type Quality string

const (
	QualityOK    Quality = "OK"
	QualityStale Quality = "STALE"
	QualityError Quality = "ERROR"
)

// Reading is one cached register value.
type Reading struct {
	Name    string    `json:"name"`
	Value   float64   `json:"value"`
	Quality Quality   `json:"quality"`
	Updated time.Time `json:"updated"`
}

// Port reads mapped register values. Satisfied by modbus.Adapter.
type Port interface {
	ReadValue(spec RegisterSpec) (float64, error)
}

// Service polls a set of registers in the background and caches the latest
// reading per register. A reading older than staleAfter degrades to STALE
// when queried; a failed read keeps the last value but degrades to ERROR.
type Service struct {
	port       Port
	registers  []RegisterSpec
	interval   time.Duration
	staleAfter time.Duration

	mu    sync.Mutex
	cache map[string]Reading
	done  chan struct{}
	stop  sync.Once
}

// NewService creates a polling service for the named registers. An empty name
// list selects the entire register map. interval <= 0 selects 5 seconds.
func NewService(port Port, names []string, interval time.Duration) (*Service, error) {
	var registers []RegisterSpec
	if len(names) == 0 {
		registers = Registers
	} else {
		for _, name := range names {
			spec, ok := RegisterByName(name)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownRegister, name)
			}
			registers = append(registers, spec)
		}
	}

	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &Service{
		port:       port,
		registers:  registers,
		interval:   interval,
		staleAfter: 2 * interval,
		cache:      make(map[string]Reading),
		done:       make(chan struct{}),
	}, nil
}

// Start launches the polling goroutine. The first poll happens immediately.
func (s *Service) Start() {
	go s.loop()
}

// Stop terminates the polling goroutine. Safe to call more than once.
func (s *Service) Stop() {
	s.stop.Do(func() { close(s.done) })
}

func (s *Service) loop() {
	s.poll()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.poll()
		case <-s.done:
			return
		}
	}
}

func (s *Service) poll() {
	for _, spec := range s.registers {
		value, err := s.port.ReadValue(spec)
		s.mu.Lock()
		if err != nil {
			slog.Error("error polling register", "register", spec.Name, "err", err)
			r := s.cache[spec.Name]
			r.Name = spec.Name
			r.Quality = QualityError
			s.cache[spec.Name] = r
		} else {
			s.cache[spec.Name] = Reading{Name: spec.Name, Value: value, Quality: QualityOK, Updated: time.Now()}
		}
		s.mu.Unlock()
	}
}

// Reading returns the cached reading for the named register.
func (s *Service) Reading(name string) (Reading, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.cache[name]
	if !ok {
		return Reading{}, false
	}
	return s.grade(r), true
}

// Readings returns the cached readings in register map order. Registers that
// have never been polled are skipped.
func (s *Service) Readings() []Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rr []Reading
	for _, spec := range s.registers {
		if r, ok := s.cache[spec.Name]; ok {
			rr = append(rr, s.grade(r))
		}
	}
	return rr
}

func (s *Service) grade(r Reading) Reading {
	if r.Quality == QualityOK && time.Since(r.Updated) > s.staleAfter {
		r.Quality = QualityStale
	}
	return r
}
