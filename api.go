package vsensor

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterValue is the request and response body of the register routes.
type RegisterValue struct {
	Value float64 `json:"value"`
}

// WritePort writes mapped register values. Satisfied by modbus.Adapter.
type WritePort interface {
	WriteValue(spec RegisterSpec, value float64) error
}

// API exposes the polling service's cached readings and register writes over
// HTTP, for headless deployments without a desktop or terminal UI.
type API struct {
	service *Service
	port    WritePort
}

func NewAPI(service *Service, port WritePort) *API {
	return &API{service: service, port: port}
}

func (api *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/registers", api.ReadAllHandler).Methods("GET")
	r.HandleFunc("/registers/{name}", api.RegisterHandler).Methods("GET", "POST")
	return r
}

// ReadAllHandler returns the cached readings of every polled register.
func (api *API) ReadAllHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.service.Readings())
}

// RegisterHandler reads the cached value of a single register or writes a new
// value to the device.
func (api *API) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	switch r.Method {
	case "GET":
		reading, ok := api.service.Reading(name)
		if !ok {
			http.Error(w, "register not found or not polled yet", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, reading)

	case "POST":
		spec, ok := RegisterByName(name)
		if !ok {
			http.Error(w, "register not found", http.StatusNotFound)
			return
		}
		var payload RegisterValue
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}
		if err := api.port.WriteValue(spec, payload.Value); err != nil {
			slog.Error("error writing register", "register", name, "err", err)
			http.Error(w, "write failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("error encoding response", "err", err)
	}
}
