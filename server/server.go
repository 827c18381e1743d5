// Package server exposes the print service over HTTP for callers without
// direct serial access. Payload shapes match the direct API; every response
// carries a success flag and a message.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/nixxel-company-limited/laundry-print-server/pos"
	"github.com/nixxel-company-limited/laundry-print-server/printer"
)

// Server bridges HTTP requests to the dual-printer service.
type Server struct {
	service  *printer.PrintService
	address  string
	httpSrv  *http.Server
	listener net.Listener
	mu       sync.Mutex
	running  bool
	log      zerolog.Logger
}

// New creates a new bridge server instance.
func New(service *printer.PrintService, address string, log zerolog.Logger) *Server {
	s := &Server{
		service: service,
		address: address,
		log:     log.With().Str("module", "bridge").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/print", func(r chi.Router) {
		r.Post("/order", s.handlePrintOrder)
		r.Post("/bill", s.handlePrintBill)
		r.Post("/tags", s.handlePrintTags)
	})
	r.Route("/printers", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/connect", s.handleConnect)
		r.Post("/test", s.handleTest)
		r.Post("/disconnect", s.handleDisconnect)
	})

	s.httpSrv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// response is the uniform bridge reply envelope.
type response struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Outcome *pos.PrintOutcome   `json:"outcome,omitempty"`
	Status  *printer.ConnStatus `json:"status,omitempty"`
}

func (s *Server) reply(w http.ResponseWriter, code int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// decodeOrder parses and validates the order payload shared by all print
// routes.
func (s *Server) decodeOrder(w http.ResponseWriter, r *http.Request) (*pos.Order, bool) {
	var raw pos.Order
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.reply(w, http.StatusBadRequest, response{Message: "invalid order payload: " + err.Error()})
		return nil, false
	}
	order, err := pos.NewOrder(raw)
	if err != nil {
		s.reply(w, http.StatusUnprocessableEntity, response{Message: "order rejected: " + err.Error()})
		return nil, false
	}
	return order, true
}

// outcomeReply maps a print outcome to the bridge envelope. Partial and
// total failures stay 200s: the HTTP exchange itself succeeded.
func (s *Server) outcomeReply(w http.ResponseWriter, outcome pos.PrintOutcome) {
	resp := response{
		Success: len(outcome.Errors) == 0,
		Outcome: &outcome,
	}
	if resp.Success {
		resp.Message = "printed"
	} else {
		resp.Message = "completed with errors"
	}
	s.reply(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.reply(w, http.StatusOK, response{Success: true, Message: "ok"})
}

func (s *Server) handlePrintOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}
	s.outcomeReply(w, s.service.ProcessLaundryOrder(order))
}

func (s *Server) handlePrintBill(w http.ResponseWriter, r *http.Request) {
	order, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}
	s.outcomeReply(w, s.service.PrintBillOnly(order))
}

func (s *Server) handlePrintTags(w http.ResponseWriter, r *http.Request) {
	order, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}
	s.outcomeReply(w, s.service.PrintTagsOnly(order))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	status := s.service.GetPrinterStatus()
	s.reply(w, http.StatusOK, response{Success: true, Message: "status", Status: &status})
}

func (s *Server) handleConnect(w http.ResponseWriter, _ *http.Request) {
	status := s.service.ConnectAllPrinters()
	s.reply(w, http.StatusOK, response{
		Success: status.Thermal || status.TSC,
		Message: fmt.Sprintf("thermal=%t tsc=%t", status.Thermal, status.TSC),
		Status:  &status,
	})
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	s.outcomeReply(w, s.service.TestAllPrinters())
}

func (s *Server) handleDisconnect(w http.ResponseWriter, _ *http.Request) {
	s.service.DisconnectAllPrinters()
	s.reply(w, http.StatusOK, response{Success: true, Message: "disconnected"})
}

// Start starts the bridge and blocks until Stop is called.
func (s *Server) Start() error {
	if err := s.listen(); err != nil {
		return err
	}

	s.log.Info().Str("address", s.address).Msg("bridge listening")
	err := s.httpSrv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartAsync starts the bridge in a goroutine (non-blocking).
func (s *Server) StartAsync() error {
	if err := s.listen(); err != nil {
		return err
	}

	go func() {
		if err := s.httpSrv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("bridge serve failed")
		}
	}()

	s.log.Info().Str("address", s.address).Msg("bridge started in background")
	return nil
}

func (s *Server) listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server already running")
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	s.listener = listener
	s.running = true
	return nil
}

// Stop shuts the bridge down, waiting for in-flight requests, then
// releases both printers.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.log.Warn().Err(err).Msg("bridge shutdown error")
	}

	s.service.DisconnectAllPrinters()
	s.log.Info().Msg("bridge stopped")
	return nil
}

// IsRunning returns whether the bridge is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Handler exposes the route tree for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.address
}
