package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"i4.energy/across/ltegw/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance. The modem driver is single threaded, so
// every handler and the background poll loop serialize on mu.
type Server struct {
	Logger *slog.Logger
	Modem  *modem.Modem

	mu sync.Mutex
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sms", s.handleSMS)
	mux.HandleFunc("POST /socket", s.handleSocket)
	mux.HandleFunc("POST /ping", s.handlePing)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.ServeHTTP(w, r)
}

// Poll dispatches pending module notifications. Called periodically
// from the main loop.
func (s *Server) Poll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Modem.BufferedPoll()
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

// handleSMS processes incoming HTTP POST requests to send SMS messages
func (s *Server) handleSMS(w http.ResponseWriter, r *http.Request) {
	type SMSRequest struct {
		To      string `json:"to"`
		Message string `json:"message"`
	}

	var req SMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.To == "" || req.Message == "" {
		s.sendError(w, "both 'to' and 'message' fields are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.Modem.SendSMS(req.To, req.Message)
	s.mu.Unlock()
	if err != nil {
		s.Logger.Error("Failed to send SMS", "error", err, "to", req.To)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("SMS sent successfully", "to", req.To, "message_length", len(req.Message))
	w.WriteHeader(http.StatusOK)
}

// handleSocket sends a payload over a one-shot TCP connection
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	type SocketRequest struct {
		Host string `json:"host"`
		Port int    `json:"port"`
		Data string `json:"data"`
	}

	var req SocketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Host == "" || req.Port == 0 || req.Data == "" {
		s.sendError(w, "'host', 'port' and 'data' fields are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.sendSocket(req.Host, req.Port, []byte(req.Data))
	s.mu.Unlock()
	if err != nil {
		s.Logger.Error("Failed to send socket payload", "error", err, "host", req.Host)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("Socket payload sent", "host", req.Host, "port", req.Port, "length", len(req.Data))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) sendSocket(host string, port int, data []byte) error {
	socket, err := s.Modem.SocketOpen(modem.ProtocolTCP, 0)
	if err != nil {
		return err
	}
	defer s.Modem.SocketClose(socket)

	if err := s.Modem.SocketConnect(socket, host, port); err != nil {
		return err
	}
	return s.Modem.SocketWrite(socket, data)
}

// handlePing starts an ICMP echo run; replies arrive asynchronously
// and are logged by the notification handler
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	type PingRequest struct {
		Host string `json:"host"`
	}

	var req PingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Host == "" {
		s.sendError(w, "'host' field is required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.Modem.Ping(req.Host)
	s.mu.Unlock()
	if err != nil {
		s.Logger.Error("Failed to start ping", "error", err, "host", req.Host)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handleStatus reports network registration and signal quality
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type StatusResponse struct {
		Registered bool   `json:"registered"`
		Operator   string `json:"operator,omitempty"`
		RSSI       int    `json:"rssi"`
	}

	s.mu.Lock()
	resp := StatusResponse{Registered: s.Modem.IsRegistered() == nil}
	if resp.Registered {
		resp.Operator, _ = s.Modem.Operator()
	}
	rssi, err := s.Modem.RSSI()
	s.mu.Unlock()
	if err != nil {
		s.Logger.Error("Failed to read signal quality", "error", err)
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp.RSSI = rssi

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
