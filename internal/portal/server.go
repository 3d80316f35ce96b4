package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/picoprov/internal/conn"
	"github.com/muurk/picoprov/internal/discovery"
	"github.com/muurk/picoprov/internal/logging"
	"github.com/muurk/picoprov/internal/storage"
	"github.com/muurk/picoprov/internal/version"
)

// Orchestrator is the portal's view of the connection manager. The
// implementation must be safe to call from HTTP handler goroutines.
type Orchestrator interface {
	SubmitCredentials(ssid, password string) error
	RequestReset()
	Status() conn.Status
	ReconnectAttempts() int
	Uptime() time.Duration
}

// Config controls the portal transport.
type Config struct {
	// ListenAddr is the HTTP listen address, e.g. ":8080".
	ListenAddr string

	// Hostname is the device hostname reported by /info and mDNS.
	Hostname string

	// Announce enables the mDNS advertisement while the portal is active.
	Announce bool
}

// Server is the configuration portal. It implements the manager's Portal
// capability (Activate/Deactivate) and its Listener interface, feeding status
// events to WebSocket clients.
type Server struct {
	conn.BaseListener

	cfg  Config
	orch Orchestrator
	hub  *hub

	mu        sync.Mutex
	httpSrv   *http.Server
	ln        net.Listener
	announcer *Announcer
	apSSID    string
}

// NewServer creates a portal over the given orchestrator.
func NewServer(cfg Config, orch Orchestrator) *Server {
	return &Server{cfg: cfg, orch: orch, hub: newHub()}
}

// Activate starts the HTTP server and the mDNS advertisement. Idempotent.
func (s *Server) Activate(apSSID, apPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpSrv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/connect", s.handleConnect)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/info", s.handleInfo)
	mux.HandleFunc("/ws", s.handleWS)

	s.httpSrv = &http.Server{Handler: mux}
	s.ln = ln
	s.apSSID = apSSID

	go func(srv *http.Server, ln net.Listener) {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logging.Error("Portal HTTP server stopped", zap.Error(err))
		}
	}(s.httpSrv, ln)

	port := ln.Addr().(*net.TCPAddr).Port
	logging.Info("Config portal active",
		zap.String("ap_ssid", apSSID),
		zap.Int("port", port),
	)

	if s.cfg.Announce {
		txt := []string{
			"hostname=" + s.cfg.Hostname,
			"version=" + version.Version,
		}
		announcer, err := Announce(apSSID, discovery.SetupServiceType, port, txt)
		if err != nil {
			// The portal still works without discovery.
			logging.Warn("mDNS announce failed", zap.Error(err))
		} else {
			s.announcer = announcer
		}
	}

	return nil
}

// Deactivate stops the HTTP server, disconnects WebSocket clients, and
// withdraws the mDNS advertisement. Safe to call when not active.
func (s *Server) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpSrv == nil {
		return
	}

	logging.Info("Config portal shutting down")

	s.hub.closeAll()
	s.announcer.Shutdown()
	s.announcer = nil

	// Deactivate can be reached from inside a handler (a successful /connect
	// tears the portal down), so shut down gracefully in the background to
	// let the in-flight response complete.
	srv := s.httpSrv
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			_ = srv.Close()
		}
	}()

	s.httpSrv = nil
	s.ln = nil
}

// Port returns the bound port while active, 0 otherwise. Tests and the
// simulate command use it when ListenAddr requests an ephemeral port.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	return s.hub.count()
}

// OnStatusChange feeds the WebSocket status feed.
func (s *Server) OnStatusChange(from, to conn.Status) {
	s.hub.broadcast(StatusEvent{Type: "status", From: from.String(), To: to.String()})
}

// OnConnect feeds the WebSocket status feed.
func (s *Server) OnConnect() {
	s.hub.broadcast(StatusEvent{Type: "connected"})
}

// OnDisconnect feeds the WebSocket status feed.
func (s *Server) OnDisconnect() {
	s.hub.broadcast(StatusEvent{Type: "disconnected"})
}

// OnConfigModeStart feeds the WebSocket status feed.
func (s *Server) OnConfigModeStart() {
	s.hub.broadcast(StatusEvent{Type: "config_mode"})
}

type connectRequest struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type infoResponse struct {
	Name              string `json:"name"`
	Hostname          string `json:"hostname"`
	Version           string `json:"version"`
	Status            string `json:"status"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	ReconnectAttempts int    `json:"reconnect_attempts"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(setupPage))
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	logging.Info("Portal connect request received", zap.String("ssid", req.SSID))

	err := s.orch.SubmitCredentials(req.SSID, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "connected"})
	case storage.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case conn.IsJoinFailure(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	logging.Info("Portal reset request received")
	s.orch.RequestReset()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "resetting"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Name:              s.apSSID,
		Hostname:          s.cfg.Hostname,
		Version:           version.Version,
		Status:            s.orch.Status().String(),
		UptimeSeconds:     int64(s.orch.Uptime().Seconds()),
		ReconnectAttempts: s.orch.ReconnectAttempts(),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The setup AP is an isolated network; any origin that reached us is fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	s.hub.add(c)
	logging.Debug("WebSocket client connected", zap.String("remote_addr", c.RemoteAddr().String()))

	// Drain the connection until the client goes away; the broadcast path
	// owns all writes.
	go func() {
		defer func() {
			s.hub.remove(c)
			_ = c.Close()
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
