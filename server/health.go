package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/auldridge/driftline/hub"
)

// HealthServer exposes GET /healthz and GET /stats. It carries no mutation,
// auth, or persistence surface; it exists purely so an operator or load
// balancer can tell the process is alive and see roster size at a glance.
type HealthServer struct {
	addr     string
	hub      *hub.Hub
	logger   *slog.Logger
	srv      *http.Server
	listener net.Listener
}

// NewHealthServer returns a HealthServer bound to addr, reporting on h.
func NewHealthServer(addr string, h *hub.Hub, logger *slog.Logger) *HealthServer {
	hs := &HealthServer{addr: addr, hub: h, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", hs.handleHealthz)
	mux.HandleFunc("/stats", hs.handleStats)
	hs.srv = &http.Server{Addr: addr, Handler: mux}

	return hs
}

// ListenAndServe blocks, serving health and stats requests until Shutdown
// is called.
func (hs *HealthServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", hs.addr)
	if err != nil {
		return err
	}
	hs.listener = ln
	hs.logger.Info("health server listening", "addr", hs.addr)
	err = hs.srv.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Addr returns the address the listener is bound to. It is only meaningful
// after ListenAndServe has started accepting.
func (hs *HealthServer) Addr() net.Addr {
	if hs.listener == nil {
		return nil
	}
	return hs.listener.Addr()
}

// Shutdown gracefully stops the health server.
func (hs *HealthServer) Shutdown(ctx context.Context) error {
	return hs.srv.Shutdown(ctx)
}

func (hs *HealthServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statsResponse struct {
	Connected int    `json:"connected"`
	Topic     string `json:"topic"`
}

func (hs *HealthServer) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := statsResponse{
		Connected: len(hs.hub.SnapshotNicks()),
		Topic:     hs.hub.Topic(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
