// Package server runs the TCP listener that accepts chat connections and
// the small HTTP surface used for health checks and basic stats.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/auldridge/driftline/config"
	"github.com/auldridge/driftline/hub"
	"github.com/auldridge/driftline/session"
)

// Server owns the chat TCP listener: accepting connections, handing each
// one to a session, and tracking them so Shutdown can wait for every
// in-flight connection to finish before returning.
type Server struct {
	addr        string
	hub         *hub.Hub
	logger      *slog.Logger
	networkName string

	listener net.Listener

	connMu sync.Mutex
	conns  map[net.Conn]struct{}

	connWg sync.WaitGroup

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	closed         chan struct{}
}

// New returns a Server that will listen on addr and register connections
// with h. networkName is passed through to each session for its welcome
// bundle.
func New(addr string, h *hub.Hub, logger *slog.Logger, networkName string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:           addr,
		hub:            h,
		logger:         logger,
		networkName:    networkName,
		conns:          make(map[net.Conn]struct{}),
		shutdownCtx:    ctx,
		shutdownCancel: cancel,
		closed:         make(chan struct{}),
	}
}

// ListenAndServe binds the listener and accepts connections until Shutdown
// is called. It blocks for the lifetime of the server.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.shutdownCancel()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.logger.Info("listening for connections", "addr", s.addr)

	go s.acceptLoop(ln)

	<-s.closed
	return nil
}

// Addr returns the address the listener is bound to. It is only meaningful
// after ListenAndServe has started accepting.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to drain, or for ctx to be cancelled, whichever comes first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("initiating graceful shutdown")
	s.shutdownCancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.connWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("shutdown complete")
	case <-ctx.Done():
		s.logger.Info("shutdown deadline hit before all connections closed")
	}

	close(s.closed)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error("accept error", "err", err)
			continue
		}

		s.connMu.Lock()
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.connWg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
		_ = conn.Close()
		s.connWg.Done()
	}()

	ctx := config.WithRemoteAddr(s.shutdownCtx, conn.RemoteAddr().String())
	sess := session.New(conn, s.hub, s.logger, s.networkName)
	if err := sess.Run(ctx); err != nil {
		s.logger.InfoContext(ctx, "session ended with error", "err", err)
	}
}
