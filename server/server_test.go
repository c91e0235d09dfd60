package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auldridge/driftline/config"
	"github.com/auldridge/driftline/hub"
	"github.com/auldridge/driftline/wire"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	h := hub.New(wire.Commands)
	logger := config.NewLogger(config.Config{LogLevel: "error"})
	srv := New("127.0.0.1:0", h, logger, "solace")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	var addr string
	require.Eventually(t, func() bool {
		if srv.Addr() == nil {
			return false
		}
		addr = srv.Addr().String()
		return true
	}, time.Second, time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-errCh
	})

	return srv, addr
}

func TestServer_AcceptsConnectionAndSendsWelcomeBundle(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	dec := wire.NewDecoder()
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	_, _ = dec.Write(buf[:n])

	frame, ferr := dec.Next()
	require.NoError(t, ferr)
	resp, derr := wire.DecodeResponseFrame(frame)
	require.NoError(t, derr)
	assert.Equal(t, wire.CodeWelcome, resp.Code)
}

func TestServer_ShutdownClosesListenerAndDrainsConnections(t *testing.T) {
	h := hub.New(wire.Commands)
	logger := config.NewLogger(config.Config{LogLevel: "error"})
	srv := New("127.0.0.1:0", h, logger, "solace")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, time.Millisecond)

	conn, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	require.NoError(t, <-errCh)

	_, err = net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	assert.Error(t, err)
}

func TestServer_DisconnectingClientDoesNotBlockShutdown(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)

	// Close immediately without reading the welcome bundle; the server's
	// read loop should observe EOF and unwind the session on its own.
	require.NoError(t, conn.Close())
}
