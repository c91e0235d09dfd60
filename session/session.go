// Package session drives one TCP connection: reading and decoding request
// frames, dispatching them against the shared hub, and rendering both
// direct replies and broadcast events back onto the wire.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/auldridge/driftline/config"
	"github.com/auldridge/driftline/hub"
	"github.com/auldridge/driftline/wire"
)

// errDisconnectRequested unwinds Run's select loop after a client-issued
// Disconnect has been acknowledged.
var errDisconnectRequested = errors.New("disconnect requested")

// Session owns a single connection's lifecycle: registering with the hub
// under a nickname, running the read/dispatch/deliver loop, and
// unregistering on the way out.
type Session struct {
	conn        net.Conn
	addr        netip.AddrPort
	hub         *hub.Hub
	logger      *slog.Logger
	networkName string
	dec         *wire.Decoder
	nick        string
	mailbox     *hub.Mailbox
}

// New wraps conn for service against h. Per-connection log fields travel on
// the context passed to Run rather than on logger: the caller attaches the
// remote address, and Run adds a connection id and the assigned nickname.
// networkName is announced to the client in the welcome bundle.
func New(conn net.Conn, h *hub.Hub, logger *slog.Logger, networkName string) *Session {
	addr, _ := netip.ParseAddrPort(conn.RemoteAddr().String())
	return &Session{
		conn:        conn,
		addr:        addr,
		hub:         h,
		logger:      logger,
		networkName: networkName,
		dec:         wire.NewDecoder(),
	}
}

// Run registers the session, sends the initial bundle, and services
// requests and broadcast events until the connection closes, the client
// disconnects, or ctx is cancelled. It always unregisters the session from
// the hub before returning.
func (s *Session) Run(ctx context.Context) error {
	ctx = config.WithConnID(ctx, uuid.NewString())

	nick := randomNick()
	mb, err := s.hub.Register(nick, s.addr)
	for errors.Is(err, hub.ErrNickInUse) {
		nick = randomNick()
		mb, err = s.hub.Register(nick, s.addr)
	}
	if err != nil {
		return err
	}
	s.nick = nick
	s.mailbox = mb
	ctx = config.WithNick(ctx, s.nick)

	defer s.hub.Remove(s.nick, s.mailbox)

	if err := s.sendWelcomeBundle(); err != nil {
		return err
	}
	s.hub.BroadcastOthers(s.nick, hub.Event{Kind: hub.EventClientConnected, Nick: s.nick})
	defer s.hub.BroadcastOthers(s.nick, hub.Event{Kind: hub.EventClientDisconnected, Nick: s.nick})

	reqCh := make(chan wire.Request)
	errCh := make(chan error, 1)
	go s.readLoop(ctx, reqCh, errCh)

	done := make(chan struct{})
	defer close(done)
	evCh := pumpMailbox(s.mailbox, done)

	for {
		select {
		case req, ok := <-reqCh:
			if !ok {
				return nil
			}
			if err := s.dispatch(req); err != nil {
				if errors.Is(err, errDisconnectRequested) {
					return nil
				}
				return err
			}
		case ev, ok := <-evCh:
			if !ok {
				continue
			}
			if err := s.deliver(ev); err != nil {
				return err
			}
		case err := <-errCh:
			if err != nil && !errors.Is(err, io.EOF) {
				s.logger.WarnContext(ctx, "connection read error", "err", err)
			}
			return nil
		case <-ctx.Done():
			_ = s.writeResponse(wire.Response{
				Version:   wire.ProtocolVersion,
				Timestamp: nowUnix(),
				Code:      wire.CodeDisconnected,
				Origin:    s.nick,
				Message:   "session ended by server",
			})
			return nil
		}
	}
}

func (s *Session) readLoop(ctx context.Context, reqCh chan<- wire.Request, errCh chan<- error) {
	defer close(reqCh)
	buf := make([]byte, 4096)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			_, _ = s.dec.Write(buf[:n])
			for {
				frame, ferr := s.dec.Next()
				if ferr != nil {
					break
				}
				req, derr := wire.DecodeRequestFrame(frame)
				if derr != nil {
					s.logger.WarnContext(ctx, "malformed request frame, closing session", "err", derr)
					errCh <- derr
					return
				}
				reqCh <- req
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (s *Session) sendWelcomeBundle() error {
	now := nowUnix()
	messages := []wire.Response{
		{Version: wire.ProtocolVersion, Timestamp: now, Code: wire.CodeWelcome, Message: fmt.Sprintf("Welcome to %s!", s.networkName)},
		{Version: wire.ProtocolVersion, Timestamp: now, Code: wire.CodeYourNick, Message: s.nick},
		{Version: wire.ProtocolVersion, Timestamp: now, Code: wire.CodeTopicChange, Message: s.hub.Topic()},
		{Version: wire.ProtocolVersion, Timestamp: now, Code: wire.CodeCommandList, Message: strings.Join(s.hub.Commands(), " ")},
		{Version: wire.ProtocolVersion, Timestamp: now, Code: wire.CodeNickList, Message: strings.Join(s.hub.SnapshotNicks(), " ")},
	}
	for _, m := range messages {
		if err := s.writeResponse(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) writeResponse(resp wire.Response) error {
	b, err := wire.EncodeResponse(resp)
	if err != nil {
		return err
	}
	_, err = s.conn.Write(b)
	return err
}

func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}
