package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/auldridge/driftline/hub"
	"github.com/auldridge/driftline/messageast"
	"github.com/auldridge/driftline/wire"
)

func (s *Session) dispatch(req wire.Request) error {
	if err := s.ack(req.ID); err != nil {
		return err
	}

	switch m := req.Message.(type) {
	case wire.Ping:
		return s.handlePing()
	case wire.ChatText:
		return s.handleChatText(m)
	case wire.NewTopic:
		return s.handleNewTopic(m)
	case wire.NewNick:
		return s.handleNewNick(m)
	case wire.WhoIs:
		return s.handleWhoIs(m)
	case wire.Disconnect:
		return s.handleDisconnect()
	default:
		return fmt.Errorf("unhandled request kind %T", m)
	}
}

func (s *Session) ack(id uint32) error {
	return s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		RequestID: id,
		Timestamp: nowUnix(),
		Code:      wire.CodeAckMessage,
		Origin:    s.nick,
		Message:   strconv.FormatUint(uint64(id), 10),
	})
}

func (s *Session) handlePing() error {
	return s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodePong,
		Origin:    s.nick,
		Message:   "Pong",
	})
}

// handleChatText broadcasts ordinary text to every other participant. Text
// that itself parses as a leading command (a client that didn't special-case
// a slash command it doesn't recognize, or a bare "/name" a user typed by
// hand) is rejected with CommandNotFound instead of being broadcast as a
// chat line.
func (s *Session) handleChatText(m wire.ChatText) error {
	parsed := messageast.Parse(m.Text)
	if parsed.IsCommand {
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeCommandNotFound,
			Origin:    s.nick,
			Message:   parsed.CommandName,
		})
	}

	s.hub.BroadcastOthers(s.nick, hub.Event{Kind: hub.EventSent, FromNick: s.nick, Text: m.Text})
	return s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeChatMessageOk,
		Origin:    s.nick,
		Message:   m.Text,
	})
}

// handleNewTopic trims and sets the channel topic, then sends the issuer
// its own TopicChange/TopicChangeMessage pair directly and fans the same
// pair out to everyone else, worded from their point of view.
func (s *Session) handleNewTopic(m wire.NewTopic) error {
	trimmed := s.hub.SetTopic(m.Text)

	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeTopicChange,
		Message:   trimmed,
	}); err != nil {
		return err
	}
	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeTopicChangeMessage,
		Message:   fmt.Sprintf("You changed the channel topic to: %s", trimmed),
	}); err != nil {
		return err
	}

	s.hub.BroadcastOthers(s.nick, hub.Event{Kind: hub.EventTopicChanged, FromNick: s.nick, Topic: trimmed})
	return nil
}

const maxNickLength = randomNickLength

// handleNewNick validates and applies a nickname change, then notifies the
// issuer directly (YourNick, NickChange, NickList) and fans the equivalent
// notifications out to everyone else.
func (s *Session) handleNewNick(m wire.NewNick) error {
	newNick := strings.TrimSpace(m.Text)
	if n := utf8.RuneCountInString(newNick); n < 1 || n > maxNickLength {
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeInvalidArgument,
			Origin:    s.nick,
			Message:   fmt.Sprintf("nickname must be 1-%d characters", maxNickLength),
		})
	}

	oldNick := s.nick
	if err := s.hub.Rename(oldNick, newNick); err != nil {
		if errors.Is(err, hub.ErrNickInUse) {
			return s.writeResponse(wire.Response{
				Version:   wire.ProtocolVersion,
				Timestamp: nowUnix(),
				Code:      wire.CodeNickInUse,
				Origin:    s.nick,
				Message:   newNick,
			})
		}
		return err
	}
	if newNick == oldNick {
		return nil
	}
	s.nick = newNick

	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeYourNick,
		Message:   newNick,
	}); err != nil {
		return err
	}
	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeNickChange,
		Origin:    oldNick,
		Message:   fmt.Sprintf("You are now known as %s", newNick),
	}); err != nil {
		return err
	}

	s.hub.BroadcastOthers(newNick, hub.Event{Kind: hub.EventNickChanged, OldNick: oldNick, NewNick: newNick})

	nicks := s.hub.SnapshotNicks()
	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeNickList,
		Message:   strings.Join(nicks, " "),
	}); err != nil {
		return err
	}
	s.hub.BroadcastOthers(newNick, hub.Event{Kind: hub.EventNickList, Nicks: nicks})
	return nil
}

func (s *Session) handleWhoIs(m wire.WhoIs) error {
	addr, found := s.hub.LookupNick(m.Nick)
	s.hub.BroadcastTo(s.nick, hub.Event{
		Kind:       hub.EventWhoIs,
		WhoIsNick:  m.Nick,
		WhoIsAddr:  addr,
		WhoIsFound: found,
	})
	return nil
}

func (s *Session) handleDisconnect() error {
	if err := s.writeResponse(wire.Response{
		Version:   wire.ProtocolVersion,
		Timestamp: nowUnix(),
		Code:      wire.CodeGoodbye,
		Origin:    s.nick,
		Message:   fmt.Sprintf("%s has left the channel", s.nick),
	}); err != nil {
		return err
	}
	return errDisconnectRequested
}

// deliver renders a hub-broadcast event into a wire response. Events
// address this session specifically (WhoIs) or the whole channel (everyone
// else, excluding whoever triggered the event directly — they already got
// their own copy before the broadcast went out).
func (s *Session) deliver(ev hub.Event) error {
	switch ev.Kind {
	case hub.EventSent:
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeChatMessageOk,
			Origin:    ev.FromNick,
			Message:   ev.Text,
		})
	case hub.EventTopicChanged:
		if err := s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeTopicChange,
			Message:   ev.Topic,
		}); err != nil {
			return err
		}
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeTopicChangeMessage,
			Message:   fmt.Sprintf("%s changed the channel topic to: %s", ev.FromNick, ev.Topic),
		})
	case hub.EventNickChanged:
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeNickChange,
			Origin:    ev.OldNick,
			Message:   fmt.Sprintf("%s is now known as %s", ev.OldNick, ev.NewNick),
		})
	case hub.EventNickList:
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeNickList,
			Message:   strings.Join(ev.Nicks, " "),
		})
	case hub.EventWhoIs:
		if !ev.WhoIsFound {
			return s.writeResponse(wire.Response{
				Version:   wire.ProtocolVersion,
				Timestamp: nowUnix(),
				Code:      wire.CodeWhoIsError,
				Message:   fmt.Sprintf("User %s not found in this channel", ev.WhoIsNick),
			})
		}
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeWhoIs,
			Origin:    ev.WhoIsNick,
			Message:   fmt.Sprintf("%s is: %s", ev.WhoIsNick, ev.WhoIsAddr),
		})
	case hub.EventClientConnected:
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeHello,
			Origin:    ev.Nick,
			Message:   fmt.Sprintf("%s has joined", ev.Nick),
		})
	case hub.EventClientDisconnected:
		return s.writeResponse(wire.Response{
			Version:   wire.ProtocolVersion,
			Timestamp: nowUnix(),
			Code:      wire.CodeGoodbye,
			Origin:    ev.Nick,
			Message:   fmt.Sprintf("%s has left the channel", ev.Nick),
		})
	default:
		return fmt.Errorf("unhandled event kind %v", ev.Kind)
	}
}
