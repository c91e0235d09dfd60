package wire

import (
	"bytes"
	"errors"
	"fmt"
)

// ProtocolVersion is the only request/response version this server
// understands. A request carrying any other value is rejected with
// ErrUnsupportedVersion.
const ProtocolVersion uint8 = 1

// Kind identifies which case of the inbound request tagged variant a Request
// carries.
type Kind uint8

const (
	KindPing Kind = iota
	KindMessage
	KindNewTopic
	KindNewNick
	KindWhoIs
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindPing:
		return "Ping"
	case KindMessage:
		return "Message"
	case KindNewTopic:
		return "NewTopic"
	case KindNewNick:
		return "NewNick"
	case KindWhoIs:
		return "WhoIs"
	case KindDisconnect:
		return "Disconnect"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// RequestBody is implemented by each case of the Request tagged variant.
// Ping and Disconnect carry no payload; the others carry a single
// length-prefixed string.
type RequestBody interface {
	Kind() Kind
}

// Ping carries no payload. The server replies with Pong to the sender only.
type Ping struct{}

func (Ping) Kind() Kind { return KindPing }

// ChatText is a plain chat line broadcast to every other participant.
type ChatText struct {
	Text string `proto:"len_prefix=uint16"`
}

func (ChatText) Kind() Kind { return KindMessage }

// NewTopic requests that the channel topic be replaced.
type NewTopic struct {
	Text string `proto:"len_prefix=uint16"`
}

func (NewTopic) Kind() Kind { return KindNewTopic }

// NewNick requests that the issuer's nickname be replaced.
type NewNick struct {
	Text string `proto:"len_prefix=uint16"`
}

func (NewNick) Kind() Kind { return KindNewNick }

// WhoIs requests the address of the session currently holding Nick.
type WhoIs struct {
	Nick string `proto:"len_prefix=uint16"`
}

func (WhoIs) Kind() Kind { return KindWhoIs }

// Disconnect is an orderly request to end the session.
type Disconnect struct{}

func (Disconnect) Kind() Kind { return KindDisconnect }

// Request is the inbound record: a client-chosen id (opaque to the server
// except for echoing in the ack) and one case of the tagged variant above.
type Request struct {
	Version uint8
	ID      uint32
	Message RequestBody
}

// EncodeRequest serializes req and appends the frame terminator. It is used
// by tests and by any client-side code that speaks this protocol.
func EncodeRequest(req Request) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := marshalByte(buf, req.Version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalFailure, err)
	}
	if err := Marshal(struct {
		ID uint32
	}{req.ID}, buf); err != nil {
		return nil, err
	}
	if err := marshalByte(buf, byte(req.Message.Kind())); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMarshalFailure, err)
	}
	if err := Marshal(req.Message, buf); err != nil {
		return nil, err
	}
	buf.WriteString(frameTerminator)
	return buf.Bytes(), nil
}

// DecodeRequestFrame parses one de-terminated frame (the bytes between
// frame boundaries, with the trailing \r\n already stripped) into a
// Request. A short frame or a body that doesn't match its declared kind is
// reported as ErrMalformedFrame; an unrecognized version is reported as
// ErrUnsupportedVersion.
func DecodeRequestFrame(frame []byte) (Request, error) {
	r := bytes.NewReader(frame)

	version, err := unmarshalByte(r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	if version != ProtocolVersion {
		return Request{}, fmt.Errorf("%w: got version %d", ErrUnsupportedVersion, version)
	}

	var idField struct {
		ID uint32
	}
	if err := Unmarshal(&idField, r); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	kindByte, err := unmarshalByte(r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	body, err := decodeRequestBody(Kind(kindByte), r)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}

	return Request{Version: version, ID: idField.ID, Message: body}, nil
}

func decodeRequestBody(kind Kind, r *bytes.Reader) (RequestBody, error) {
	switch kind {
	case KindPing:
		return Ping{}, nil
	case KindMessage:
		var m ChatText
		if err := Unmarshal(&m, r); err != nil {
			return nil, err
		}
		return m, nil
	case KindNewTopic:
		var m NewTopic
		if err := Unmarshal(&m, r); err != nil {
			return nil, err
		}
		return m, nil
	case KindNewNick:
		var m NewNick
		if err := Unmarshal(&m, r); err != nil {
			return nil, err
		}
		return m, nil
	case KindWhoIs:
		var m WhoIs
		if err := Unmarshal(&m, r); err != nil {
			return nil, err
		}
		return m, nil
	case KindDisconnect:
		return Disconnect{}, nil
	default:
		return nil, errors.New("unrecognized request kind")
	}
}
