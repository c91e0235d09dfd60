package wire

import (
	"bytes"
	"fmt"
)

// Response is the outbound record. Origin is the nickname attached so a
// recipient can render authorship; it is empty for server-only responses
// such as Welcome. Message's meaning is Code-specific: a nickname, a topic,
// a space-joined list, a human sentence, or a decimal request id.
type Response struct {
	Version   uint8
	RequestID uint32
	Timestamp uint64
	Code      Code
	Origin    string `proto:"len_prefix=uint8"`
	Message   string `proto:"len_prefix=uint16"`
}

// EncodeResponse serializes resp and appends the frame terminator.
func EncodeResponse(resp Response) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Marshal(resp, buf); err != nil {
		return nil, err
	}
	buf.WriteString(frameTerminator)
	return buf.Bytes(), nil
}

// DecodeResponseFrame parses one de-terminated frame into a Response.
func DecodeResponseFrame(frame []byte) (Response, error) {
	var resp Response
	if err := Unmarshal(&resp, bytes.NewReader(frame)); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
	}
	return resp, nil
}
