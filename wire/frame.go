package wire

import (
	"bytes"
	"errors"
)

// frameTerminator ends every encoded record on the wire.
const frameTerminator = "\r\n"

var (
	// ErrMalformedFrame means the codec could not decode a frame: a short
	// header, an invalid string encoding, or an unrecognized tag byte. The
	// offending frame is discarded; the stream resyncs at the next
	// terminator. Only the session that produced it is torn down.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrUnsupportedVersion means the frame's version byte isn't one this
	// server understands.
	ErrUnsupportedVersion = errors.New("unsupported protocol version")

	// ErrNeedMoreData means the accumulator does not yet contain a full
	// frame; the caller should read more bytes and try again.
	ErrNeedMoreData = errors.New("need more data")
)

// Decoder finds frame boundaries in a byte stream that may arrive in
// arbitrarily small chunks. It holds a growing accumulator; Write appends to
// it, Next pulls the next complete frame (the bytes before the terminator,
// with the terminator consumed) off the front. A partial frame leaves the
// accumulator untouched until more bytes arrive.
//
// Decoder is not safe for concurrent use.
type Decoder struct {
	buf bytes.Buffer
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Write appends p to the accumulator. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

// Next returns the next complete frame's bytes, with the trailing \r\n
// stripped and removed from the accumulator. If no terminator is present
// yet, it returns ErrNeedMoreData and leaves the accumulator untouched.
func (d *Decoder) Next() ([]byte, error) {
	b := d.buf.Bytes()
	idx := bytes.Index(b, []byte(frameTerminator))
	if idx < 0 {
		return nil, ErrNeedMoreData
	}
	frame := make([]byte, idx)
	copy(frame, b[:idx])
	d.buf.Next(idx + len(frameTerminator))
	return frame, nil
}
