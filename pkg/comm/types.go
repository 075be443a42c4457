package comm

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Datagram is one inbound payload.
type Datagram struct {
	Payload  []byte
	Sender   string
	Received time.Time
}

// DatagramReader reads datagrams, blocking until one arrives.
// io.EOF is returned once the reader is closed.
type DatagramReader interface {
	ReadDatagram() (Datagram, error)
}

// Message is a decoded text message ready for playback.
type Message struct {
	Text     string
	Sender   string
	Source   string
	Received time.Time
}

// ErrMalformedInput indicates a payload is not valid text.
var ErrMalformedInput = errors.New("malformed input")

// Decode interprets a datagram payload as UTF-8 text.
func Decode(d Datagram) (string, error) {
	if !utf8.Valid(d.Payload) {
		return "", fmt.Errorf("%w: invalid UTF-8 from %s", ErrMalformedInput, d.Sender)
	}
	return string(d.Payload), nil
}
