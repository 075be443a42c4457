// Package udp receives text datagrams over UDP.
package udp

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/robotalks/morse.go/pkg/comm"
)

// DefaultAddr listens on the station port on all interfaces.
const DefaultAddr = ":1234"

// MaxDatagramSize is the receive buffer size, longer payloads are truncated.
const MaxDatagramSize = 4096

// Reader implements comm.DatagramReader over a packet connection.
type Reader struct {
	conn net.PacketConn
	buf  []byte
}

// Listen opens a UDP socket on addr.
func Listen(addr string) (*Reader, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	return NewReader(conn), nil
}

// NewReader wraps a packet connection.
func NewReader(conn net.PacketConn) *Reader {
	return &Reader{conn: conn, buf: make([]byte, MaxDatagramSize)}
}

// Addr returns the local address.
func (r *Reader) Addr() net.Addr {
	return r.conn.LocalAddr()
}

// ReadDatagram implements comm.DatagramReader.
func (r *Reader) ReadDatagram() (comm.Datagram, error) {
	n, addr, err := r.conn.ReadFrom(r.buf)
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return comm.Datagram{}, io.EOF
		}
		return comm.Datagram{}, err
	}
	payload := make([]byte, n)
	copy(payload, r.buf[:n])
	return comm.Datagram{
		Payload:  payload,
		Sender:   addr.String(),
		Received: time.Now(),
	}, nil
}

// Close implements io.Closer.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// Send sends text as one datagram to addr.
func Send(addr, text string) error {
	if len(text) > MaxDatagramSize {
		return errors.New("text exceeds datagram size")
	}
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte(text))
	return err
}
