package websocket

import (
	"context"

	"golang.org/x/net/websocket"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
)

// ReadWriter reads and writes binary packets on a websocket.
type ReadWriter websocket.Conn

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	return (*ReadWriter)(conn)
}

// Dial connects to a feed, e.g. ws://host:8080/events.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadPacket reads one binary frame.
func (p *ReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(p), &pkt)
	return
}

// WritePacket writes one binary frame.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(p), pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return (*websocket.Conn)(p).Close()
}

// Watch decodes feed frames into fn until ctx is done or the feed closes.
func Watch(ctx context.Context, url string, fn func(fx.Message)) error {
	rw, err := Dial(url)
	if err != nil {
		return err
	}
	return fx.RunWithContextCloser(ctx, rw, func() error {
		for {
			pkt, err := rw.ReadPacket()
			if err != nil {
				return err
			}
			msg, err := msgs.Unmarshal(pkt)
			if err != nil {
				return err
			}
			fn(msg)
		}
	})
}
