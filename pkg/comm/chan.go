package comm

import (
	"io"
	"sync"
)

// ChanReader is a DatagramReader fed through Push.
type ChanReader struct {
	ch        chan Datagram
	done      chan struct{}
	closeOnce sync.Once
}

// NewChanReader creates a ChanReader buffering up to size datagrams.
func NewChanReader(size int) *ChanReader {
	return &ChanReader{ch: make(chan Datagram, size), done: make(chan struct{})}
}

// Push delivers a datagram, it returns false once the reader is closed.
func (r *ChanReader) Push(d Datagram) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.ch <- d:
		return true
	case <-r.done:
		return false
	}
}

// ReadDatagram implements DatagramReader. Pending datagrams are
// drained before io.EOF is reported.
func (r *ChanReader) ReadDatagram() (Datagram, error) {
	select {
	case d := <-r.ch:
		return d, nil
	default:
	}
	select {
	case d := <-r.ch:
		return d, nil
	case <-r.done:
		return Datagram{}, io.EOF
	}
}

// Close implements io.Closer.
func (r *ChanReader) Close() error {
	r.closeOnce.Do(func() { close(r.done) })
	return nil
}
