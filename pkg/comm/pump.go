package comm

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/framework"
)

// Pump reads datagrams from a reader, decodes them and feeds a Queue.
type Pump struct {
	Source string
	Reader DatagramReader
	Queue  *Queue

	received  uint64
	malformed uint64
}

// NewPump creates a Pump.
func NewPump(source string, reader DatagramReader, q *Queue) *Pump {
	return &Pump{Source: source, Reader: reader, Queue: q}
}

// Name implements Named.
func (p *Pump) Name() string {
	return "pump:" + p.Source
}

// Received returns the number of datagrams read.
func (p *Pump) Received() uint64 {
	return atomic.LoadUint64(&p.received)
}

// Malformed returns the number of datagrams rejected by Decode.
func (p *Pump) Malformed() uint64 {
	return atomic.LoadUint64(&p.malformed)
}

// Run implements Runnable. A reader implementing io.Closer is closed
// when ctx is done.
func (p *Pump) Run(ctx context.Context) error {
	if closer, ok := p.Reader.(io.Closer); ok {
		return framework.RunWithContextCloser(ctx, closer, func() error {
			return p.pump(ctx)
		})
	}
	return framework.RunWithContext(ctx, func() error {
		return p.pump(ctx)
	})
}

func (p *Pump) pump(ctx context.Context) error {
	for {
		d, err := p.Reader.ReadDatagram()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		atomic.AddUint64(&p.received, 1)
		text, err := Decode(d)
		if err != nil {
			atomic.AddUint64(&p.malformed, 1)
			glog.Warningf("%s: %v", p.Source, err)
			continue
		}
		if d.Received.IsZero() {
			d.Received = time.Now()
		}
		glog.Infof("%s: received %q from %s", p.Source, text, d.Sender)
		err = p.Queue.Put(ctx, Message{
			Text:     text,
			Sender:   d.Sender,
			Source:   p.Source,
			Received: d.Received,
		})
		if errors.Is(err, ErrQueueFull) {
			glog.Warningf("%s: queue full (%d pending), dropped %q from %s", p.Source, p.Queue.Cap(), text, d.Sender)
			continue
		}
		if err != nil {
			return err
		}
	}
}
