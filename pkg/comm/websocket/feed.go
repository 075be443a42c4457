// Package websocket streams playback events to monitors.
package websocket

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/playback"
)

// FeedPath is where the feed is served.
const FeedPath = "/events"

// ClientBacklog is the number of frames buffered per monitor,
// a monitor falling further behind misses frames.
const ClientBacklog = 64

// Feed fans playback events out to connected websocket monitors.
// Monitors asking for ?format=json receive JSON text frames, others
// receive Typed binary frames.
type Feed struct {
	*playback.EventStream

	lock    sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	json bool
	ch   chan fx.Message
}

// NewFeed creates a Feed.
func NewFeed(dropped func() uint64) *Feed {
	f := &Feed{clients: make(map[*client]struct{})}
	f.EventStream = &playback.EventStream{Emit: f.Broadcast, Dropped: dropped}
	return f
}

// Broadcast queues a message to every monitor without blocking.
func (f *Feed) Broadcast(msg fx.Message) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for c := range f.clients {
		select {
		case c.ch <- msg:
		default:
			glog.V(2).Infof("monitor %s lagging, frame dropped", c.conn.Request().RemoteAddr)
		}
	}
}

// Clients returns the number of connected monitors.
func (f *Feed) Clients() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.clients)
}

// Handler returns the websocket handler.
func (f *Feed) Handler() http.Handler {
	return websocket.Handler(f.serve)
}

func (f *Feed) serve(conn *websocket.Conn) {
	c := &client{
		conn: conn,
		json: conn.Request().URL.Query().Get("format") == "json",
		ch:   make(chan fx.Message, ClientBacklog),
	}
	f.lock.Lock()
	f.clients[c] = struct{}{}
	f.lock.Unlock()
	glog.Infof("monitor %s connected", conn.Request().RemoteAddr)
	defer func() {
		f.lock.Lock()
		delete(f.clients, c)
		f.lock.Unlock()
		glog.Infof("monitor %s disconnected", conn.Request().RemoteAddr)
	}()

	// a read error means the monitor went away
	gone := make(chan struct{})
	go func() {
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
		close(gone)
	}()

	for {
		select {
		case <-gone:
			return
		case msg := <-c.ch:
			if err := c.send(msg); err != nil {
				glog.Warningf("monitor %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		}
	}
}

func (c *client) send(msg fx.Message) error {
	if c.json {
		return websocket.JSON.Send(c.conn, &Frame{Type: frameType(msg), Message: msg})
	}
	data, err := msgs.Marshal(msg)
	if err != nil {
		return err
	}
	return New(c.conn).WritePacket(data)
}

// Frame is the JSON frame layout.
type Frame struct {
	Type    string      `json:"type"`
	Message interface{} `json:"message"`
}

func frameType(msg fx.Message) string {
	switch msg.(type) {
	case *msgs.ChannelEvent:
		return "channel"
	case *msgs.PlaybackStatus:
		return "status"
	}
	return "unknown"
}

// Server serves the feed over HTTP.
type Server struct {
	Addr string
	Feed *Feed

	listener net.Listener
}

// Listen binds the address so the actual address is known before Run.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.Addr = ln.Addr().String()
	return nil
}

// Name implements Named.
func (s *Server) Name() string {
	return "websocket-feed"
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	mux := http.NewServeMux()
	mux.Handle(FeedPath, s.Feed.Handler())
	server := &http.Server{Handler: mux}
	glog.Infof("monitor feed on ws://%s%s", s.Addr, FeedPath)
	return fx.RunWithContextCloser(ctx, server, func() error {
		if err := server.Serve(s.listener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
