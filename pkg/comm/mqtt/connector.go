package mqtt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
)

// Connector is used by operators to find and talk to stations.
type Connector struct {
	Client          *Client
	DiscoverTimeout time.Duration
	// Sender identifies the operator in text commands.
	Sender string
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector, it connects on first use.
func NewConnector(brokerURL string) (*Connector, error) {
	client, err := NewClientFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{Client: client, DiscoverTimeout: DefaultDiscoverTimeout}, nil
}

// Connect connects the client.
func (c *Connector) Connect() error {
	return c.Client.ConnectAndWait()
}

// Close disconnects.
func (c *Connector) Close() error {
	return c.Client.Close()
}

// Discover collects announced stations until the timeout elapses.
func (c *Connector) Discover(ctx context.Context) ([]comm.StationInfo, error) {
	var lock sync.Mutex
	found := make(map[string]comm.StationInfo)
	sub := c.Client.Sub("+/+/"+TopicMeta, func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		info := comm.StationInfo{Ref: comm.StationRef{Type: items[0], ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("%s: %v", topic, err)
		}
		lock.Lock()
		found[info.Ref.Name()] = info
		lock.Unlock()
	})
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	var err error
	select {
	case <-time.After(dur):
	case <-ctx.Done():
		err = ctx.Err()
	}

	lock.Lock()
	defer lock.Unlock()
	res := make([]comm.StationInfo, 0, len(found))
	for _, info := range found {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ref.Name() < res[j].Ref.Name() })
	return res, err
}

// SendText submits text to a station.
func (c *Connector) SendText(ref comm.StationRef, text string) error {
	token, err := c.Client.PubMsg(Topic(ref, TopicText), &msgs.TextCommand{Text: text, Sender: c.Sender})
	if err != nil {
		return err
	}
	return c.Client.Wait(token)
}

// Watch delivers events and status of a station until ctx is done.
func (c *Connector) Watch(ctx context.Context, ref comm.StationRef, fn func(fx.Message)) error {
	handler := func(topic string, payload []byte) {
		msg, err := msgs.Unmarshal(payload)
		if err != nil {
			glog.Warningf("%s: %v", topic, err)
			return
		}
		fn(msg)
	}
	events := c.Client.Sub(Topic(ref, TopicEvents), handler)
	defer events.Close()
	status := c.Client.Sub(Topic(ref, TopicStatus), handler)
	defer status.Close()
	<-ctx.Done()
	return ctx.Err()
}
