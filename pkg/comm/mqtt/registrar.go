package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/comm"
)

// Registrar announces a station through a retained meta topic.
// An empty retained will clears the announcement if the station dies.
type Registrar struct {
	Client *Client
	Info   comm.StationInfo
	// RetryInterval is the first delay between connect attempts,
	// doubled after every failure up to MaxRetryInterval.
	RetryInterval time.Duration

	metaJSON []byte
}

// Connect retry delays.
const (
	DefaultRetryInterval = time.Second
	MaxRetryInterval     = 30 * time.Second
)

// DialStation creates the station client with its will and a Registrar.
func DialStation(brokerURL string, info comm.StationInfo) (*Registrar, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+Topic(info.Ref, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("morse:" + info.Ref.Name())
	}
	return NewRegistrar(NewClient(opts, topicPrefix), info)
}

// NewRegistrar creates a Registrar on a client.
func NewRegistrar(client *Client, info comm.StationInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	r := &Registrar{Client: client, Info: info, RetryInterval: DefaultRetryInterval, metaJSON: meta}
	client.OnConnect = func(*Client) { r.announce() }
	return r, nil
}

// Name implements Named.
func (r *Registrar) Name() string {
	return "mqtt-registrar"
}

// Run implements Runnable. It connects, retrying until the broker is
// reachable, then withdraws the announcement and disconnects when ctx
// is done.
func (r *Registrar) Run(ctx context.Context) error {
	defer r.Client.Close()
	if !r.connect(ctx) {
		return nil
	}
	<-ctx.Done()
	if err := r.Client.Wait(r.Client.PubWith(Topic(r.Info.Ref, TopicMeta), nil, 1, true)); err != nil {
		glog.Warningf("withdraw %s: %v", r.Info.Ref.Name(), err)
	}
	return nil
}

// connect returns false if ctx is done before a connection is made.
func (r *Registrar) connect(ctx context.Context) bool {
	delay := r.RetryInterval
	if delay <= 0 {
		delay = DefaultRetryInterval
	}
	for {
		err := r.Client.ConnectAndWait()
		if err == nil {
			return true
		}
		glog.Warningf("mqtt connect: %v, retry in %v", err, delay)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		if delay *= 2; delay > MaxRetryInterval {
			delay = MaxRetryInterval
		}
	}
}

func (r *Registrar) announce() {
	glog.Infof("announce %s", r.Info.Ref.Name())
	r.Client.PubWith(Topic(r.Info.Ref, TopicMeta), r.metaJSON, 1, true)
}
