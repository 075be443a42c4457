// Package mqtt connects stations and operators through an MQTT broker.
package mqtt

import (
	"container/list"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// PahoClient is the part of paho.Client used here.
type PahoClient interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// DefaultTimeout bounds waits on broker acknowledgements.
const DefaultTimeout = 2 * time.Second

// ErrTimeout indicates the broker did not acknowledge in time.
var ErrTimeout = errors.New("mqtt timeout")

// Client wraps a paho client with prefixed topics and fan-out dispatch.
type Client struct {
	Paho         PahoClient
	TopicPrefix  string
	Timeout      time.Duration
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock     sync.RWMutex
	subs         map[string]*list.List
	wildcardSubs map[string]*list.List
}

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Client)

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	client   *Client
	elm      *list.Element
	topic    string
	wildcard bool
	handler  Handler
}

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

// ClientOptionsFromURL creates ClientOptions from URL.
// The URL path becomes the topic prefix, e.g. mqtt://host:1883/lab/.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	var server string
	if u.Scheme == "" || u.Scheme == "mqtt" {
		server = "tcp"
	} else {
		server = u.Scheme
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewClient creates a Client over a paho client built from options.
func NewClient(options *paho.ClientOptions, topicPrefix string) *Client {
	c := &Client{TopicPrefix: topicPrefix, Timeout: DefaultTimeout}
	options.SetOnConnectHandler(c.onConnect)
	options.SetConnectionLostHandler(c.onConnectionLost)
	c.Paho = paho.NewClient(options)
	return c
}

// NewClientFromURL creates Client from URL.
func NewClientFromURL(brokerURL string) (*Client, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewClient(opts, topicPrefix), nil
}

// Connect connects the client.
func (c *Client) Connect() paho.Token {
	return c.Paho.Connect()
}

// ConnectAndWait connects and waits for the broker.
func (c *Client) ConnectAndWait() error {
	return c.Wait(c.Connect())
}

// Wait waits for a token within Timeout.
func (c *Client) Wait(token paho.Token) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}

// Close implements io.Closer.
func (c *Client) Close() error {
	c.Paho.Disconnect(250)
	return nil
}

// Sub subscribes a topic relative to the prefix.
func (c *Client) Sub(topic string, handler Handler) *Subscription {
	wildcard := strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
	var newSub bool
	c.subsLock.Lock()
	if c.subs == nil {
		c.subs = make(map[string]*list.List)
	}
	if c.wildcardSubs == nil {
		c.wildcardSubs = make(map[string]*list.List)
	}
	subs := c.subs
	if wildcard {
		subs = c.wildcardSubs
	}
	lst := subs[topic]
	if lst == nil {
		lst = list.New()
		subs[topic] = lst
		newSub = true
	}
	sub := &Subscription{
		client:   c,
		topic:    topic,
		wildcard: wildcard,
		handler:  handler,
	}
	sub.elm = lst.PushBack(sub)
	c.subsLock.Unlock()

	if newSub {
		glog.V(2).Infof("SUB %q", c.TopicPrefix+topic)
		sub.Token = c.Paho.Subscribe(c.TopicPrefix+topic, 0, c.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic.
func (c *Client) Pub(topic string, payload []byte) paho.Token {
	return c.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (c *Client) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return c.Paho.Publish(c.TopicPrefix+topic, qos, retain, payload)
}

// PubMsg publishes a message in a Typed envelope.
func (c *Client) PubMsg(topic string, msg fx.Message) (paho.Token, error) {
	data, err := msgs.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return c.Pub(topic, data), nil
}

// Resubscribe subscribes all existing topics, it runs on every connect.
func (c *Client) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	c.subsLock.RLock()
	for topic := range c.subs {
		filters[c.TopicPrefix+topic] = 0
	}
	for topic := range c.wildcardSubs {
		filters[c.TopicPrefix+topic] = 0
	}
	c.subsLock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	if glog.V(2) {
		for key := range filters {
			glog.Infof("SUB %q", key)
		}
	}
	return c.Paho.SubscribeMultiple(filters, c.dispatch)
}

func (c *Client) onConnect(paho.Client) {
	glog.Info("mqtt connected")
	c.Resubscribe()
	if h := c.OnConnect; h != nil {
		h(c)
	}
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("mqtt connection lost: %v", err)
	if h := c.OnDisconnect; h != nil {
		h(c)
	}
}

func (c *Client) dispatch(_ paho.Client, msg paho.Message) {
	c.deliver(msg.Topic(), msg.Payload())
}

func (c *Client) deliver(topic string, payload []byte) {
	if !strings.HasPrefix(topic, c.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(c.TopicPrefix):]
	var handlers []Handler
	c.subsLock.RLock()
	if lst := c.subs[topic]; lst != nil {
		for elm := lst.Front(); elm != nil; elm = elm.Next() {
			handlers = append(handlers, elm.Value.(*Subscription).handler)
		}
	}
	for key, lst := range c.wildcardSubs {
		if MatchTopic(topic, key) {
			for elm := lst.Front(); elm != nil; elm = elm.Next() {
				handlers = append(handlers, elm.Value.(*Subscription).handler)
			}
		}
	}
	c.subsLock.RUnlock()
	for _, h := range handlers {
		h(topic, payload)
	}
}

// Close unsubscribes a handler.
func (s *Subscription) Close() error {
	var unsub bool
	c := s.client
	c.subsLock.Lock()
	subs := c.subs
	if s.wildcard {
		subs = c.wildcardSubs
	}
	if lst := subs[s.topic]; lst != nil {
		lst.Remove(s.elm)
		if unsub = lst.Len() == 0; unsub {
			delete(subs, s.topic)
		}
	}
	c.subsLock.Unlock()
	if unsub {
		glog.V(2).Infof("UNSUB %q", s.topic)
		return c.Wait(c.Paho.Unsubscribe(c.TopicPrefix + s.topic))
	}
	return nil
}
