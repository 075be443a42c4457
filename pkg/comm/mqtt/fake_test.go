package mqtt

import (
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

func eventually(t *testing.T, cond func() bool) {
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 1s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

type fakePub struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeBroker routes publishes between attached clients in-process.
type fakeBroker struct {
	lock      sync.Mutex
	clients   []*fakePaho
	retained  map[string][]byte
	published []fakePub
	pubErr    error
	// connectFailures fails this many Connect calls before succeeding.
	connectFailures int
	connects        int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{retained: make(map[string][]byte)}
}

func (b *fakeBroker) attach(prefix string) *Client {
	c := &Client{TopicPrefix: prefix, Timeout: time.Second}
	p := &fakePaho{broker: b, owner: c, filters: make(map[string]bool)}
	c.Paho = p
	b.lock.Lock()
	b.clients = append(b.clients, p)
	b.lock.Unlock()
	return c
}

func (b *fakeBroker) connectCount() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.connects
}

func (b *fakeBroker) pubs(topic string) []fakePub {
	b.lock.Lock()
	defer b.lock.Unlock()
	var out []fakePub
	for _, p := range b.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

type fakePaho struct {
	broker    *fakeBroker
	owner     *Client
	filters   map[string]bool
	connected bool
}

func (p *fakePaho) Connect() paho.Token {
	p.broker.lock.Lock()
	p.broker.connects++
	if p.broker.connectFailures > 0 {
		p.broker.connectFailures--
		p.broker.lock.Unlock()
		return &fakeToken{err: errors.New("connection refused")}
	}
	p.connected = true
	p.broker.lock.Unlock()
	p.owner.onConnect(nil)
	return &fakeToken{}
}

func (p *fakePaho) Disconnect(uint) {
	p.broker.lock.Lock()
	p.connected = false
	p.broker.lock.Unlock()
}

func (p *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	data, _ := payload.([]byte)
	b := p.broker
	b.lock.Lock()
	if b.pubErr != nil {
		err := b.pubErr
		b.lock.Unlock()
		return &fakeToken{err: err}
	}
	b.published = append(b.published, fakePub{topic: topic, payload: data, retained: retained})
	if retained {
		if len(data) == 0 {
			delete(b.retained, topic)
		} else {
			b.retained[topic] = data
		}
	}
	var targets []*Client
	for _, c := range b.clients {
		if !c.connected {
			continue
		}
		for filter := range c.filters {
			if MatchTopic(topic, filter) {
				targets = append(targets, c.owner)
				break
			}
		}
	}
	b.lock.Unlock()
	for _, c := range targets {
		c.deliver(topic, data)
	}
	return &fakeToken{}
}

func (p *fakePaho) subscribe(filters ...string) {
	b := p.broker
	type delivery struct {
		topic   string
		payload []byte
	}
	var pending []delivery
	b.lock.Lock()
	for _, f := range filters {
		p.filters[f] = true
		for topic, data := range b.retained {
			if MatchTopic(topic, f) {
				pending = append(pending, delivery{topic, data})
			}
		}
	}
	b.lock.Unlock()
	for _, d := range pending {
		p.owner.deliver(d.topic, d.payload)
	}
}

func (p *fakePaho) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	p.subscribe(topic)
	return &fakeToken{}
}

func (p *fakePaho) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	var topics []string
	for f := range filters {
		topics = append(topics, f)
	}
	p.subscribe(topics...)
	return &fakeToken{}
}

func (p *fakePaho) Unsubscribe(topics ...string) paho.Token {
	p.broker.lock.Lock()
	for _, t := range topics {
		delete(p.filters, t)
	}
	p.broker.lock.Unlock()
	return &fakeToken{}
}
