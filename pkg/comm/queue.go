package comm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// Policy decides what happens to a message arriving while the queue is full.
type Policy int

// Policies
const (
	// PolicyQueue blocks the producer until there is room.
	PolicyQueue Policy = iota
	// PolicyDrop discards the message.
	PolicyDrop
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyQueue:
		return "queue"
	case PolicyDrop:
		return "drop"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy parses "queue" or "drop".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "queue", "":
		return PolicyQueue, nil
	case "drop":
		return PolicyDrop, nil
	}
	return PolicyQueue, fmt.Errorf("unknown overflow policy %q", s)
}

// ErrQueueFull is returned by Put under PolicyDrop when the queue is full.
// With a zero depth every message arriving during playback is dropped.
var ErrQueueFull = errors.New("queue full")

// Queue buffers messages between sources and the playback loop.
type Queue struct {
	Policy Policy

	ch      chan Message
	dropped uint64
}

// NewQueue creates a Queue holding up to depth pending messages.
// A zero depth hands each message over directly.
func NewQueue(depth int, policy Policy) *Queue {
	if depth < 0 {
		depth = 0
	}
	return &Queue{Policy: policy, ch: make(chan Message, depth)}
}

// Put enqueues a message.
func (q *Queue) Put(ctx context.Context, msg Message) error {
	if q.Policy == PolicyDrop {
		select {
		case q.ch <- msg:
			return nil
		default:
			atomic.AddUint64(&q.dropped, 1)
			return ErrQueueFull
		}
	}
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get dequeues a message, blocking until one is available or ctx is done.
func (q *Queue) Get(ctx context.Context) (Message, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// C exposes the receive channel.
func (q *Queue) C() <-chan Message {
	return q.ch
}

// Cap returns the number of messages the queue holds while playback is busy.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns the number of messages discarded.
func (q *Queue) Dropped() uint64 {
	return atomic.LoadUint64(&q.dropped)
}
