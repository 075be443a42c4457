package playback

import (
	"context"
	"sync"
	"time"

	"github.com/robotalks/morse.go/pkg/framework"
)

// Clock provides time and cooperative holds to the controller.
type Clock interface {
	framework.TimeSource
	// Sleep holds for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

// WallClock is the real time Clock.
var WallClock Clock = wallClock{}

func (wallClock) Time() time.Time {
	return time.Now()
}

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// VirtualClock advances instantly on Sleep.
type VirtualClock struct {
	// OnSleep is invoked with each hold after time advanced.
	OnSleep func(d time.Duration)

	lock  sync.Mutex
	now   time.Time
	slept []time.Duration
}

// NewVirtualClock creates a VirtualClock starting at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Time implements framework.TimeSource.
func (c *VirtualClock) Time() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Sleep implements Clock.
func (c *VirtualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.lock.Lock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	fn := c.OnSleep
	c.lock.Unlock()
	if fn != nil {
		fn(d)
	}
	return ctx.Err()
}

// Slept returns all holds taken so far.
func (c *VirtualClock) Slept() []time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

// Elapsed sums all holds.
func (c *VirtualClock) Elapsed() time.Duration {
	var total time.Duration
	for _, d := range c.Slept() {
		total += d
	}
	return total
}
