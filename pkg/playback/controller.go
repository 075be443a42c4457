package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/morse.go/pkg/morse"
	"github.com/robotalks/morse.go/pkg/output"
)

// Banners shown on the display.
const (
	StartBanner = "START CONVERSION"
	DoneBanner  = "TRANSLATION DONE"
	// UnitSeparator follows the character of a non-final unit.
	UnitSeparator = " = "
)

// Controller plays encoded messages on the sinks, one at a time.
type Controller struct {
	Sinks   *output.Sinks
	Encoder *morse.Encoder
	Timing  Timing
	Clock   Clock

	playLock  sync.Mutex
	lock      sync.RWMutex
	status    Status
	observers []Observer
}

// New creates a Controller with default timing and the wall clock.
func New(sinks *output.Sinks) *Controller {
	return &Controller{
		Sinks:   sinks,
		Encoder: morse.NewEncoder(morse.DefaultCapacity),
		Timing:  DefaultTiming(),
		Clock:   WallClock,
		status:  Status{State: StateIdle, Unit: -1},
	}
}

// AddObserver registers observers.
func (c *Controller) AddObserver(observers ...Observer) *Controller {
	c.lock.Lock()
	c.observers = append(c.observers, observers...)
	c.lock.Unlock()
	return c
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.status
}

// State returns the current state.
func (c *Controller) State() State {
	return c.Status().State
}

// Play encodes text and plays it. A message over capacity is discarded
// without any output and the encoder error is returned.
func (c *Controller) Play(ctx context.Context, text string) (*Report, error) {
	msg, err := c.Encoder.Encode(text)
	if err != nil {
		glog.Warningf("message rejected: %v", err)
		c.notifyState(Status{State: StateIdle, Text: text, Unit: -1, Rejected: err.Error()})
		return nil, err
	}
	return c.PlayMessage(ctx, msg)
}

// ErrInvalidSinks indicates the sink set is incomplete or miswired.
var ErrInvalidSinks = errors.New("invalid sinks")

// PlayMessage plays an encoded message. It blocks until the message
// completes or ctx is done, every channel is idle when it returns.
// Device write failures are collected in the report and do not abort
// playback. The returned error is non-nil on cancellation, or wraps
// ErrInvalidSinks when no device was touched.
func (c *Controller) PlayMessage(ctx context.Context, msg *morse.EncodedMessage) (*Report, error) {
	c.playLock.Lock()
	defer c.playLock.Unlock()

	if err := c.Sinks.Validate(); err != nil {
		glog.Errorf("play %q refused: %v", msg.Text(), err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSinks, err)
	}

	p := &player{
		ctl:    c,
		ctx:    ctx,
		msg:    msg,
		timing: c.Timing,
		report: &Report{
			Text:     msg.Text(),
			Units:    msg.Len(),
			Elements: msg.ElementCount(),
			Started:  c.Clock.Time(),
		},
	}
	glog.Infof("play %q: %s", p.report.Text, msg)
	err := p.run()
	p.finish(err)
	if err != nil {
		glog.Warningf("play %q aborted: %v", p.report.Text, err)
		return p.report, err
	}
	if failures := p.report.Err(); failures != nil {
		glog.Warningf("play %q completed with %d device failures", p.report.Text, len(p.report.Errors.Errors))
	}
	return p.report, nil
}

func (c *Controller) setStatus(s Status) {
	c.lock.Lock()
	c.status = s
	c.lock.Unlock()
	c.notifyState(s)
}

func (c *Controller) notifyState(s Status) {
	c.lock.RLock()
	observers := c.observers
	c.lock.RUnlock()
	for _, o := range observers {
		o.OnState(s)
	}
}

func (c *Controller) notifyChannel(ch output.Channel, s output.State) {
	c.lock.RLock()
	observers := c.observers
	c.lock.RUnlock()
	for _, o := range observers {
		o.OnChannel(ch, s)
	}
}

// player holds the per-message playback state.
type player struct {
	ctl    *Controller
	ctx    context.Context
	msg    *morse.EncodedMessage
	timing Timing
	report *Report
}

func (p *player) enter(state State, unit, symbol int) {
	glog.V(2).Infof("state %s unit %d symbol %d", state, unit, symbol)
	p.ctl.setStatus(Status{
		State:  state,
		Text:   p.report.Text,
		Units:  p.report.Units,
		Unit:   unit,
		Symbol: symbol,
		Errors: len(p.report.Errors.Errors),
	})
}

func (p *player) set(ch output.Channel, state output.State) bool {
	if err := p.ctl.Sinks.Get(ch).Set(state); err != nil {
		glog.Warningf("%v", err)
		p.report.Errors.Add(err)
		return false
	}
	p.ctl.notifyChannel(ch, state)
	return true
}

// release returns a channel to idle, falling back to Clear so the next
// activation never overlaps a stuck one.
func (p *player) release(ch output.Channel) {
	if !p.set(ch, output.Idle) {
		p.clear(ch)
	}
}

func (p *player) clear(ch output.Channel) {
	p.ctl.Sinks.Get(ch).Clear()
	p.ctl.notifyChannel(ch, output.Idle)
}

func (p *player) run() error {
	p.enter(StateAnnouncingStart, -1, -1)
	p.set(output.ChannelDisplay, output.State{Text: StartBanner})
	if err := p.ctl.Clock.Sleep(p.ctx, p.timing.StartDwell); err != nil {
		return err
	}

	units := p.msg.Units
	last := len(units) - 1
	for i, unit := range units {
		p.enter(StateEmittingUnit, i, -1)
		if unit.IsSeparator() {
			p.set(output.ChannelDisplay, output.Idle)
			if i == last {
				continue
			}
			p.enter(StateInterUnitGap, i, -1)
			if err := p.ctl.Clock.Sleep(p.ctx, p.timing.WordGap); err != nil {
				return err
			}
			continue
		}

		line := string(unit.Char)
		if i != last {
			line += UnitSeparator
		}
		p.set(output.ChannelDisplay, output.State{Text: line})
		if err := p.ctl.Clock.Sleep(p.ctx, p.timing.UnitHold); err != nil {
			return err
		}

		elements := unit.Symbol.Elements()
		for j, e := range elements {
			p.enter(StateEmittingSymbol, i, j)
			line += string(rune(e)) + " "
			level := LevelOf(e)
			p.set(output.ChannelDisplay, output.State{Text: line})
			p.set(output.ChannelLight, output.State{Level: level})
			p.set(output.ChannelTone, output.State{Level: level})
			err := p.ctl.Clock.Sleep(p.ctx, p.timing.Hold(e))
			p.release(output.ChannelLight)
			p.release(output.ChannelTone)
			if err != nil {
				return err
			}
			if j == len(elements)-1 {
				break
			}
			p.enter(StateInterSymbolGap, i, j)
			if err := p.ctl.Clock.Sleep(p.ctx, p.timing.SymbolGap); err != nil {
				return err
			}
		}

		if i != last {
			p.enter(StateInterUnitGap, i, -1)
			p.set(output.ChannelDisplay, output.Idle)
			if err := p.ctl.Clock.Sleep(p.ctx, p.timing.LetterGap); err != nil {
				return err
			}
		}
	}

	p.enter(StateAnnouncingDone, -1, -1)
	p.set(output.ChannelDisplay, output.State{Text: DoneBanner})
	p.set(output.ChannelLight, output.State{Level: output.LevelDone})
	return p.ctl.Clock.Sleep(p.ctx, p.timing.DoneDwell)
}

// finish leaves every channel idle. On completion the display keeps
// the done banner.
func (p *player) finish(err error) {
	if err != nil {
		p.report.Canceled = true
		p.ctl.Sinks.ClearAll()
		for _, ch := range output.Channels {
			p.ctl.notifyChannel(ch, output.Idle)
		}
	} else {
		p.clear(output.ChannelLight)
		p.clear(output.ChannelTone)
	}
	p.report.Finished = p.ctl.Clock.Time()
	p.enter(StateIdle, -1, -1)
}

// LevelOf maps an element to its channel level.
func LevelOf(e morse.Element) output.Level {
	switch e {
	case morse.Dot:
		return output.LevelDot
	case morse.Dash:
		return output.LevelDash
	}
	return output.LevelIdle
}
