package playback

import (
	"sync"
	"time"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/output"
)

// EventStream is an Observer translating notifications into wire
// messages handed to Emit.
type EventStream struct {
	Emit  func(fx.Message)
	Clock Clock
	// Dropped reports messages discarded upstream, optional.
	Dropped func() uint64
	// AllStates emits every transition instead of only the
	// start, done, idle and rejection milestones.
	AllStates bool

	lock    sync.Mutex
	seq     uint32
	started time.Time
}

// IsMilestone tells whether a status is always emitted.
func IsMilestone(s Status) bool {
	switch s.State {
	case StateAnnouncingStart, StateAnnouncingDone, StateIdle:
		return true
	}
	return s.Rejected != ""
}

// StatusMessage converts a status to its wire form.
func StatusMessage(s Status) *msgs.PlaybackStatus {
	return &msgs.PlaybackStatus{
		State:    s.State.String(),
		Text:     s.Text,
		Units:    uint32(s.Units),
		Unit:     int32(s.Unit),
		Errors:   uint32(s.Errors),
		Rejected: s.Rejected,
	}
}

func (e *EventStream) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Time()
}

// OnState implements Observer.
func (e *EventStream) OnState(s Status) {
	if s.State == StateAnnouncingStart {
		e.lock.Lock()
		e.seq = 0
		e.started = e.now()
		e.lock.Unlock()
	}
	if !e.AllStates && !IsMilestone(s) {
		return
	}
	msg := StatusMessage(s)
	if e.Dropped != nil {
		msg.Dropped = e.Dropped()
	}
	e.Emit(msg)
}

// OnChannel implements Observer.
func (e *EventStream) OnChannel(ch output.Channel, s output.State) {
	e.lock.Lock()
	e.seq++
	msg := &msgs.ChannelEvent{
		Channel: uint32(ch),
		Level:   uint32(s.Level),
		Text:    s.Text,
		Seq:     e.seq,
	}
	if !e.started.IsZero() {
		msg.AtMs = e.now().Sub(e.started).Milliseconds()
	}
	e.lock.Unlock()
	e.Emit(msg)
}
