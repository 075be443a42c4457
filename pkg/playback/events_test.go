package playback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/output"
)

func TestEventStream(t *testing.T) {
	ctl, _, clock, _ := newTestController()
	var emitted []fx.Message
	stream := &EventStream{
		Emit:    func(m fx.Message) { emitted = append(emitted, m) },
		Clock:   clock,
		Dropped: func() uint64 { return 3 },
	}
	ctl.AddObserver(stream)
	_, err := ctl.Play(context.Background(), "E")
	require.NoError(t, err)

	var states []string
	var events []*msgs.ChannelEvent
	for _, m := range emitted {
		switch v := m.(type) {
		case *msgs.PlaybackStatus:
			states = append(states, v.State)
			require.Equal(t, uint64(3), v.Dropped)
			require.Equal(t, "E", v.Text)
		case *msgs.ChannelEvent:
			events = append(events, v)
		}
	}
	require.Equal(t, []string{"announcing-start", "announcing-done", "idle"}, states)
	require.NotEmpty(t, events)
	for i, ev := range events {
		require.Equal(t, uint32(i+1), ev.Seq)
	}
	// done banner, completion color, then light and tone cleared
	require.Equal(t, DoneBanner, events[len(events)-4].Text)

	var dot *msgs.ChannelEvent
	for _, ev := range events {
		if ev.Channel == uint32(output.ChannelLight) && ev.Level == uint32(output.LevelDot) {
			dot = ev
			break
		}
	}
	require.NotNil(t, dot)
	require.Equal(t, (ctl.Timing.StartDwell + ctl.Timing.UnitHold).Milliseconds(), dot.AtMs)
}

func TestEventStreamAllStates(t *testing.T) {
	ctl, _, _, rec := newTestController()
	count := 0
	ctl.AddObserver(&EventStream{
		Emit:      func(m fx.Message) { count++ },
		AllStates: true,
	})
	_, err := ctl.Play(context.Background(), "T")
	require.NoError(t, err)
	require.Equal(t, len(rec.states())+len(rec.events), count)
}

func TestStatusMessage(t *testing.T) {
	msg := StatusMessage(Status{State: StateIdle, Text: "HELLO", Unit: -1, Rejected: "capacity exceeded"})
	require.Equal(t, "idle", msg.State)
	require.Equal(t, int32(-1), msg.Unit)
	require.Equal(t, "capacity exceeded", msg.Rejected)
	require.True(t, IsMilestone(Status{State: StateEmittingUnit, Rejected: "x"}))
	require.False(t, IsMilestone(Status{State: StateInterSymbolGap}))
}
