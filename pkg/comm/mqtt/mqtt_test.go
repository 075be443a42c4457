package mqtt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/morse.go/pkg/comm"
	fx "github.com/robotalks/morse.go/pkg/framework"
	"github.com/robotalks/morse.go/pkg/msgs"
	"github.com/robotalks/morse.go/pkg/output"
	"github.com/robotalks/morse.go/pkg/playback"
)

func TestMatchTopic(t *testing.T) {
	testCases := []struct {
		topic   string
		pattern string
		match   bool
	}{
		{"morse/a/meta", "+/+/meta", true},
		{"morse/a/text", "+/+/meta", false},
		{"morse/a", "+/+/meta", false},
		{"morse/a/meta/x", "+/+/meta", false},
		{"morse/a/dev/light", "morse/a/dev/+", true},
		{"morse/a/dev/light", "#", true},
		{"morse/a/dev/light", "morse/#", true},
		{"morse/a/events", "morse/a/events", true},
	}
	for _, tc := range testCases {
		t.Run(tc.topic+"~"+tc.pattern, func(t *testing.T) {
			require.Equal(t, tc.match, MatchTopic(tc.topic, tc.pattern))
		})
	}
}

func TestClientOptionsFromURL(t *testing.T) {
	opts, prefix, err := ClientOptionsFromURL("mqtt://user:pw@broker:1883/lab?client-id=op1")
	require.NoError(t, err)
	require.Equal(t, "lab/", prefix)
	require.Equal(t, "op1", opts.ClientID)
	require.Equal(t, "user", opts.Username)
	require.Equal(t, "tcp://broker:1883", opts.Servers[0].String())

	_, prefix, err = ClientOptionsFromURL("mqtt://broker:1883")
	require.NoError(t, err)
	require.Empty(t, prefix)
}

func TestSubscriptionDispatch(t *testing.T) {
	b := newFakeBroker()
	c := b.attach("lab/")
	require.NoError(t, c.ConnectAndWait())

	var lock sync.Mutex
	var got []string
	record := func(name string) Handler {
		return func(topic string, payload []byte) {
			lock.Lock()
			got = append(got, name+":"+topic+"="+string(payload))
			lock.Unlock()
		}
	}
	exact := c.Sub("morse/a/text", record("exact"))
	wild := c.Sub("morse/+/text", record("wild"))
	c.Pub("morse/a/text", []byte("SOS"))
	require.ElementsMatch(t, []string{"exact:morse/a/text=SOS", "wild:morse/a/text=SOS"}, got)

	require.NoError(t, exact.Close())
	require.NoError(t, wild.Close())
	got = nil
	c.Pub("morse/a/text", []byte("again"))
	require.Empty(t, got)
}

func TestRegistrarLifecycle(t *testing.T) {
	b := newFakeBroker()
	ref := comm.NewStationRef("s1")
	reg, err := NewRegistrar(b.attach(""), comm.StationInfo{
		Ref:  ref,
		Meta: comm.StationMeta{Description: "bench station", Listen: ":1234"},
	})
	require.NoError(t, err)
	require.Equal(t, "mqtt-registrar", reg.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx) }()

	op := b.attach("")
	require.NoError(t, op.ConnectAndWait())
	conn := &Connector{Client: op, DiscoverTimeout: 20 * time.Millisecond}
	var stations []comm.StationInfo
	eventually(t, func() bool {
		stations, err = conn.Discover(context.Background())
		return err == nil && len(stations) == 1
	})
	require.Equal(t, ref, stations[0].Ref)
	require.Equal(t, "bench station", stations[0].Meta.Description)
	require.Equal(t, ":1234", stations[0].Meta.Listen)

	cancel()
	require.NoError(t, <-done)
	stations, err = conn.Discover(context.Background())
	require.NoError(t, err)
	require.Empty(t, stations)
}

func TestRegistrarRetriesConnect(t *testing.T) {
	b := newFakeBroker()
	b.connectFailures = 2
	ref := comm.NewStationRef("s1")
	reg, err := NewRegistrar(b.attach(""), comm.StationInfo{Ref: ref})
	require.NoError(t, err)
	reg.RetryInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx) }()

	eventually(t, func() bool { return len(b.pubs(Topic(ref, TopicMeta))) == 1 })
	require.Equal(t, 3, b.connectCount())

	cancel()
	require.NoError(t, <-done)
	require.Len(t, b.pubs(Topic(ref, TopicMeta)), 2)
}

func TestRegistrarGivesUpOnCancel(t *testing.T) {
	b := newFakeBroker()
	b.connectFailures = 1 << 20
	reg, err := NewRegistrar(b.attach(""), comm.StationInfo{Ref: comm.NewStationRef("s1")})
	require.NoError(t, err)
	reg.RetryInterval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- reg.Run(ctx) }()
	eventually(t, func() bool { return b.connectCount() > 2 })
	cancel()
	require.NoError(t, <-done)
	require.Empty(t, b.pubs(Topic(comm.NewStationRef("s1"), TopicMeta)))
}

func TestTextSource(t *testing.T) {
	b := newFakeBroker()
	ref := comm.NewStationRef("s1")
	station := b.attach("")
	require.NoError(t, station.ConnectAndWait())
	src := NewTextSource(station, ref)
	q := comm.NewQueue(4, comm.PolicyQueue)
	pump := comm.NewPump("mqtt", src, q)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pump.Run(ctx) }()

	op := b.attach("")
	require.NoError(t, op.ConnectAndWait())
	conn := &Connector{Client: op, Sender: "operator"}
	require.NoError(t, conn.SendText(ref, "HI 5"))
	msg, err := q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "HI 5", msg.Text)
	require.Equal(t, "operator", msg.Sender)
	require.Equal(t, "mqtt", msg.Source)

	op.Pub(Topic(ref, TopicText), []byte("SOS"))
	msg, err = q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SOS", msg.Text)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

func TestEventPublisherAndWatch(t *testing.T) {
	b := newFakeBroker()
	ref := comm.NewStationRef("s1")
	station := b.attach("")
	require.NoError(t, station.ConnectAndWait())

	op := b.attach("")
	require.NoError(t, op.ConnectAndWait())
	conn := &Connector{Client: op}
	var lock sync.Mutex
	var watched []fx.Message
	ctx, cancel := context.WithCancel(context.Background())
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- conn.Watch(ctx, ref, func(m fx.Message) {
			lock.Lock()
			watched = append(watched, m)
			lock.Unlock()
		})
	}()
	eventually(t, func() bool {
		b.lock.Lock()
		defer b.lock.Unlock()
		return len(b.clients[1].filters) == 2
	})

	mem := output.NewMemory(16)
	ctl := playback.New(mem.Sinks())
	ctl.Clock = playback.NewVirtualClock(time.Unix(0, 0))
	ctl.AddObserver(NewEventPublisher(station, ref, func() uint64 { return 0 }))
	_, err := ctl.Play(context.Background(), "E")
	require.NoError(t, err)

	require.Len(t, b.pubs(Topic(ref, TopicStatus)), 3)
	require.NotEmpty(t, b.pubs(Topic(ref, TopicEvents)))

	cancel()
	require.Equal(t, context.Canceled, <-watchDone)
	lock.Lock()
	defer lock.Unlock()
	var statuses []string
	for _, m := range watched {
		if s, ok := m.(*msgs.PlaybackStatus); ok {
			statuses = append(statuses, s.State)
		}
	}
	require.Equal(t, []string{"announcing-start", "announcing-done", "idle"}, statuses)
}

func TestRemoteDevices(t *testing.T) {
	b := newFakeBroker()
	ref := comm.NewStationRef("s1")
	station := b.attach("")
	require.NoError(t, station.ConnectAndWait())
	node := b.attach("")
	require.NoError(t, node.ConnectAndWait())

	mem := output.NewMemory(16)
	dn := &DeviceNode{Client: node, Ref: ref, Display: mem, Light: mem, Tone: mem}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dn.Run(ctx) }()
	eventually(t, func() bool {
		b.lock.Lock()
		defer b.lock.Unlock()
		return len(b.clients[1].filters) == 1
	})

	remote := NewRemoteDevices(station, ref, 16)
	sinks := remote.Sinks()
	require.NoError(t, sinks.Display.Set(output.State{Text: "S = "}))
	require.NoError(t, sinks.Light.Set(output.State{Level: output.LevelDash}))
	require.NoError(t, sinks.Tone.Set(output.State{Level: output.LevelDot}))
	text, color, tone := mem.Snapshot()
	require.Equal(t, "S = ", text)
	require.Equal(t, output.Color{Red: output.IndicatorTop, Green: output.IndicatorTop}, color)
	require.Equal(t, output.ToneTop/4, tone.Duty)

	b.lock.Lock()
	b.pubErr = errors.New("broker gone")
	b.lock.Unlock()
	err := sinks.Light.Set(output.State{Level: output.LevelDot})
	require.True(t, errors.Is(err, output.ErrDeviceWrite))

	cancel()
	require.Equal(t, context.Canceled, <-done)
}
