package comm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		payload []byte
		text    string
		err     bool
	}{
		{"ascii", []byte("SOS"), "SOS", false},
		{"empty", []byte{}, "", false},
		{"utf8", []byte("héllo"), "héllo", false},
		{"invalid", []byte{0xff, 0xfe, 'A'}, "", true},
		{"truncated rune", []byte{'A', 0xc3}, "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			text, err := Decode(Datagram{Payload: tc.payload, Sender: "10.0.0.2:5000"})
			if tc.err {
				require.Error(t, err)
				require.True(t, errors.Is(err, ErrMalformedInput))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.text, text)
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("drop")
	require.NoError(t, err)
	require.Equal(t, PolicyDrop, p)
	p, err = ParsePolicy("QUEUE")
	require.NoError(t, err)
	require.Equal(t, PolicyQueue, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyQueue, p)
	_, err = ParsePolicy("discard")
	require.Error(t, err)
	require.Equal(t, "drop", PolicyDrop.String())
}

func TestQueueDropPolicy(t *testing.T) {
	q := NewQueue(1, PolicyDrop)
	ctx := context.Background()
	require.NoError(t, q.Put(ctx, Message{Text: "A"}))
	err := q.Put(ctx, Message{Text: "B"})
	require.True(t, errors.Is(err, ErrQueueFull))
	require.Equal(t, uint64(1), q.Dropped())
	require.Equal(t, 1, q.Len())

	msg, err := q.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", msg.Text)
}

func TestQueueDropUnbuffered(t *testing.T) {
	q := NewQueue(0, PolicyDrop)
	require.Zero(t, q.Cap())
	ctx := context.Background()
	err := q.Put(ctx, Message{Text: "A"})
	require.True(t, errors.Is(err, ErrQueueFull))
	require.Equal(t, uint64(1), q.Dropped())

	got := make(chan Message, 1)
	go func() {
		msg, _ := q.Get(ctx)
		got <- msg
	}()
	deadline := time.Now().Add(time.Second)
	for q.Put(ctx, Message{Text: "B"}) != nil {
		require.True(t, time.Now().Before(deadline), "no waiting reader")
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, "B", (<-got).Text)
}

func TestQueueDropKeepsDepth(t *testing.T) {
	q := NewQueue(8, PolicyDrop)
	require.Equal(t, 8, q.Cap())
	ctx := context.Background()
	for i := 0; i < 8; i++ {
		require.NoError(t, q.Put(ctx, Message{Text: "A"}))
	}
	require.True(t, errors.Is(q.Put(ctx, Message{Text: "B"}), ErrQueueFull))
	require.Equal(t, uint64(1), q.Dropped())
}

func TestQueueBlockingPolicy(t *testing.T) {
	q := NewQueue(1, PolicyQueue)
	require.NoError(t, q.Put(context.Background(), Message{Text: "A"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Put(ctx, Message{Text: "B"})
	require.Equal(t, context.DeadlineExceeded, err)
	require.Zero(t, q.Dropped())

	done := make(chan error, 1)
	go func() {
		done <- q.Put(context.Background(), Message{Text: "C"})
	}()
	msg, err := q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "A", msg.Text)
	require.NoError(t, <-done)
	msg = <-q.C()
	require.Equal(t, "C", msg.Text)
}

func TestQueueGetCanceled(t *testing.T) {
	q := NewQueue(0, PolicyQueue)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := q.Get(ctx)
	require.Equal(t, context.Canceled, err)
}

func TestPump(t *testing.T) {
	reader := NewChanReader(4)
	q := NewQueue(4, PolicyQueue)
	pump := NewPump("udp", reader, q)
	require.Equal(t, "pump:udp", pump.Name())

	require.True(t, reader.Push(Datagram{Payload: []byte("SOS"), Sender: "a"}))
	require.True(t, reader.Push(Datagram{Payload: []byte{0xff}, Sender: "b"}))
	require.True(t, reader.Push(Datagram{Payload: []byte("HI 5"), Sender: "c"}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pump.Run(ctx) }()

	msg, err := q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "SOS", msg.Text)
	require.Equal(t, "udp", msg.Source)
	require.False(t, msg.Received.IsZero())
	msg, err = q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "HI 5", msg.Text)
	require.Equal(t, "c", msg.Sender)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, uint64(3), pump.Received())
	require.Equal(t, uint64(1), pump.Malformed())
	require.False(t, reader.Push(Datagram{Payload: []byte("late")}))
}

func TestPumpDropsWhenBusy(t *testing.T) {
	reader := NewChanReader(4)
	q := NewQueue(1, PolicyDrop)
	pump := NewPump("udp", reader, q)
	for _, text := range []string{"A", "B", "C"} {
		require.True(t, reader.Push(Datagram{Payload: []byte(text)}))
	}
	reader.Close()
	// a closed reader ends the pump once drained
	require.NoError(t, pump.pump(context.Background()))
	require.Equal(t, 1, q.Len())
	require.Equal(t, uint64(2), q.Dropped())
}
