package udp

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/morse.go/pkg/comm"
)

func TestReadDatagram(t *testing.T) {
	r, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, Send(r.Addr().String(), "SOS"))
	d, err := r.ReadDatagram()
	require.NoError(t, err)
	require.Equal(t, "SOS", string(d.Payload))
	require.True(t, strings.HasPrefix(d.Sender, "127.0.0.1:"))
	require.False(t, d.Received.IsZero())
}

func TestReadAfterClose(t *testing.T) {
	r, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, r.Close())
	_, err = r.ReadDatagram()
	require.Equal(t, io.EOF, err)
}

func TestSendTooLong(t *testing.T) {
	require.Error(t, Send("127.0.0.1:1", strings.Repeat("E", MaxDatagramSize+1)))
}

func TestPumpOverUDP(t *testing.T) {
	r, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	q := comm.NewQueue(2, comm.PolicyQueue)
	pump := comm.NewPump("udp", r, q)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- pump.Run(ctx) }()

	require.NoError(t, Send(r.Addr().String(), "HI 5"))
	msg, err := q.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "HI 5", msg.Text)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}
