package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/morse.go/pkg/framework"
)

func TestTypeIDs(t *testing.T) {
	testCases := []struct {
		msg   SerializableMessage
		event bool
	}{
		{&TextCommand{}, false},
		{&DeviceState{}, false},
		{&ChannelEvent{}, true},
		{&PlaybackStatus{}, true},
	}
	for _, tc := range testCases {
		typed, err := TypedFrom(tc.msg)
		require.NoError(t, err)
		require.Equal(t, tc.event, typed.IsEvent())
		require.Equal(t, !tc.event, typed.IsCommand())
		require.Equal(t, TypeIDGroupMorse, typed.TypeID&TypeIDMaskGroup)
		registered, ok := MessageTypes[tc.msg.TypeID()]
		require.True(t, ok)
		require.IsType(t, tc.msg, registered)
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	status := &PlaybackStatus{State: "announcing-done", Text: "SOS", Units: 3, Unit: -1, Dropped: 2}
	data, err := Marshal(status)
	require.NoError(t, err)
	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, status, decoded)

	cmd := &TextCommand{Text: "HI 5", Sender: "morsectl"}
	data, err = Marshal(cmd)
	require.NoError(t, err)
	decoded, err = Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, cmd, decoded)
}

type notSerializable struct{}

func (m *notSerializable) NewMessage() fx.Message { return &notSerializable{} }

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&notSerializable{})
	require.Equal(t, ErrNotSerializable, err)

	typed := &Typed{TypeID: TypeIDKindEvent | 0x7777}
	data, err := typed.Encode()
	require.NoError(t, err)
	_, err = Unmarshal(data)
	require.Error(t, err)
	_, ok := err.(*ErrUnknownType)
	require.True(t, ok)

	_, err = DecodeTyped([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
