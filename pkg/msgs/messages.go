package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/morse.go/pkg/framework"
)

// Morse message group.
const (
	TypeIDGroupMorse uint32 = 0x00010000

	TextCommandTypeID    = TypeIDKindCommand | TypeIDGroupMorse | 0x0001
	DeviceStateTypeID    = TypeIDKindCommand | TypeIDGroupMorse | 0x0002
	ChannelEventTypeID   = TypeIDKindEvent | TypeIDGroupMorse | 0x0001
	PlaybackStatusTypeID = TypeIDKindEvent | TypeIDGroupMorse | 0x0002
)

// TextCommand submits text for playback.
type TextCommand struct {
	Text   string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
	Sender string `protobuf:"bytes,2,opt,name=sender,proto3" json:"sender,omitempty"`
}

// NewMessage implements Message.
func (m *TextCommand) NewMessage() fx.Message { return &TextCommand{} }

// TypeID implements SerializableMessage.
func (m *TextCommand) TypeID() uint32 { return TextCommandTypeID }

// Serializable implements SerializableMessage.
func (m *TextCommand) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *TextCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TextCommand) Reset() { *m = TextCommand{} }

// String implements proto.Message.
func (m *TextCommand) String() string { return proto.CompactTextString(m) }

// DeviceState drives a remote output device.
// Only the fields of the device channel are meaningful.
type DeviceState struct {
	Channel uint32 `protobuf:"varint,1,opt,name=channel,proto3" json:"channel"`
	Level   uint32 `protobuf:"varint,2,opt,name=level,proto3" json:"level"`
	Text    string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
	Red     uint32 `protobuf:"varint,4,opt,name=red,proto3" json:"red,omitempty"`
	Green   uint32 `protobuf:"varint,5,opt,name=green,proto3" json:"green,omitempty"`
	Blue    uint32 `protobuf:"varint,6,opt,name=blue,proto3" json:"blue,omitempty"`
	FreqHz  uint32 `protobuf:"varint,7,opt,name=freq_hz,proto3" json:"freq_hz,omitempty"`
	Duty    uint32 `protobuf:"varint,8,opt,name=duty,proto3" json:"duty,omitempty"`
	Clear   bool   `protobuf:"varint,9,opt,name=clear,proto3" json:"clear,omitempty"`
}

// NewMessage implements Message.
func (m *DeviceState) NewMessage() fx.Message { return &DeviceState{} }

// TypeID implements SerializableMessage.
func (m *DeviceState) TypeID() uint32 { return DeviceStateTypeID }

// Serializable implements SerializableMessage.
func (m *DeviceState) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DeviceState) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceState) Reset() { *m = DeviceState{} }

// String implements proto.Message.
func (m *DeviceState) String() string { return proto.CompactTextString(m) }

// ChannelEvent reports a channel activation or deactivation.
type ChannelEvent struct {
	Channel uint32 `protobuf:"varint,1,opt,name=channel,proto3" json:"channel"`
	Level   uint32 `protobuf:"varint,2,opt,name=level,proto3" json:"level"`
	Text    string `protobuf:"bytes,3,opt,name=text,proto3" json:"text,omitempty"`
	Seq     uint32 `protobuf:"varint,4,opt,name=seq,proto3" json:"seq"`
	// AtMs is milliseconds since the message started.
	AtMs int64 `protobuf:"varint,5,opt,name=at_ms,proto3" json:"at_ms"`
}

// NewMessage implements Message.
func (m *ChannelEvent) NewMessage() fx.Message { return &ChannelEvent{} }

// TypeID implements SerializableMessage.
func (m *ChannelEvent) TypeID() uint32 { return ChannelEventTypeID }

// Serializable implements SerializableMessage.
func (m *ChannelEvent) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *ChannelEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *ChannelEvent) Reset() { *m = ChannelEvent{} }

// String implements proto.Message.
func (m *ChannelEvent) String() string { return proto.CompactTextString(m) }

// PlaybackStatus reports a controller state transition.
type PlaybackStatus struct {
	State    string `protobuf:"bytes,1,opt,name=state,proto3" json:"state"`
	Text     string `protobuf:"bytes,2,opt,name=text,proto3" json:"text,omitempty"`
	Units    uint32 `protobuf:"varint,3,opt,name=units,proto3" json:"units,omitempty"`
	Unit     int32  `protobuf:"varint,4,opt,name=unit,proto3" json:"unit"`
	Errors   uint32 `protobuf:"varint,5,opt,name=errors,proto3" json:"errors,omitempty"`
	Dropped  uint64 `protobuf:"varint,6,opt,name=dropped,proto3" json:"dropped,omitempty"`
	Rejected string `protobuf:"bytes,7,opt,name=rejected,proto3" json:"rejected,omitempty"`
}

// NewMessage implements Message.
func (m *PlaybackStatus) NewMessage() fx.Message { return &PlaybackStatus{} }

// TypeID implements SerializableMessage.
func (m *PlaybackStatus) TypeID() uint32 { return PlaybackStatusTypeID }

// Serializable implements SerializableMessage.
func (m *PlaybackStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *PlaybackStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *PlaybackStatus) Reset() { *m = PlaybackStatus{} }

// String implements proto.Message.
func (m *PlaybackStatus) String() string { return proto.CompactTextString(m) }
