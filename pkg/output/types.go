package output

import (
	"errors"
	"fmt"
)

// Channel identifies one output modality.
type Channel int

// Channels
const (
	ChannelDisplay Channel = iota
	ChannelLight
	ChannelTone
)

// Channels lists all channels in fan-out order.
var Channels = []Channel{ChannelDisplay, ChannelLight, ChannelTone}

// String implements fmt.Stringer.
func (c Channel) String() string {
	switch c {
	case ChannelDisplay:
		return "display"
	case ChannelLight:
		return "light"
	case ChannelTone:
		return "tone"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Level is the logical activation level of a channel.
type Level int

// Levels
const (
	LevelIdle Level = iota
	LevelDot
	LevelDash
	// LevelDone is the completion indication after a message.
	LevelDone
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case LevelIdle:
		return "idle"
	case LevelDot:
		return "dot"
	case LevelDash:
		return "dash"
	case LevelDone:
		return "done"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// State is the value written to a sink.
// Display sinks use Text, light and tone sinks use Level.
type State struct {
	Level Level
	Text  string
}

// IsIdle indicates the state is the idle value.
func (s State) IsIdle() bool {
	return s.Level == LevelIdle && s.Text == ""
}

// Idle is the idle state of every channel.
var Idle = State{}

// Sink is the capability the playback controller drives.
type Sink interface {
	// Channel tells which modality the sink drives.
	Channel() Channel
	// Set writes a new state and may fail with a device error.
	Set(State) error
	// Clear returns the channel to idle. Failures are retried and
	// then swallowed, Clear never fails observably.
	Clear()
	// State returns the last state successfully written.
	State() State
}

// ErrDeviceWrite is matched by all WriteError values.
var ErrDeviceWrite = errors.New("device write failure")

// WriteError reports a failed device write on a channel.
type WriteError struct {
	Channel Channel
	Err     error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("%s write failed: %v", e.Channel, e.Err)
}

// Unwrap returns the device error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches ErrDeviceWrite.
func (e *WriteError) Is(target error) bool {
	return target == ErrDeviceWrite
}
