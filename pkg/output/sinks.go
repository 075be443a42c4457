package output

import "fmt"

// Sinks is the set of three sinks owned by a playback controller.
type Sinks struct {
	Display Sink
	Light   Sink
	Tone    Sink
}

// Get returns the sink of a channel.
func (s *Sinks) Get(ch Channel) Sink {
	switch ch {
	case ChannelDisplay:
		return s.Display
	case ChannelLight:
		return s.Light
	case ChannelTone:
		return s.Tone
	}
	return nil
}

// Validate checks all sinks are present and bound to the right channel.
func (s *Sinks) Validate() error {
	if s == nil {
		return fmt.Errorf("no sinks")
	}
	for _, ch := range Channels {
		sink := s.Get(ch)
		if sink == nil {
			return fmt.Errorf("missing %s sink", ch)
		}
		if sink.Channel() != ch {
			return fmt.Errorf("%s sink reports channel %s", ch, sink.Channel())
		}
	}
	return nil
}

// ClearAll clears every channel.
func (s *Sinks) ClearAll() {
	for _, ch := range Channels {
		s.Get(ch).Clear()
	}
}

// AllIdle indicates every channel holds its idle value.
// The display may still show a terminal banner.
func (s *Sinks) AllIdle() bool {
	return s.Light.State().Level == LevelIdle &&
		s.Tone.State().Level == LevelIdle &&
		s.Display.State().Level == LevelIdle
}
