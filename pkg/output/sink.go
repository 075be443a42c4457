package output

import (
	"sync"

	"github.com/golang/glog"
)

// ClearAttempts is the number of tries Clear makes before giving up.
const ClearAttempts = 2

type sinkBase struct {
	channel Channel
	lock    sync.RWMutex
	state   State
}

func (s *sinkBase) Channel() Channel {
	return s.channel
}

func (s *sinkBase) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

func (s *sinkBase) write(state State, fn func() error) error {
	if err := fn(); err != nil {
		return &WriteError{Channel: s.channel, Err: err}
	}
	s.lock.Lock()
	s.state = state
	s.lock.Unlock()
	return nil
}

func (s *sinkBase) clear(fn func() error) {
	var err error
	for i := 0; i < ClearAttempts; i++ {
		if err = fn(); err == nil {
			break
		}
	}
	if err != nil {
		glog.Warningf("%s clear failed: %v", s.channel, err)
	}
	// the idle value is recorded regardless, the next write resyncs the device.
	s.lock.Lock()
	s.state = Idle
	s.lock.Unlock()
}

// DisplaySink drives a TextDisplay.
type DisplaySink struct {
	sinkBase
	dev TextDisplay
}

// NewDisplaySink creates a DisplaySink.
func NewDisplaySink(dev TextDisplay) *DisplaySink {
	return &DisplaySink{sinkBase: sinkBase{channel: ChannelDisplay}, dev: dev}
}

// Set implements Sink. The display is cleared then the text printed,
// text longer than the display width is truncated keeping the head.
func (s *DisplaySink) Set(state State) error {
	text := Truncate(state.Text, s.dev.Width())
	state.Text = text
	return s.write(state, func() error {
		if err := s.dev.Clear(); err != nil {
			return err
		}
		if text == "" {
			return nil
		}
		return s.dev.Print(text)
	})
}

// Clear implements Sink.
func (s *DisplaySink) Clear() {
	s.clear(s.dev.Clear)
}

// Truncate cuts text to at most width runes, width <= 0 means no limit.
func Truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	n := 0
	for i := range text {
		if n == width {
			return text[:i]
		}
		n++
	}
	return text
}

// LightSink drives an Indicator.
type LightSink struct {
	sinkBase
	dev     Indicator
	palette Palette
}

// NewLightSink creates a LightSink, a nil palette uses DefaultPalette.
func NewLightSink(dev Indicator, palette Palette) *LightSink {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &LightSink{sinkBase: sinkBase{channel: ChannelLight}, dev: dev, palette: palette}
}

// Set implements Sink.
func (s *LightSink) Set(state State) error {
	color := s.palette[state.Level]
	return s.write(State{Level: state.Level}, func() error {
		return s.dev.SetColor(color)
	})
}

// Clear implements Sink.
func (s *LightSink) Clear() {
	s.clear(func() error { return s.dev.SetColor(Off) })
}

// ToneSink drives a ToneGenerator.
type ToneSink struct {
	sinkBase
	dev     ToneGenerator
	profile ToneProfile
}

// NewToneSink creates a ToneSink.
func NewToneSink(dev ToneGenerator, profile ToneProfile) *ToneSink {
	return &ToneSink{sinkBase: sinkBase{channel: ChannelTone}, dev: dev, profile: profile}
}

// Set implements Sink. Levels without a tone are written as silence
// and recorded as idle.
func (s *ToneSink) Set(state State) error {
	tone := s.profile.ToneFor(state.Level)
	level := state.Level
	if tone.IsSilent() {
		level = LevelIdle
	}
	return s.write(State{Level: level}, func() error {
		return s.dev.SetTone(tone)
	})
}

// Clear implements Sink.
func (s *ToneSink) Clear() {
	s.clear(func() error { return s.dev.SetTone(Silence) })
}

// NewSinks builds the three sinks over their collaborators.
func NewSinks(display TextDisplay, light Indicator, tone ToneGenerator) *Sinks {
	return &Sinks{
		Display: NewDisplaySink(display),
		Light:   NewLightSink(light, nil),
		Tone:    NewToneSink(tone, DefaultToneProfile()),
	}
}
