package output

import (
	"fmt"
	"sync"
)

// Write is one recorded device operation.
type Write struct {
	Channel Channel
	Op      string
	Text    string
	Color   Color
	Tone    Tone
}

// String implements fmt.Stringer.
func (w Write) String() string {
	switch w.Op {
	case "print":
		return fmt.Sprintf("%s print %q", w.Channel, w.Text)
	case "color":
		return fmt.Sprintf("%s color %d,%d,%d", w.Channel, w.Color.Red, w.Color.Green, w.Color.Blue)
	case "tone":
		return fmt.Sprintf("%s tone %dHz/%d", w.Channel, w.Tone.FreqHz, w.Tone.Duty)
	}
	return fmt.Sprintf("%s %s", w.Channel, w.Op)
}

// Memory is an in-memory device set implementing TextDisplay, Indicator
// and ToneGenerator. It backs headless stations and tests.
type Memory struct {
	DisplayWidth int
	// Limit caps the recorded writes, 0 keeps everything.
	Limit int

	lock   sync.Mutex
	writes []Write
	text   string
	color  Color
	tone   Tone
	fail   map[Channel]error
}

// NewMemory creates a Memory with the display width.
func NewMemory(width int) *Memory {
	return &Memory{DisplayWidth: width, fail: make(map[Channel]error)}
}

// Fail makes subsequent writes on a channel fail with err, nil restores.
func (m *Memory) Fail(ch Channel, err error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.fail == nil {
		m.fail = make(map[Channel]error)
	}
	if err == nil {
		delete(m.fail, ch)
	} else {
		m.fail[ch] = err
	}
}

func (m *Memory) record(w Write, apply func()) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if err := m.fail[w.Channel]; err != nil {
		return err
	}
	apply()
	m.writes = append(m.writes, w)
	if m.Limit > 0 && len(m.writes) > m.Limit {
		m.writes = m.writes[len(m.writes)-m.Limit:]
	}
	return nil
}

// Clear implements TextDisplay.
func (m *Memory) Clear() error {
	return m.record(Write{Channel: ChannelDisplay, Op: "clear"}, func() { m.text = "" })
}

// Print implements TextDisplay.
func (m *Memory) Print(text string) error {
	return m.record(Write{Channel: ChannelDisplay, Op: "print", Text: text}, func() { m.text += text })
}

// Width implements TextDisplay.
func (m *Memory) Width() int {
	return m.DisplayWidth
}

// SetColor implements Indicator.
func (m *Memory) SetColor(c Color) error {
	return m.record(Write{Channel: ChannelLight, Op: "color", Color: c}, func() { m.color = c })
}

// SetTone implements ToneGenerator.
func (m *Memory) SetTone(t Tone) error {
	return m.record(Write{Channel: ChannelTone, Op: "tone", Tone: t}, func() { m.tone = t })
}

// Writes returns a copy of recorded writes.
func (m *Memory) Writes() []Write {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]Write(nil), m.writes...)
}

// WritesOn returns the recorded writes of one channel.
func (m *Memory) WritesOn(ch Channel) []Write {
	var out []Write
	for _, w := range m.Writes() {
		if w.Channel == ch {
			out = append(out, w)
		}
	}
	return out
}

// Reset drops recorded writes.
func (m *Memory) Reset() {
	m.lock.Lock()
	m.writes = nil
	m.lock.Unlock()
}

// Snapshot returns the current display text, color and tone.
func (m *Memory) Snapshot() (string, Color, Tone) {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.text, m.color, m.tone
}

// Sinks creates the three sinks driving this device set.
func (m *Memory) Sinks() *Sinks {
	return NewSinks(m, m, m)
}
