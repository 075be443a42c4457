// Package console renders the station outputs on a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/robotalks/morse.go/pkg/output"
)

// Terminal is a shared line-oriented terminal. Each device write
// prints one status line prefixed by the channel.
type Terminal struct {
	Out   io.Writer
	Color bool

	lock sync.Mutex
	text string
}

// NewTerminal creates a Terminal.
func NewTerminal(out io.Writer, color bool) *Terminal {
	return &Terminal{Out: out, Color: color}
}

func (t *Terminal) printf(format string, args ...interface{}) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	_, err := fmt.Fprintf(t.Out, format+"\n", args...)
	return err
}

// Display returns the LCD view of the terminal.
func (t *Terminal) Display(width int) output.TextDisplay {
	return &display{term: t, width: width}
}

// Light returns the indicator view of the terminal.
func (t *Terminal) Light() output.Indicator {
	return &light{term: t}
}

// Tone returns the tone view of the terminal.
func (t *Terminal) Tone() output.ToneGenerator {
	return &tone{term: t}
}

// Sinks builds the three sinks over the terminal.
func (t *Terminal) Sinks(width int) *output.Sinks {
	return output.NewSinks(t.Display(width), t.Light(), t.Tone())
}

type display struct {
	term  *Terminal
	width int
}

func (d *display) Clear() error {
	d.term.lock.Lock()
	d.term.text = ""
	d.term.lock.Unlock()
	return nil
}

func (d *display) Print(text string) error {
	d.term.lock.Lock()
	d.term.text += text
	line := d.term.text
	d.term.lock.Unlock()
	width := d.width
	if width <= 0 {
		width = len(line)
	}
	return d.term.printf("[LCD] |%-*s|", width, line)
}

func (d *display) Width() int {
	return d.width
}

type light struct {
	term *Terminal
}

func (l *light) SetColor(c output.Color) error {
	name := ColorName(c)
	if l.term.Color {
		name = Painter(c).Sprint(name)
	}
	return l.term.printf("[LED] %s", name)
}

type tone struct {
	term *Terminal
}

func (t *tone) SetTone(v output.Tone) error {
	if v.IsSilent() {
		return t.term.printf("[BZR] off")
	}
	return t.term.printf("[BZR] \a%dHz duty %d", v.FreqHz, v.Duty)
}

// ColorName names the color by its lit channels.
func ColorName(c output.Color) string {
	if c.IsOff() {
		return "off"
	}
	var names []string
	if c.Red > 0 {
		names = append(names, "red")
	}
	if c.Green > 0 {
		names = append(names, "green")
	}
	if c.Blue > 0 {
		names = append(names, "blue")
	}
	return strings.Join(names, "+")
}

// Painter returns the terminal color closest to an indicator color.
// Coloring is forced on, callers decide whether to use it.
func Painter(c output.Color) *color.Color {
	attr := color.FgBlack
	if c.Red > 0 {
		attr++
	}
	if c.Green > 0 {
		attr += 2
	}
	if c.Blue > 0 {
		attr += 4
	}
	p := color.New(attr)
	p.EnableColor()
	return p
}
