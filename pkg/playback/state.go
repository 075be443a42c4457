package playback

import (
	"fmt"

	"github.com/robotalks/morse.go/pkg/output"
)

// State is the controller phase.
type State int

// States
const (
	StateIdle State = iota
	StateAnnouncingStart
	StateEmittingUnit
	StateEmittingSymbol
	StateInterSymbolGap
	StateInterUnitGap
	StateAnnouncingDone
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateAnnouncingStart: "announcing-start",
	StateEmittingUnit:    "emitting-unit",
	StateEmittingSymbol:  "emitting-symbol",
	StateInterSymbolGap:  "inter-symbol-gap",
	StateInterUnitGap:    "inter-unit-gap",
	StateAnnouncingDone:  "announcing-done",
}

// String implements fmt.Stringer.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState parses the name produced by String.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return StateIdle, fmt.Errorf("unknown state %q", name)
}

// Status is a snapshot of the controller.
type Status struct {
	State State
	// Text is the source text of the message being played.
	Text  string
	Units int
	// Unit is the index of the current unit, -1 outside units.
	Unit int
	// Symbol is the index of the current element within the unit.
	Symbol int
	Errors int
	// Rejected carries the reason a message was discarded.
	Rejected string
}

// Observer receives controller notifications. Calls are made from the
// playback goroutine and must not block for long.
type Observer interface {
	OnState(Status)
	OnChannel(output.Channel, output.State)
}

// ObserverFuncs adapts funcs to Observer, nil funcs are skipped.
type ObserverFuncs struct {
	State   func(Status)
	Channel func(output.Channel, output.State)
}

// OnState implements Observer.
func (f ObserverFuncs) OnState(s Status) {
	if f.State != nil {
		f.State(s)
	}
}

// OnChannel implements Observer.
func (f ObserverFuncs) OnChannel(ch output.Channel, s output.State) {
	if f.Channel != nil {
		f.Channel(ch, s)
	}
}
