package morse

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultCapacity is the maximum number of units in a message
// unless an Encoder is configured otherwise.
const DefaultCapacity = 32

// WordSeparator is the input character kept as a separator unit.
const WordSeparator = ' '

// ErrCapacityExceeded indicates the message encodes to more units than allowed.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// EncodedUnit is one encoded character.
type EncodedUnit struct {
	Char   rune
	Symbol Symbol
}

// IsSeparator indicates the unit is a word separator.
func (u EncodedUnit) IsSeparator() bool {
	return u.Symbol.IsSeparator()
}

// EncodedMessage is the ordered result of encoding a text.
type EncodedMessage struct {
	Units []EncodedUnit
}

// Len returns the number of units.
func (m *EncodedMessage) Len() int {
	return len(m.Units)
}

// ElementCount returns the total number of dots and dashes.
func (m *EncodedMessage) ElementCount() (n int) {
	for _, u := range m.Units {
		n += u.Symbol.Len()
	}
	return
}

// Text returns the characters that survived encoding.
func (m *EncodedMessage) Text() string {
	var sb strings.Builder
	for _, u := range m.Units {
		sb.WriteRune(u.Char)
	}
	return sb.String()
}

// String renders symbols separated by spaces with "/" for word breaks.
func (m *EncodedMessage) String() string {
	items := make([]string, len(m.Units))
	for n, u := range m.Units {
		if u.IsSeparator() {
			items[n] = "/"
		} else {
			items[n] = string(u.Symbol)
		}
	}
	return strings.Join(items, " ")
}

// Encoder converts text into an EncodedMessage.
type Encoder struct {
	Capacity int
}

// NewEncoder creates an Encoder with the given capacity.
// A non-positive capacity means DefaultCapacity.
func NewEncoder(capacity int) *Encoder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Encoder{Capacity: capacity}
}

// Encode encodes text with DefaultCapacity.
func Encode(text string) (*EncodedMessage, error) {
	return NewEncoder(DefaultCapacity).Encode(text)
}

// Encode walks text in order. Supported characters become units with
// their symbol, spaces become separator units and everything else is
// skipped. If more than Capacity units would be produced, no message is
// returned and the error wraps ErrCapacityExceeded.
func (e *Encoder) Encode(text string) (*EncodedMessage, error) {
	capacity := e.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	msg := &EncodedMessage{Units: make([]EncodedUnit, 0, capacity)}
	for _, c := range text {
		var unit EncodedUnit
		if symbol, ok := Lookup(c); ok {
			unit = EncodedUnit{Char: c, Symbol: symbol}
		} else if c == WordSeparator {
			unit = EncodedUnit{Char: c}
		} else {
			continue
		}
		if len(msg.Units) >= capacity {
			return nil, fmt.Errorf("%w: more than %d units", ErrCapacityExceeded, capacity)
		}
		msg.Units = append(msg.Units, unit)
	}
	return msg, nil
}
