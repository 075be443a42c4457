package morse

// Element is a single Morse signal element.
type Element byte

// Elements
const (
	Dot  Element = '.'
	Dash Element = '-'
)

// IsValid indicates the element is a dot or a dash.
func (e Element) IsValid() bool {
	return e == Dot || e == Dash
}

// String implements fmt.Stringer.
func (e Element) String() string {
	switch e {
	case Dot:
		return "dot"
	case Dash:
		return "dash"
	}
	return "invalid"
}

// Symbol is the dot/dash sequence of one character.
// An empty Symbol marks a word separator.
type Symbol string

// Elements returns the elements in order.
func (s Symbol) Elements() []Element {
	elements := make([]Element, len(s))
	for n := 0; n < len(s); n++ {
		elements[n] = Element(s[n])
	}
	return elements
}

// IsSeparator indicates the symbol carries no elements.
func (s Symbol) IsSeparator() bool {
	return len(s) == 0
}

// Len returns the number of elements.
func (s Symbol) Len() int {
	return len(s)
}
