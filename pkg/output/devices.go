package output

// TextDisplay is a character display collaborator.
type TextDisplay interface {
	Clear() error
	Print(text string) error
	// Width returns the number of characters on a line, 0 for unlimited.
	Width() int
}

// Color is a tri-channel intensity triple.
type Color struct {
	Red   uint16
	Green uint16
	Blue  uint16
}

// Off is the dark color.
var Off = Color{}

// IsOff tells the color is dark.
func (c Color) IsOff() bool {
	return c == Off
}

// Indicator is a tri-color light collaborator.
type Indicator interface {
	SetColor(Color) error
}

// Tone is a tone generator setting, a zero Duty is silence.
type Tone struct {
	FreqHz uint32
	Duty   uint16
}

// Silence is the tone generator "off" value.
var Silence = Tone{}

// IsSilent tells the tone produces no sound.
func (t Tone) IsSilent() bool {
	return t.Duty == 0
}

// ToneGenerator is a tone output collaborator.
type ToneGenerator interface {
	SetTone(Tone) error
}

// IndicatorTop is the full-scale indicator intensity.
const IndicatorTop uint16 = 0x8000

// ToneTop is the full-scale tone duty.
const ToneTop uint16 = 0xFFFF

// Palette maps levels to indicator colors.
type Palette map[Level]Color

// DefaultPalette is red for dot, red plus green for dash and blue for done.
func DefaultPalette() Palette {
	return Palette{
		LevelIdle: Off,
		LevelDot:  Color{Red: IndicatorTop},
		LevelDash: Color{Red: IndicatorTop, Green: IndicatorTop},
		LevelDone: Color{Blue: IndicatorTop},
	}
}

// ToneProfile maps levels to tones.
type ToneProfile struct {
	FreqHz   uint32
	DotDuty  uint16
	DashDuty uint16
}

// DefaultToneProfile uses a quarter duty for dot and half duty for dash.
func DefaultToneProfile() ToneProfile {
	return ToneProfile{
		FreqHz:   700,
		DotDuty:  ToneTop / 4,
		DashDuty: ToneTop / 2,
	}
}

// ToneFor returns the tone for a level.
// Done and idle are silent.
func (p ToneProfile) ToneFor(level Level) Tone {
	switch level {
	case LevelDot:
		return Tone{FreqHz: p.FreqHz, Duty: p.DotDuty}
	case LevelDash:
		return Tone{FreqHz: p.FreqHz, Duty: p.DashDuty}
	}
	return Silence
}
