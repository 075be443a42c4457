package playback

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/morse.go/pkg/morse"
)

// Timing is the dwell and hold profile of playback.
type Timing struct {
	// StartDwell holds the start banner.
	StartDwell time.Duration
	// UnitHold holds the character before its symbols.
	UnitHold time.Duration
	DotHold  time.Duration
	DashHold time.Duration
	// SymbolGap separates elements of one character.
	SymbolGap time.Duration
	// LetterGap separates characters.
	LetterGap time.Duration
	// WordGap is taken for a word separator.
	WordGap time.Duration
	// DoneDwell holds the done banner and completion color.
	DoneDwell time.Duration
}

// DefaultTiming returns the standard profile.
func DefaultTiming() Timing {
	return Timing{
		StartDwell: 1000 * time.Millisecond,
		UnitHold:   500 * time.Millisecond,
		DotHold:    100 * time.Millisecond,
		DashHold:   300 * time.Millisecond,
		SymbolGap:  100 * time.Millisecond,
		LetterGap:  500 * time.Millisecond,
		WordGap:    1200 * time.Millisecond,
		DoneDwell:  1000 * time.Millisecond,
	}
}

// Hold returns the hold duration of an element.
func (t Timing) Hold(e morse.Element) time.Duration {
	if e == morse.Dash {
		return t.DashHold
	}
	return t.DotHold
}

// ErrInvalidTiming indicates a timing profile failed validation.
var ErrInvalidTiming = errors.New("invalid timing")

// Validate checks every duration is positive and a dash outlasts a dot.
func (t Timing) Validate() error {
	durations := []struct {
		name string
		val  time.Duration
	}{
		{"start_dwell", t.StartDwell},
		{"unit_hold", t.UnitHold},
		{"dot_hold", t.DotHold},
		{"dash_hold", t.DashHold},
		{"symbol_gap", t.SymbolGap},
		{"letter_gap", t.LetterGap},
		{"word_gap", t.WordGap},
		{"done_dwell", t.DoneDwell},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidTiming, d.name, d.val)
		}
	}
	if t.DashHold <= t.DotHold {
		return fmt.Errorf("%w: dash_hold %v must exceed dot_hold %v", ErrInvalidTiming, t.DashHold, t.DotHold)
	}
	return nil
}

// Scale returns the profile with every duration multiplied by factor.
func (t Timing) Scale(factor float64) Timing {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) * factor)
	}
	return Timing{
		StartDwell: scale(t.StartDwell),
		UnitHold:   scale(t.UnitHold),
		DotHold:    scale(t.DotHold),
		DashHold:   scale(t.DashHold),
		SymbolGap:  scale(t.SymbolGap),
		LetterGap:  scale(t.LetterGap),
		WordGap:    scale(t.WordGap),
		DoneDwell:  scale(t.DoneDwell),
	}
}

// timingFile is the YAML form, all values in milliseconds.
// Absent keys keep their defaults.
type timingFile struct {
	StartDwellMs *int64 `yaml:"start_dwell_ms"`
	UnitHoldMs   *int64 `yaml:"unit_hold_ms"`
	DotHoldMs    *int64 `yaml:"dot_hold_ms"`
	DashHoldMs   *int64 `yaml:"dash_hold_ms"`
	SymbolGapMs  *int64 `yaml:"symbol_gap_ms"`
	LetterGapMs  *int64 `yaml:"letter_gap_ms"`
	WordGapMs    *int64 `yaml:"word_gap_ms"`
	DoneDwellMs  *int64 `yaml:"done_dwell_ms"`
}

func overlay(dst *time.Duration, ms *int64) {
	if ms != nil {
		*dst = time.Duration(*ms) * time.Millisecond
	}
}

// ParseTiming reads a YAML profile over the defaults and validates it.
func ParseTiming(data []byte) (Timing, error) {
	t := DefaultTiming()
	var f timingFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return t, fmt.Errorf("parse timing: %w", err)
	}
	overlay(&t.StartDwell, f.StartDwellMs)
	overlay(&t.UnitHold, f.UnitHoldMs)
	overlay(&t.DotHold, f.DotHoldMs)
	overlay(&t.DashHold, f.DashHoldMs)
	overlay(&t.SymbolGap, f.SymbolGapMs)
	overlay(&t.LetterGap, f.LetterGapMs)
	overlay(&t.WordGap, f.WordGapMs)
	overlay(&t.DoneDwell, f.DoneDwellMs)
	return t, t.Validate()
}

// LoadTiming reads a YAML profile file.
func LoadTiming(path string) (Timing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultTiming(), err
	}
	return ParseTiming(data)
}

// MarshalYAML implements yaml.Marshaler.
func (t Timing) MarshalYAML() (interface{}, error) {
	ms := func(d time.Duration) *int64 {
		v := d.Milliseconds()
		return &v
	}
	return timingFile{
		StartDwellMs: ms(t.StartDwell),
		UnitHoldMs:   ms(t.UnitHold),
		DotHoldMs:    ms(t.DotHold),
		DashHoldMs:   ms(t.DashHold),
		SymbolGapMs:  ms(t.SymbolGap),
		LetterGapMs:  ms(t.LetterGap),
		WordGapMs:    ms(t.WordGap),
		DoneDwellMs:  ms(t.DoneDwell),
	}, nil
}
