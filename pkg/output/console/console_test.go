package console

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/morse.go/pkg/output"
)

func TestColorName(t *testing.T) {
	testCases := []struct {
		color output.Color
		name  string
	}{
		{output.Off, "off"},
		{output.Color{Red: output.IndicatorTop}, "red"},
		{output.Color{Red: 1, Green: 1}, "red+green"},
		{output.Color{Blue: 1}, "blue"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.name, ColorName(tc.color))
		})
	}
}

func TestTerminalSinks(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, false)
	sinks := term.Sinks(8)
	require.NoError(t, sinks.Validate())

	require.NoError(t, sinks.Display.Set(output.State{Text: "S = "}))
	require.NoError(t, sinks.Light.Set(output.State{Level: output.LevelDash}))
	require.NoError(t, sinks.Tone.Set(output.State{Level: output.LevelDot}))
	sinks.ClearAll()

	out := buf.String()
	require.Contains(t, out, "[LCD] |S =     |")
	require.Contains(t, out, "[LED] red+green")
	require.Contains(t, out, "[BZR] \a700Hz duty 16383")
	require.Contains(t, out, "[LED] off")
	require.Contains(t, out, "[BZR] off")
}

func TestTerminalColor(t *testing.T) {
	testCases := []struct {
		color    output.Color
		expected string
	}{
		{output.Color{Red: 1}, "[LED] \x1b[31mred\x1b[0m"},
		{output.Color{Red: 1, Green: 1}, "[LED] \x1b[33mred+green\x1b[0m"},
		{output.Color{Blue: 1}, "[LED] \x1b[34mblue\x1b[0m"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewTerminal(&buf, true).Light().SetColor(tc.color))
			require.Equal(t, tc.expected+"\n", buf.String())
		})
	}

	var buf bytes.Buffer
	require.NoError(t, NewTerminal(&buf, false).Light().SetColor(output.Color{Red: 1}))
	require.Equal(t, "[LED] red\n", buf.String())
}
