package playback

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/morse.go/pkg/morse"
)

func TestDefaultTiming(t *testing.T) {
	timing := DefaultTiming()
	require.NoError(t, timing.Validate())
	require.Equal(t, 100*time.Millisecond, timing.Hold(morse.Dot))
	require.Equal(t, 300*time.Millisecond, timing.Hold(morse.Dash))
	require.True(t, timing.WordGap > timing.LetterGap)
}

func TestParseTiming(t *testing.T) {
	testCases := []struct {
		name  string
		yaml  string
		check func(t *testing.T, timing Timing)
		err   bool
	}{
		{
			name: "empty",
			yaml: "",
			check: func(t *testing.T, timing Timing) {
				require.Equal(t, DefaultTiming(), timing)
			},
		},
		{
			name: "override",
			yaml: "dot_hold_ms: 60\ndash_hold_ms: 180\nword_gap_ms: 420\n",
			check: func(t *testing.T, timing Timing) {
				require.Equal(t, 60*time.Millisecond, timing.DotHold)
				require.Equal(t, 180*time.Millisecond, timing.DashHold)
				require.Equal(t, 420*time.Millisecond, timing.WordGap)
				require.Equal(t, DefaultTiming().StartDwell, timing.StartDwell)
			},
		},
		{name: "unknown key", yaml: "dit_ms: 10\n", err: true},
		{name: "not a map", yaml: "- 1\n- 2\n", err: true},
		{name: "zero", yaml: "letter_gap_ms: 0\n", err: true},
		{name: "negative", yaml: "start_dwell_ms: -5\n", err: true},
		{name: "dash not longer", yaml: "dot_hold_ms: 300\n", err: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			timing, err := ParseTiming([]byte(tc.yaml))
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, timing)
		})
	}
}

func TestValidateTiming(t *testing.T) {
	timing := DefaultTiming()
	timing.DashHold = timing.DotHold
	err := timing.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidTiming))
}

func TestTimingYAMLRoundTrip(t *testing.T) {
	timing := DefaultTiming().Scale(0.5)
	data, err := yaml.Marshal(timing)
	require.NoError(t, err)
	require.Contains(t, string(data), "dot_hold_ms: 50")
	parsed, err := ParseTiming(data)
	require.NoError(t, err)
	require.Equal(t, timing, parsed)
}

func TestLoadTiming(t *testing.T) {
	dir, err := os.MkdirTemp("", "timing")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "timing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("done_dwell_ms: 2000\n"), 0644))
	timing, err := LoadTiming(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, timing.DoneDwell)

	_, err = LoadTiming(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestStateNames(t *testing.T) {
	for s := StateIdle; s <= StateAnnouncingDone; s++ {
		parsed, err := ParseState(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}
	require.Equal(t, "state(42)", State(42).String())
	_, err := ParseState("dancing")
	require.Error(t, err)
}
