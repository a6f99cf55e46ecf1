package sheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate_LiteralFormats(t *testing.T) {
	cases := map[string]time.Time{
		"15 Sep 25":   time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		"15 Sep 2025": time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		"5-Jan-2026":  time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"5-Jan-26":    time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC),
		"2025/09/15":  time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
		"2025-09-15":  time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		require.Equal(t, want, got, "input %q", input)
	}
}

func TestParseDate_MonthTypos(t *testing.T) {
	for input, month := range map[string]time.Month{
		"15 Sept 25": time.September,
		"3 Okt 25":   time.October,
		"24 Des 25":  time.December,
	} {
		got, ok := ParseDate(input)
		require.True(t, ok, "input %q", input)
		require.Equal(t, month, got.Month(), "input %q", input)
	}
}

func TestParseDate_YearlessAssumesCurrentYear(t *testing.T) {
	got, ok := ParseDate("15Sep")
	require.True(t, ok)
	require.Equal(t, time.Now().Year(), got.Year())
	require.Equal(t, time.September, got.Month())
	require.Equal(t, 15, got.Day())
}

func TestParseDate_Unparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "next week", "99-XYZ-2025"} {
		_, ok := ParseDate(input)
		require.False(t, ok, "input %q", input)
	}
}
