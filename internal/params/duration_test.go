package params

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationRoundTrip(t *testing.T) {
	for _, s := range []string{"12:30:10", "00:00:00", "168:00:00", "01:05:09"} {
		d, err := ParseDuration(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, d.String())
	}
}

func TestParseDurationNormalizes(t *testing.T) {
	d, err := ParseDuration("0:90:75")
	require.NoError(t, err)
	assert.Equal(t, Duration{Hours: 1, Minutes: 31, Seconds: 15}, d)
	assert.Equal(t, "01:31:15", d.String())
}

func TestParseDurationInvalid(t *testing.T) {
	for _, s := range []string{"", "12:30", "a:b:c", "1:2:3:4", "-1:00:00"} {
		_, err := ParseDuration(s)
		assert.True(t, errors.Is(err, ErrInvalidDuration), s)
	}
}

func TestDayOverflowCarriesIntoHours(t *testing.T) {
	d := NewDuration(1, 2, 0, 0)
	assert.Equal(t, 26, d.Hours)
	assert.Equal(t, "26", d.HourString())
	assert.Equal(t, "26:00:00", d.String())
}

func TestDurationFields(t *testing.T) {
	d := NewDuration(0, 12, 30, 10)
	assert.Equal(t, "12", d.HourString())
	assert.Equal(t, "30", d.MinuteString())
	assert.Equal(t, "10", d.SecondString())
	assert.Equal(t, 12*time.Hour+30*time.Minute+10*time.Second, d.TimeDuration())
	assert.False(t, d.IsZero())
	assert.True(t, Duration{}.IsZero())
}

func TestDurationFromValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "12:30:10", "12:30:10"},
		{"value", NewDuration(0, 1, 0, 0), "01:00:00"},
		{"time.Duration", 90 * time.Minute, "01:30:00"},
		{"mapping", map[string]any{"hours": 12, "minutes": 30, "seconds": 10}, "12:30:10"},
		{"mapping with days", map[string]any{"days": 1, "hours": 2}, "26:00:00"},
		{"mapping string values", map[string]any{"hours": "3", "minutes": nil}, "03:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DurationFromValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}

	_, err := DurationFromValue(3.5)
	assert.True(t, errors.Is(err, ErrInvalidDuration))
}
