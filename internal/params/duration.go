package params

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a walltime request. Minutes and seconds are always < 60;
// whole days are carried into Hours.
type Duration struct {
	Hours   int
	Minutes int
	Seconds int
}

// NewDuration normalizes the given parts; days become 24 hours each.
func NewDuration(days, hours, minutes, seconds int) Duration {
	total := ((days*24+hours)*60+minutes)*60 + seconds
	if total < 0 {
		total = 0
	}
	return Duration{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// FromTimeDuration converts a time.Duration, truncating to whole seconds.
func FromTimeDuration(d time.Duration) Duration {
	return NewDuration(0, 0, 0, int(d/time.Second))
}

// ParseDuration parses "HH:MM:SS". Fields may exceed their range
// ("0:90:00" is 01:30:00); the result is normalized.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return Duration{}, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		v[i] = n
	}
	return NewDuration(0, v[0], v[1], v[2]), nil
}

// String renders HH:MM:SS with at least two digits per field.
func (d Duration) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.Hours, d.Minutes, d.Seconds)
}

// HourString, MinuteString and SecondString are the zero-padded header fields.
func (d Duration) HourString() string   { return fmt.Sprintf("%02d", d.Hours) }
func (d Duration) MinuteString() string { return fmt.Sprintf("%02d", d.Minutes) }
func (d Duration) SecondString() string { return fmt.Sprintf("%02d", d.Seconds) }

// TimeDuration converts to a time.Duration.
func (d Duration) TimeDuration() time.Duration {
	return time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second
}

// IsZero reports whether no time was requested.
func (d Duration) IsZero() bool {
	return d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// DurationFromValue accepts a Duration, an "HH:MM:SS" string, a
// time.Duration or a mapping with days/hours/minutes/seconds keys.
func DurationFromValue(v any) (Duration, error) {
	switch t := v.(type) {
	case Duration:
		return t, nil
	case *Duration:
		if t == nil {
			return Duration{}, nil
		}
		return *t, nil
	case string:
		return ParseDuration(t)
	case time.Duration:
		return FromTimeDuration(t), nil
	case map[string]any:
		var parts [4]int
		for i, k := range []string{"days", KeyHours, KeyMinutes, KeySeconds} {
			raw, ok := t[k]
			if !ok || raw == nil {
				continue
			}
			n, err := strconv.Atoi(FormatValue(raw))
			if err != nil {
				return Duration{}, fmt.Errorf("%w: %s=%v", ErrInvalidDuration, k, raw)
			}
			parts[i] = n
		}
		return NewDuration(parts[0], parts[1], parts[2], parts[3]), nil
	default:
		return Duration{}, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalidDuration, v, v)
	}
}
