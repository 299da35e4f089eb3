package reminder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is an hour:minute in the reference clock.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if len(hh) == 0 || len(hh) > 2 || !allDigits(hh) {
		return TimeOfDay{}, fmt.Errorf("invalid hour in %q", s)
	}
	if len(mm) != 2 || !allDigits(mm) {
		return TimeOfDay{}, fmt.Errorf("invalid minute in %q", s)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	t := TimeOfDay{Hour: h, Minute: m}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", s)
	}
	return t, nil
}

// allDigits rejects the signs strconv.Atoi would accept.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Valid reports whether hour is in [0,24) and minute in [0,60).
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) before(o TimeOfDay) bool {
	if t.Hour != o.Hour {
		return t.Hour < o.Hour
	}
	return t.Minute < o.Minute
}

// ParseTimesOfDay parses a comma-separated list into a sorted, de-duplicated set.
// An empty result is an error.
func ParseTimesOfDay(s string) ([]TimeOfDay, error) {
	seen := make(map[TimeOfDay]bool)
	var times []TimeOfDay
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := ParseTimeOfDay(part)
		if err != nil {
			return nil, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		times = append(times, t)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no times provided")
	}
	sort.Slice(times, func(i, j int) bool { return times[i].before(times[j]) })
	return times, nil
}

// FormatTimesOfDay renders times in the stored comma-separated form.
func FormatTimesOfDay(times []TimeOfDay) string {
	parts := make([]string, len(times))
	for i, t := range times {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// ScheduledInstant combines the calendar day of now (in loc) with a time of day.
func ScheduledInstant(now time.Time, t TimeOfDay, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), t.Hour, t.Minute, 0, 0, loc)
}

// InTriggerWindow reports whether now falls inside [instant, instant+width).
func InTriggerWindow(now, instant time.Time, width time.Duration) bool {
	return !now.Before(instant) && now.Before(instant.Add(width))
}

// EscalationCutoff returns the instant before which sent rows are overdue.
func EscalationCutoff(now time.Time, delay time.Duration) time.Time {
	return now.Add(-delay)
}
