package reminder

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "08:00", want: TimeOfDay{8, 0}},
		{in: " 8:30 ", want: TimeOfDay{8, 30}},
		{in: "23:59", want: TimeOfDay{23, 59}},
		{in: "00:00", want: TimeOfDay{0, 0}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "1200", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
		{in: "+8:00", wantErr: true},
		{in: "08:+5", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "٠٨:٠٠", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeOfDay(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimesOfDay(t *testing.T) {
	times, err := ParseTimesOfDay("20:00, 08:00,14:30, 08:00")
	if err != nil {
		t.Fatalf("ParseTimesOfDay failed: %v", err)
	}
	if got := FormatTimesOfDay(times); got != "08:00,14:30,20:00" {
		t.Errorf("FormatTimesOfDay = %q, want %q", got, "08:00,14:30,20:00")
	}

	if _, err := ParseTimesOfDay(" , "); err == nil {
		t.Error("expected error for empty time list")
	}
	if _, err := ParseTimesOfDay("08:00,25:00"); err == nil {
		t.Error("expected error for out of range time")
	}
}

func TestScheduledInstant(t *testing.T) {
	loc := time.FixedZone("REF", 2*60*60)
	// 23:30 UTC is already the next day in a UTC+2 reference clock.
	now := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	got := ScheduledInstant(now, TimeOfDay{8, 0}, loc)
	want := time.Date(2026, 3, 2, 8, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ScheduledInstant = %v, want %v", got, want)
	}
}

func TestInTriggerWindow(t *testing.T) {
	instant := time.Date(2026, 1, 20, 8, 0, 0, 0, time.UTC)
	width := time.Minute

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "exact instant", now: instant, want: true},
		{name: "ten seconds in", now: instant.Add(10 * time.Second), want: true},
		{name: "just before window end", now: instant.Add(59 * time.Second), want: true},
		{name: "window end is exclusive", now: instant.Add(time.Minute), want: false},
		{name: "before instant", now: instant.Add(-time.Second), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InTriggerWindow(tt.now, instant, width); got != tt.want {
				t.Errorf("InTriggerWindow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEscalationCutoff(t *testing.T) {
	now := time.Date(2026, 1, 20, 8, 35, 0, 0, time.UTC)
	got := EscalationCutoff(now, 30*time.Minute)
	if want := time.Date(2026, 1, 20, 8, 5, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("EscalationCutoff = %v, want %v", got, want)
	}
}
