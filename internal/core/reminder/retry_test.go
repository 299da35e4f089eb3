package reminder

import (
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	backoff := ExponentialBackoff(time.Second)
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
	}
	for _, tt := range tests {
		if got := backoff(tt.attempt); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy(3)

	if !p.ShouldRetry(1) || !p.ShouldRetry(2) {
		t.Error("expected retries after attempts 1 and 2")
	}
	if p.ShouldRetry(3) {
		t.Error("expected no retry after the last attempt")
	}
	if got := p.Delay(3); got != 0 {
		t.Errorf("Delay(3) = %v, want 0", got)
	}
	if got := p.Delay(1); got != 2*time.Second {
		t.Errorf("Delay(1) = %v, want 2s", got)
	}
}
