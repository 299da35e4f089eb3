package app

import (
	"sync"

	"github.com/example/mediminder/internal/ports/primary"
)

// tally accumulates a TickReport from concurrent workers.
type tally struct {
	mu     sync.Mutex
	report primary.TickReport
}

func (t *tally) add(fn func(r *primary.TickReport)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.report)
}

func (t *tally) delivered(outcome DeliveryOutcome, err error) {
	t.add(func(r *primary.TickReport) {
		switch {
		case err != nil:
			r.Failed++
		case outcome == DeliverySent:
			r.Delivered++
		case outcome == DeliveryFailed, outcome == DeliveryUnreachable:
			r.Failed++
		}
	})
}

func (t *tally) snapshot() *primary.TickReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.report
	return &r
}
