package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// CallEscalator implements secondary.EscalationChannel: it queues a call
// record for the recipient's number and sends an urgent message.
type CallEscalator struct {
	mu        sync.Mutex // serializes GetNextID + Create
	calls     secondary.EscalationCallRepository
	transport secondary.NotificationTransport
}

// NewCallEscalator creates a new CallEscalator.
func NewCallEscalator(calls secondary.EscalationCallRepository, transport secondary.NotificationTransport) *CallEscalator {
	return &CallEscalator{calls: calls, transport: transport}
}

// Escalate queues the call and notifies the recipient.
func (e *CallEscalator) Escalate(ctx context.Context, req secondary.EscalationRequest) error {
	id, err := e.queue(ctx, req)
	if err != nil {
		return err
	}

	if err := e.transport.SendText(ctx, req.RecipientID, escalationText(req.MedicationName, req.PhoneNumber)); err != nil {
		if uerr := e.calls.UpdateStatus(ctx, id, primary.CallStatusFailed, err.Error()); uerr != nil {
			return fmt.Errorf("failed to record call failure (%v): %w", err, uerr)
		}
		return fmt.Errorf("failed to send escalation notice: %w", err)
	}

	if err := e.calls.UpdateStatus(ctx, id, primary.CallStatusNotified, ""); err != nil {
		return fmt.Errorf("failed to update escalation call: %w", err)
	}
	return nil
}

func (e *CallEscalator) queue(ctx context.Context, req secondary.EscalationRequest) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.calls.GetNextID(ctx)
	if err != nil {
		return "", err
	}
	err = e.calls.Create(ctx, &secondary.EscalationCallRecord{
		ID:          id,
		InstanceID:  req.InstanceID,
		RecipientID: req.RecipientID,
		PhoneNumber: req.PhoneNumber,
		Status:      primary.CallStatusQueued,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Ensure CallEscalator implements the interface
var _ secondary.EscalationChannel = (*CallEscalator)(nil)
