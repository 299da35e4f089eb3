package app

import (
	"context"
	"fmt"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// EscalationCallServiceImpl implements the EscalationCallService interface.
type EscalationCallServiceImpl struct {
	calls secondary.EscalationCallRepository
}

// NewEscalationCallService creates a new EscalationCallService with injected dependencies.
func NewEscalationCallService(calls secondary.EscalationCallRepository) *EscalationCallServiceImpl {
	return &EscalationCallServiceImpl{calls: calls}
}

// ListCalls lists escalation calls with optional filters.
func (s *EscalationCallServiceImpl) ListCalls(ctx context.Context, filters primary.EscalationCallFilters) ([]*primary.EscalationCall, error) {
	records, err := s.calls.List(ctx, secondary.EscalationCallFilters{
		Status:      filters.Status,
		RecipientID: filters.RecipientID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list escalation calls: %w", err)
	}

	calls := make([]*primary.EscalationCall, len(records))
	for i, r := range records {
		calls[i] = &primary.EscalationCall{
			ID:          r.ID,
			InstanceID:  r.InstanceID,
			RecipientID: r.RecipientID,
			PhoneNumber: r.PhoneNumber,
			Status:      r.Status,
			Error:       r.Error,
			CreatedAt:   r.CreatedAt,
		}
	}
	return calls, nil
}

// Ensure EscalationCallServiceImpl implements the interface
var _ primary.EscalationCallService = (*EscalationCallServiceImpl)(nil)
