package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/mediminder/internal/core/schedule"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// RecipientServiceImpl implements the RecipientService interface.
type RecipientServiceImpl struct {
	recipients secondary.RecipientRepository
}

// NewRecipientService creates a new RecipientService with injected dependencies.
func NewRecipientService(recipients secondary.RecipientRepository) *RecipientServiceImpl {
	return &RecipientServiceImpl{recipients: recipients}
}

// Register creates the recipient if needed.
func (s *RecipientServiceImpl) Register(ctx context.Context, recipientID string) error {
	if strings.TrimSpace(recipientID) == "" {
		return fmt.Errorf("recipient ID cannot be empty")
	}
	return s.recipients.Register(ctx, recipientID)
}

// SetPhone validates and stores the escalation contact number.
func (s *RecipientServiceImpl) SetPhone(ctx context.Context, recipientID, phone string) error {
	phone = strings.TrimSpace(phone)
	if result := schedule.CanSetPhone(phone); !result.Allowed {
		return fmt.Errorf("%w: %s", primary.ErrInvalidPhone, result.Reason)
	}
	if err := s.recipients.SetPhone(ctx, recipientID, phone); err != nil {
		return fmt.Errorf("failed to set phone number: %w", err)
	}
	return nil
}

// GetRecipient retrieves a recipient.
func (s *RecipientServiceImpl) GetRecipient(ctx context.Context, recipientID string) (*primary.Recipient, error) {
	record, err := s.recipients.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return &primary.Recipient{
		ID:          record.ID,
		PhoneNumber: record.PhoneNumber,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Ensure RecipientServiceImpl implements the interface
var _ primary.RecipientService = (*RecipientServiceImpl)(nil)
