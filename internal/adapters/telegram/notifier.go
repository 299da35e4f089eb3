package telegram

import (
	"context"
	"log/slog"

	"github.com/example/mediminder/internal/ports/secondary"
)

// AdminNotifier forwards operator alerts to the admin chat. With no admin
// chat configured alerts are only logged.
type AdminNotifier struct {
	transport *Transport
	chatID    string
	logger    *slog.Logger
}

func NewAdminNotifier(transport *Transport, chatID string, logger *slog.Logger) *AdminNotifier {
	return &AdminNotifier{transport: transport, chatID: chatID, logger: logger}
}

func (n *AdminNotifier) NotifyOperator(ctx context.Context, text string) error {
	n.logger.Warn("operator alert", "text", text)
	if n.chatID == "" || n.transport == nil {
		return nil
	}
	return n.transport.SendText(ctx, n.chatID, "⚠️ "+text)
}

var _ secondary.OperatorNotifier = (*AdminNotifier)(nil)
