package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskhive/taskhive-backend/internal/core/ports"
)

// AssignmentNotifier delivers the two board notifications that leave the
// system: a contributor was assigned a ticket, or someone commented on a
// ticket they created. No SMTP server is wired up yet, so delivery is a
// structured log line carrying everything a real sender would need.
type AssignmentNotifier struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.Notifier = (*AssignmentNotifier)(nil)

// NewAssignmentNotifier creates a notifier that resolves recipients through
// the given user repository.
func NewAssignmentNotifier(userRepo ports.UserRepository, logger *slog.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{
		userRepo: userRepo,
		logger:   logger.With("component", "assignment_notifier"),
	}
}

// Notify resolves the recipient and logs the would-be email. Failures are
// logged and swallowed: a missing recipient must never fail the ticket
// update that triggered the notification.
func (n *AssignmentNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	// The triggering request may already be finished.
	notifyCtx := context.Background()

	user, err := n.userRepo.GetByID(notifyCtx, params.RecipientUserID)
	if err != nil {
		n.logger.Error("failed to resolve notification recipient",
			"user_id", params.RecipientUserID,
			"ticket_id", params.TicketID,
			"error", err,
		)
		return
	}

	n.logger.Info("notification email queued",
		"to_name", user.FullName,
		"to_email", user.Email,
		"subject", params.Subject,
		"body", params.Message,
		"ticket_id", params.TicketID,
		"ticket_link", fmt.Sprintf("/tickets/%d", params.TicketID),
	)
}
