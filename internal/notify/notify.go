// Package notify defines the notification collaborator signalled by the
// booking workflow. Message rendering and real delivery are outside the
// core; the default implementation records deliveries in the structured
// log the way the original demo mailer did.
package notify

import (
	"context"

	"github.com/aisummit/event-booking/internal/model"
	"go.uber.org/zap"
)

// Notifier delivers user-facing booking messages.
type Notifier interface {
	// BookingConfirmed signals that a booking was created and payment is
	// still pending.
	BookingConfirmed(ctx context.Context, booking *model.BookingDetail) error
	// PaymentSucceeded signals that payment completed and the ticket is
	// ready.
	PaymentSucceeded(ctx context.Context, booking *model.BookingDetail) error
	// VerificationRequested signals a fresh account verification token.
	VerificationRequested(ctx context.Context, email, name, token string) error
}

// LogNotifier writes each would-be delivery to the application log.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) BookingConfirmed(_ context.Context, b *model.BookingDetail) error {
	n.log.Info("notification: booking confirmed",
		zap.String("to", b.UserEmail),
		zap.String("booking_reference", b.BookingReference),
		zap.String("event", b.EventTitle),
		zap.Int("seats", b.SeatsBooked),
		zap.String("total_amount", b.TotalAmount.StringFixed(2)),
	)
	return nil
}

func (n *LogNotifier) PaymentSucceeded(_ context.Context, b *model.BookingDetail) error {
	n.log.Info("notification: payment succeeded",
		zap.String("to", b.UserEmail),
		zap.String("booking_reference", b.BookingReference),
		zap.String("event", b.EventTitle),
	)
	return nil
}

func (n *LogNotifier) VerificationRequested(_ context.Context, email, name, token string) error {
	n.log.Info("notification: verification requested",
		zap.String("to", email),
		zap.String("name", name),
		zap.String("token", token),
	)
	return nil
}
