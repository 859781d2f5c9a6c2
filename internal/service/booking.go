package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/monitoring"
	"github.com/aisummit/event-booking/internal/notify"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingStore is the persistence surface the booking service depends on.
// *repository.BookingRepository satisfies it.
type BookingStore interface {
	Create(ctx context.Context, userID, eventID, reference string, seats int) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.BookingDetail, error)
	GetByReference(ctx context.Context, reference string) (*model.BookingDetail, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error)
	ListAll(ctx context.Context, filter model.BookingFilter) ([]model.BookingDetail, error)
	CancelPending(ctx context.Context, bookingID, ownerUserID string) error
	MarkPaid(ctx context.Context, bookingID, paymentReference string) error
	MarkFailed(ctx context.Context, bookingID string) error
	SetTicketArtifact(ctx context.Context, bookingID, artifact string) (bool, error)
	Stats(ctx context.Context) (*model.BookingStats, error)
	RevenueByMonth(ctx context.Context, months int) ([]model.MonthlyRevenue, error)
}

// TicketGenerator renders the proof-of-purchase artifact for a paid
// booking. *TicketIssuer satisfies it.
type TicketGenerator interface {
	Issue(booking *model.BookingDetail) (string, error)
}

// Charger evaluates a payment instrument. *PaymentSimulator satisfies it.
type Charger interface {
	Charge(cardNumber string, amount decimal.Decimal) Outcome
}

// BookingService orchestrates the reservation and payment-status workflow.
type BookingService struct {
	bookings BookingStore
	tickets  TicketGenerator
	charger  Charger
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewBookingService constructs a BookingService with its dependencies.
func NewBookingService(
	bookings BookingStore,
	tickets TicketGenerator,
	charger Charger,
	notifier notify.Notifier,
	log *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		tickets:  tickets,
		charger:  charger,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// CreateBooking reserves seats for a user. Seat bounds are validated here;
// availability is re-validated atomically inside the repository
// transaction, so a rejection never leaves a row behind.
func (s *BookingService) CreateBooking(ctx context.Context, userID, eventID string, seats int) (*model.BookingResult, error) {
	if seats < model.MinSeatsPerBooking || seats > model.MaxSeatsPerBooking {
		return nil, fmt.Errorf("invalid number of seats (%d-%d allowed)",
			model.MinSeatsPerBooking, model.MaxSeatsPerBooking)
	}

	reference := BookingReference(s.now())
	booking, err := s.bookings.Create(ctx, userID, eventID, reference, seats)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, repository.ErrNotFound
		case errors.Is(err, repository.ErrNotEnoughSeats):
			monitoring.TrackBookingRejected("sold_out")
			return nil, repository.ErrNotEnoughSeats
		case errors.Is(err, repository.ErrDuplicate):
			monitoring.TrackBookingRejected("reference_collision")
			return nil, fmt.Errorf("create booking: %w", err)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	monitoring.TrackBookingCreated()

	if detail, derr := s.bookings.GetByID(ctx, booking.ID); derr == nil {
		if nerr := s.notifier.BookingConfirmed(ctx, detail); nerr != nil {
			s.log.Warn("booking confirmation notification failed",
				zap.String("booking_id", booking.ID), zap.Error(nerr))
		}
	}

	return &model.BookingResult{
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		TotalAmount:      booking.TotalAmount,
	}, nil
}

// GetBooking returns a booking visible to the caller: owners see their own
// bookings, admins see all. Anything else reads as not found.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string, caller model.AuthContext) (*model.BookingDetail, error) {
	detail, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && detail.UserID != caller.UserID {
		return nil, repository.ErrNotFound
	}
	return detail, nil
}

// GetBookingByReference is the support lookup path, admin only at the
// HTTP layer.
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*model.BookingDetail, error) {
	return s.bookings.GetByReference(ctx, reference)
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// ListBookings is the filtered admin listing.
func (s *BookingService) ListBookings(ctx context.Context, filter model.BookingFilter) ([]model.BookingDetail, error) {
	return s.bookings.ListAll(ctx, filter)
}

// Cancel deletes a pending booking. ownerUserID empty means an admin
// caller; otherwise ownership is verified and a mismatch reads as not
// found. Paid bookings must go through the refund channel instead.
func (s *BookingService) Cancel(ctx context.Context, bookingID, ownerUserID string) error {
	return s.bookings.CancelPending(ctx, bookingID, ownerUserID)
}

// Pay runs the payment step for a booking: ownership and state checks,
// one simulated charge, then the status transition with its side effects.
// The card form is shape-validated at the HTTP edge before this point.
func (s *BookingService) Pay(ctx context.Context, bookingID string, caller model.AuthContext, card model.PaymentRequest) (*model.PaymentResult, error) {
	detail, err := s.GetBooking(ctx, bookingID, caller)
	if err != nil {
		return nil, err
	}
	if detail.PaymentStatus == model.PaymentPaid {
		return nil, repository.ErrAlreadyPaid
	}

	outcome := s.charger.Charge(card.CardNumber, detail.TotalAmount)

	paymentReference := ""
	if outcome.Approved {
		paymentReference, err = PaymentReference()
		if err != nil {
			return nil, fmt.Errorf("generate payment reference: %w", err)
		}
	}
	return s.ApplyPaymentResult(ctx, bookingID, outcome, paymentReference)
}

// ApplyPaymentResult moves a booking between payment states.
// pending/failed + approved -> paid (terminal): persists the payment
// reference, issues exactly one ticket artifact, and signals the
// notification collaborator. pending/failed + declined/error -> failed,
// re-attemptable. Any transition out of paid is rejected unchanged.
func (s *BookingService) ApplyPaymentResult(ctx context.Context, bookingID string, outcome Outcome, paymentReference string) (*model.PaymentResult, error) {
	monitoring.TrackPaymentOutcome(outcome.Code)

	if !outcome.Approved {
		if err := s.bookings.MarkFailed(ctx, bookingID); err != nil {
			return nil, err
		}
		return &model.PaymentResult{
			Success:       false,
			Message:       outcome.Message,
			PaymentStatus: model.PaymentFailed,
		}, nil
	}

	err := s.bookings.MarkPaid(ctx, bookingID, paymentReference)
	if errors.Is(err, repository.ErrNotEnoughSeats) {
		// Capacity was consumed by other paid bookings while this one sat
		// pending; the booking is now failed and the charge is rejected.
		monitoring.TrackBookingRejected("sold_out_at_payment")
		return &model.PaymentResult{
			Success:       false,
			Message:       "seats are no longer available for this event",
			PaymentStatus: model.PaymentFailed,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	detail, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load paid booking: %w", err)
	}

	s.issueTicket(ctx, detail)

	if nerr := s.notifier.PaymentSucceeded(ctx, detail); nerr != nil {
		s.log.Warn("payment success notification failed",
			zap.String("booking_id", bookingID), zap.Error(nerr))
	}

	return &model.PaymentResult{
		Success:          true,
		Message:          outcome.Message,
		BookingReference: detail.BookingReference,
		PaymentReference: paymentReference,
		PaymentStatus:    model.PaymentPaid,
	}, nil
}

// issueTicket generates and records the artifact. Failures are logged,
// not surfaced: the payment has already committed and the artifact can be
// regenerated by support.
func (s *BookingService) issueTicket(ctx context.Context, detail *model.BookingDetail) {
	if detail.QRCode != nil {
		return
	}
	artifact, err := s.tickets.Issue(detail)
	if err != nil {
		s.log.Error("ticket generation failed",
			zap.String("booking_id", detail.ID), zap.Error(err))
		return
	}
	wrote, err := s.bookings.SetTicketArtifact(ctx, detail.ID, artifact)
	if err != nil {
		s.log.Error("ticket artifact record failed",
			zap.String("booking_id", detail.ID), zap.Error(err))
		return
	}
	if wrote {
		detail.QRCode = &artifact
		monitoring.TrackTicketIssued()
	}
}
