// Package model defines the core domain types for the event booking system.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event statuses.
const (
	EventActive   = "active"
	EventInactive = "inactive"
)

// Booking payment statuses. Paid is terminal; failed bookings may be
// re-attempted.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Seat count bounds for a single booking.
const (
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 10
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Event represents a bookable event created by an organizer.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Venue       string          `json:"venue"`
	Capacity    int             `json:"capacity"`
	Price       decimal.Decimal `json:"price"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`

	// BookedSeats and AvailableSeats are derived from paid bookings by
	// aggregation, never stored.
	BookedSeats    int `json:"booked_seats"`
	AvailableSeats int `json:"available_seats"`
}

// Booking represents a seat reservation against an event.
// TotalAmount is fixed at creation time and never recomputed, even if the
// event price later changes.
type Booking struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	EventID          string          `json:"event_id"`
	BookingReference string          `json:"booking_reference"`
	SeatsBooked      int             `json:"seats_booked"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentStatus    string          `json:"payment_status"`
	PaymentReference *string         `json:"payment_reference,omitempty"`
	QRCode           *string         `json:"qr_code,omitempty"`
	BookingDate      time.Time       `json:"booking_date"`
}

// BookingDetail is a booking joined with event and user context, used by
// the payment step, support lookups, and listings.
type BookingDetail struct {
	Booking
	EventTitle string    `json:"event_title"`
	Venue      string    `json:"venue"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
}

// User is the actor owning bookings.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FullName          string    `json:"full_name"`
	Phone             string    `json:"phone,omitempty"`
	Role              string    `json:"role"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// AuthContext is the request-scoped identity attached by the auth
// middleware. Handlers read it explicitly instead of consulting any
// ambient session state.
type AuthContext struct {
	UserID   string
	Role     string
	Verified bool
}

// IsAdmin reports whether the authenticated caller holds the admin role.
func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

// Availability is the admit/reject decision for a seat request.
type Availability struct {
	Available      bool   `json:"available"`
	AvailableSeats int    `json:"available_seats"`
	Reason         string `json:"reason,omitempty"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Venue       string          `json:"venue"`
	Capacity    int             `json:"capacity"`
	Price       decimal.Decimal `json:"price"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
}

// CreateBookingRequest is the payload for reserving seats.
type CreateBookingRequest struct {
	Seats int `json:"seats"`
}

// BookingResult summarises a successful reservation.
type BookingResult struct {
	BookingID        string          `json:"booking_id"`
	BookingReference string          `json:"booking_reference"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
}

// PaymentRequest is the card form submitted at the payment step.
type PaymentRequest struct {
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// PaymentResult reports the applied payment outcome for a booking.
type PaymentResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	BookingReference string `json:"booking_reference,omitempty"`
	PaymentReference string `json:"payment_reference,omitempty"`
	PaymentStatus    string `json:"payment_status"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BookingStats are the admin dashboard aggregates derived from bookings.
type BookingStats struct {
	TotalBookings   int             `json:"total_bookings"`
	PaidBookings    int             `json:"paid_bookings"`
	PendingBookings int             `json:"pending_bookings"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalSeatsSold  int             `json:"total_seats_sold"`
}

// EventStats are the admin dashboard aggregates derived from events.
type EventStats struct {
	TotalEvents    int `json:"total_events"`
	ActiveEvents   int `json:"active_events"`
	UpcomingEvents int `json:"upcoming_events"`
	TotalCapacity  int `json:"total_capacity"`
}

// UserStats are the admin dashboard aggregates derived from users.
type UserStats struct {
	TotalUsers    int `json:"total_users"`
	VerifiedUsers int `json:"verified_users"`
}

// MonthlyRevenue is one bucket of the month-bucketed revenue series.
type MonthlyRevenue struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
}

// BookingFilter narrows the admin booking listing.
type BookingFilter struct {
	EventID       string
	PaymentStatus string
	Search        string
	Limit         int
	Offset        int
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
