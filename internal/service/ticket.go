package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aisummit/event-booking/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// TicketIssuer generates the proof-of-purchase artifact created when a
// booking transitions to paid: a scannable QR code image named after the
// booking reference.
type TicketIssuer struct {
	dir string
}

// NewTicketIssuer constructs a TicketIssuer writing artifacts under dir.
func NewTicketIssuer(dir string) *TicketIssuer {
	return &TicketIssuer{dir: dir}
}

// Issue renders the QR artifact for a paid booking and returns its opaque
// identifier (the stored filename). The encoded payload carries the
// support-lookup fields: reference, event title, and seat count.
func (t *TicketIssuer) Issue(booking *model.BookingDetail) (string, error) {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create ticket dir: %w", err)
	}

	payload := fmt.Sprintf("Booking: %s | Event: %s | Seats: %d",
		booking.BookingReference, booking.EventTitle, booking.SeatsBooked)
	filename := "qr_" + booking.BookingReference + ".png"

	if err := qrcode.WriteFile(payload, qrcode.Medium, 256, filepath.Join(t.dir, filename)); err != nil {
		return "", fmt.Errorf("write qr code: %w", err)
	}
	return filename, nil
}
