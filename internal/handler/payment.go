package handler

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/aisummit/event-booking/internal/service"
	"github.com/go-chi/chi/v5"
)

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	expiryMMYY = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
)

// PaymentHandler holds the HTTP handlers for the payment step.
type PaymentHandler struct {
	svc *service.BookingService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(svc *service.BookingService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// Pay handles POST /bookings/{id}/payment
// The card form is shape-validated here; the simulated charge and the
// status transition happen in the service layer. A failed charge leaves
// the booking re-attemptable.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	var req model.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validatePaymentRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Pay(r.Context(), bookingID, authFrom(r), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, repository.ErrAlreadyPaid):
			writeError(w, http.StatusConflict, "booking is already paid")
		default:
			writeError(w, http.StatusInternalServerError, "payment failed, no charge was made")
		}
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, result)
}

// validatePaymentRequest checks the card form's shape before it reaches
// the simulator: 13-19 digit number, MM/YY expiry, 3-4 digit cvv,
// non-empty holder name.
func validatePaymentRequest(req *model.PaymentRequest) error {
	req.CardNumber = strings.ReplaceAll(req.CardNumber, " ", "")
	req.CardholderName = strings.TrimSpace(req.CardholderName)

	if req.CardNumber == "" || req.Expiry == "" || req.CVV == "" || req.CardholderName == "" {
		return fmt.Errorf("please fill in all payment details")
	}
	if len(req.CardNumber) < 13 || len(req.CardNumber) > 19 || !digitsOnly.MatchString(req.CardNumber) {
		return fmt.Errorf("invalid card number")
	}
	if !expiryMMYY.MatchString(req.Expiry) {
		return fmt.Errorf("invalid expiry date, expected MM/YY")
	}
	if len(req.CVV) < 3 || len(req.CVV) > 4 || !digitsOnly.MatchString(req.CVV) {
		return fmt.Errorf("invalid CVV")
	}
	return nil
}
