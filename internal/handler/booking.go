package handler

import (
	"errors"
	"net/http"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/aisummit/event-booking/internal/service"
	"github.com/go-chi/chi/v5"
)

// BookingHandler holds the HTTP handlers for the booking surface.
type BookingHandler struct {
	svc *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// CreateBooking handles POST /events/{id}/bookings
// Reserves seats for the authenticated user; the availability check and
// insert run atomically in the service/repository layers.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	auth := authFrom(r)

	var req model.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.CreateBooking(r.Context(), auth.UserID, eventID, req.Seats)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, repository.ErrNotEnoughSeats):
			writeError(w, http.StatusConflict, "not enough seats available")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// ListBookings handles GET /bookings, the caller's own booking history.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)

	bookings, err := h.svc.ListUserBookings(r.Context(), auth.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetBooking handles GET /bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	booking, err := h.svc.GetBooking(r.Context(), id, authFrom(r))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

// CancelBooking handles DELETE /bookings/{id}
// Only pending bookings may be cancelled; paid bookings go through the
// refund support channel.
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	auth := authFrom(r)

	ownerID := auth.UserID
	if auth.IsAdmin() {
		ownerID = "" // admins may cancel any pending booking
	}

	err := h.svc.Cancel(r.Context(), id, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found or access denied")
		case errors.Is(err, repository.ErrAlreadyPaid):
			writeError(w, http.StatusConflict, "cannot cancel a paid booking, please contact support for a refund")
		case errors.Is(err, repository.ErrNotPending):
			writeError(w, http.StatusConflict, "only pending bookings can be cancelled")
		default:
			writeError(w, http.StatusInternalServerError, "failed to cancel booking")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "booking cancelled successfully"})
}
