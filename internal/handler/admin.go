package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/aisummit/event-booking/internal/service"
	"github.com/go-chi/chi/v5"
)

// AdminHandler holds the read-only statistics and support-lookup surface.
type AdminHandler struct {
	admin    *service.AdminService
	bookings *service.BookingService
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin *service.AdminService, bookings *service.BookingService) *AdminHandler {
	return &AdminHandler{admin: admin, bookings: bookings}
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Revenue handles GET /admin/revenue?months=N
func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	months, _ := strconv.Atoi(r.URL.Query().Get("months"))

	series, err := h.admin.RevenueByMonth(r.Context(), months)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load revenue series")
		return
	}
	if series == nil {
		series = []model.MonthlyRevenue{}
	}
	writeJSON(w, http.StatusOK, series)
}

// ListBookings handles GET /admin/bookings with optional filters.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	filter := model.BookingFilter{
		EventID:       q.Get("event_id"),
		PaymentStatus: q.Get("payment_status"),
		Search:        q.Get("search"),
		Limit:         limit,
		Offset:        offset,
	}

	bookings, err := h.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []model.BookingDetail{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// GetBookingByReference handles GET /admin/bookings/ref/{reference},
// the support lookup by the customer-facing reference code.
func (h *AdminHandler) GetBookingByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	booking, err := h.bookings.GetBookingByReference(r.Context(), reference)
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
