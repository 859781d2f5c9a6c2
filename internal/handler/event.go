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

// EventHandler holds the HTTP handlers for the event surface.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEvent handles POST /events (admin).
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.svc.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// CheckAvailability handles GET /events/{id}/availability?seats=N
func (h *EventHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	seats, err := strconv.Atoi(r.URL.Query().Get("seats"))
	if err != nil || seats < model.MinSeatsPerBooking || seats > model.MaxSeatsPerBooking {
		writeError(w, http.StatusBadRequest, "seats must be an integer between 1 and 10")
		return
	}

	availability, err := h.svc.CheckAvailability(r.Context(), id, seats)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check availability")
		return
	}

	writeJSON(w, http.StatusOK, availability)
}
