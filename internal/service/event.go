// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/repository"
)

// EventStore is the persistence surface the event service depends on.
// *repository.EventRepository satisfies it.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Stats(ctx context.Context) (*model.EventStats, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	events EventStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if req.Capacity < 0 {
		return nil, fmt.Errorf("capacity cannot be negative")
	}
	if req.Capacity > 100_000 {
		return nil, fmt.Errorf("capacity cannot exceed 100,000")
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("end date cannot precede start date")
	}
	return s.events.Create(ctx, req)
}

// ListEvents returns all events with derived availability.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// CheckAvailability computes the admit/reject decision for a seat request.
// The remaining count is derived live from paid bookings; the 1..10 seat
// bound is the caller's responsibility, enforced before invocation.
func (s *EventService) CheckAvailability(ctx context.Context, eventID string, requestedSeats int) (*model.Availability, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("check availability: %w", err)
	}

	if event.AvailableSeats >= requestedSeats {
		return &model.Availability{Available: true, AvailableSeats: event.AvailableSeats}, nil
	}
	return &model.Availability{
		Available:      false,
		AvailableSeats: event.AvailableSeats,
		Reason:         "not enough seats available",
	}, nil
}
