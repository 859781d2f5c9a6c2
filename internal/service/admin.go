package service

import (
	"context"
	"fmt"

	"github.com/aisummit/event-booking/internal/model"
)

// DashboardStats bundles the read-only aggregates for the admin dashboard.
type DashboardStats struct {
	Bookings *model.BookingStats `json:"bookings"`
	Events   *model.EventStats   `json:"events"`
	Users    *model.UserStats    `json:"users"`
}

// AdminService serves the statistics surface, derived entirely from
// existing rows.
type AdminService struct {
	bookings BookingStore
	events   EventStore
	users    UserStore
}

// NewAdminService constructs an AdminService with its dependencies.
func NewAdminService(bookings BookingStore, events EventStore, users UserStore) *AdminService {
	return &AdminService{bookings: bookings, events: events, users: users}
}

// Dashboard returns the aggregate counters shown on the admin landing page.
func (s *AdminService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	bookingStats, err := s.bookings.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	eventStats, err := s.events.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	userStats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &DashboardStats{Bookings: bookingStats, Events: eventStats, Users: userStats}, nil
}

// RevenueByMonth returns the month-bucketed paid revenue series.
// The window defaults to six months and is capped at two years.
func (s *AdminService) RevenueByMonth(ctx context.Context, months int) ([]model.MonthlyRevenue, error) {
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}
	return s.bookings.RevenueByMonth(ctx, months)
}
