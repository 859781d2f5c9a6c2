package service_test

import (
	"context"
	"testing"

	"github.com/aisummit/event-booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardAggregates(t *testing.T) {
	bookings := newFakeBookingStore()
	events := newFakeEventStore()
	users := newFakeUserStore()
	svc := service.NewAdminService(bookings, events, users)

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.NotNil(t, stats.Bookings)
	require.NotNil(t, stats.Events)
	require.NotNil(t, stats.Users)
	assert.Equal(t, 0, stats.Bookings.TotalBookings)
}

func TestRevenueWindowClamping(t *testing.T) {
	bookings := newFakeBookingStore()
	svc := service.NewAdminService(bookings, newFakeEventStore(), newFakeUserStore())
	ctx := context.Background()

	tests := []struct {
		requested int
		applied   int
	}{
		{-3, 6},
		{0, 6},
		{6, 6},
		{12, 12},
		{24, 24},
		{500, 24},
	}
	for _, tt := range tests {
		series, err := svc.RevenueByMonth(ctx, tt.requested)
		require.NoError(t, err)
		require.Len(t, series, 1)
		assert.Equal(t, tt.applied, bookings.revenueMonths, "requested %d months", tt.requested)
	}
}
