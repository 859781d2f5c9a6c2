package service_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/aisummit/event-booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingReferenceFormat(t *testing.T) {
	now := time.Date(2025, 5, 11, 14, 30, 0, 0, time.UTC)

	ref := service.BookingReference(now)

	assert.Len(t, ref, 13)
	assert.Regexp(t, regexp.MustCompile(`^AIC250511[0-9A-F]{4}$`), ref)
}

func TestBookingReferenceDateStamp(t *testing.T) {
	newYear := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	ref := service.BookingReference(newYear)

	assert.Equal(t, "AIC260102", ref[:9])
}

func TestPaymentReferenceFormat(t *testing.T) {
	ref, err := service.PaymentReference()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^PAY_[0-9A-F]{16}$`), ref)
}

func TestPaymentReferenceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := service.PaymentReference()
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
