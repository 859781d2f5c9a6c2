package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketIssuerWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	issuer := service.NewTicketIssuer(dir)

	booking := &model.BookingDetail{
		Booking: model.Booking{
			BookingReference: "AIC2505117F2A",
			SeatsBooked:      2,
		},
		EventTitle: "AI Summit 2025",
	}

	filename, err := issuer.Issue(booking)
	require.NoError(t, err)

	assert.Equal(t, "qr_AIC2505117F2A.png", filename)

	info, err := os.Stat(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestTicketIssuerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "qr")
	issuer := service.NewTicketIssuer(dir)

	booking := &model.BookingDetail{
		Booking: model.Booking{BookingReference: "AIC250511AAAA", SeatsBooked: 1},
		EventTitle: "Workshop",
	}

	_, err := issuer.Issue(booking)
	require.NoError(t, err)

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
