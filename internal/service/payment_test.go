package service_test

import (
	"testing"

	"github.com/aisummit/event-booking/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedDraw pins the simulator's single draw so each outcome bucket can be
// exercised deterministically. Charge computes draw = Intn(100)+1.
type fixedDraw struct{ draw int }

func (f fixedDraw) Intn(n int) int { return f.draw - 1 }

func TestChargeTestCards(t *testing.T) {
	sim := service.NewPaymentSimulator(fixedDraw{draw: 100})
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		card     string
		approved bool
		code     string
	}{
		{"always approved", "4111111111111111", true, service.OutcomeApproved},
		{"always declined", "4000000000000002", false, service.OutcomeDeclined},
		{"processing error", "4000000000000119", false, service.OutcomeProcessingError},
		{"incorrect cvc", "4000000000000127", false, service.OutcomeIncorrectCVC},
		{"expired card", "4000000000000069", false, service.OutcomeExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := sim.Charge(tt.card, amount)
			assert.Equal(t, tt.approved, outcome.Approved)
			assert.Equal(t, tt.code, outcome.Code)
			assert.NotEmpty(t, outcome.Message)
		})
	}
}

func TestChargeStripsSpaces(t *testing.T) {
	sim := service.NewPaymentSimulator(fixedDraw{draw: 100})

	outcome := sim.Charge("4111 1111 1111 1111", decimal.NewFromInt(50))
	require.True(t, outcome.Approved)
	assert.Equal(t, service.OutcomeApproved, outcome.Code)
}

func TestChargeWeightedBuckets(t *testing.T) {
	amount := decimal.NewFromInt(250)

	tests := []struct {
		name     string
		draw     int
		approved bool
		code     string
	}{
		{"low edge approved", 1, true, service.OutcomeApproved},
		{"high edge approved", 80, true, service.OutcomeApproved},
		{"low edge declined", 81, false, service.OutcomeDeclined},
		{"high edge declined", 90, false, service.OutcomeDeclined},
		{"low edge insufficient funds", 91, false, service.OutcomeInsufficientFunds},
		{"high edge insufficient funds", 95, false, service.OutcomeInsufficientFunds},
		{"low edge processing error", 96, false, service.OutcomeProcessingError},
		{"high edge processing error", 100, false, service.OutcomeProcessingError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := service.NewPaymentSimulator(fixedDraw{draw: tt.draw})
			outcome := sim.Charge("5555555555554444", amount)
			assert.Equal(t, tt.approved, outcome.Approved)
			assert.Equal(t, tt.code, outcome.Code)
		})
	}
}

func TestChargeNilSourceDefaults(t *testing.T) {
	sim := service.NewPaymentSimulator(nil)

	// With a real random source the outcome must still be one of the four
	// weighted buckets.
	outcome := sim.Charge("5105105105105100", decimal.NewFromInt(10))
	assert.Contains(t, []string{
		service.OutcomeApproved,
		service.OutcomeDeclined,
		service.OutcomeInsufficientFunds,
		service.OutcomeProcessingError,
	}, outcome.Code)
}
