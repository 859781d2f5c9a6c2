package service

import (
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome codes returned by the payment simulator.
const (
	OutcomeApproved          = "approved"
	OutcomeDeclined          = "declined"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeProcessingError   = "processing_error"
	OutcomeIncorrectCVC      = "incorrect_cvc"
	OutcomeExpired           = "expired"
)

// Outcome is the result of a simulated charge.
type Outcome struct {
	Approved bool
	Code     string
	Message  string
}

// RandomSource supplies the single draw behind non-deterministic outcomes.
// *math/rand.Rand satisfies it; tests substitute a fixed source to pin an
// outcome bucket.
type RandomSource interface {
	Intn(n int) int
}

// testCards maps well-known test instrument numbers to forced outcomes,
// for reproducible demo and test flows.
var testCards = map[string]Outcome{
	"4111111111111111": {Approved: true, Code: OutcomeApproved, Message: "Payment successful"},
	"4000000000000002": {Approved: false, Code: OutcomeDeclined, Message: "Card declined"},
	"4000000000000119": {Approved: false, Code: OutcomeProcessingError, Message: "Processing error"},
	"4000000000000127": {Approved: false, Code: OutcomeIncorrectCVC, Message: "Incorrect CVC"},
	"4000000000000069": {Approved: false, Code: OutcomeExpired, Message: "Card expired"},
}

// PaymentSimulator stands in for an external payment gateway. It is a pure
// function of the card number and the injected random source: no side
// effects, no network calls, no retries (retry policy belongs to the
// caller).
type PaymentSimulator struct {
	rng RandomSource
}

// NewPaymentSimulator constructs a simulator. A nil source falls back to a
// time-seeded generator.
func NewPaymentSimulator(rng RandomSource) *PaymentSimulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PaymentSimulator{rng: rng}
}

// Charge evaluates a payment instrument for the given amount. Known test
// cards return their forced outcome; any other card takes a single
// weighted draw: 80% approved, 10% issuer decline, 5% insufficient funds,
// 5% processing error.
func (s *PaymentSimulator) Charge(cardNumber string, amount decimal.Decimal) Outcome {
	cardNumber = strings.ReplaceAll(cardNumber, " ", "")

	if outcome, ok := testCards[cardNumber]; ok {
		return outcome
	}

	draw := s.rng.Intn(100) + 1
	switch {
	case draw <= 80:
		return Outcome{Approved: true, Code: OutcomeApproved, Message: "Payment successful"}
	case draw <= 90:
		return Outcome{Approved: false, Code: OutcomeDeclined, Message: "Card declined by issuer"}
	case draw <= 95:
		return Outcome{Approved: false, Code: OutcomeInsufficientFunds, Message: "Insufficient funds"}
	default:
		return Outcome{Approved: false, Code: OutcomeProcessingError, Message: "Payment processing error"}
	}
}
