package service_test

import (
	"context"
	"testing"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/aisummit/event-booking/internal/repository"
	"github.com/aisummit/event-booking/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBookingStore is an in-memory BookingStore. Error fields force the
// repository sentinels a real transaction would produce.
type fakeBookingStore struct {
	details map[string]*model.BookingDetail
	price   decimal.Decimal
	nextID  string

	createErr   error
	markPaidErr error
	cancelErr   error

	failedCalls   int
	artifactCalls int
	revenueMonths int
	lastArtifact  string
	cancelledID   string
	cancelOwner   string
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{
		details: make(map[string]*model.BookingDetail),
		price:   decimal.NewFromInt(100),
		nextID:  "bk-1",
	}
}

func (f *fakeBookingStore) Create(_ context.Context, userID, eventID, reference string, seats int) (*model.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	booking := model.Booking{
		ID:               f.nextID,
		UserID:           userID,
		EventID:          eventID,
		BookingReference: reference,
		SeatsBooked:      seats,
		TotalAmount:      f.price.Mul(decimal.NewFromInt(int64(seats))),
		PaymentStatus:    model.PaymentPending,
	}
	f.details[booking.ID] = &model.BookingDetail{
		Booking:    booking,
		EventTitle: "AI Summit 2025",
		UserEmail:  "alice@example.com",
	}
	return &booking, nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*model.BookingDetail, error) {
	detail, ok := f.details[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return detail, nil
}

func (f *fakeBookingStore) GetByReference(_ context.Context, reference string) (*model.BookingDetail, error) {
	for _, d := range f.details {
		if d.BookingReference == reference {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookingStore) ListByUser(_ context.Context, userID string) ([]model.BookingDetail, error) {
	var out []model.BookingDetail
	for _, d := range f.details {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListAll(_ context.Context, _ model.BookingFilter) ([]model.BookingDetail, error) {
	var out []model.BookingDetail
	for _, d := range f.details {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeBookingStore) CancelPending(_ context.Context, bookingID, ownerUserID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelledID = bookingID
	f.cancelOwner = ownerUserID
	delete(f.details, bookingID)
	return nil
}

func (f *fakeBookingStore) MarkPaid(_ context.Context, bookingID, paymentReference string) error {
	detail, ok := f.details[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	if f.markPaidErr != nil {
		if f.markPaidErr == repository.ErrNotEnoughSeats {
			detail.PaymentStatus = model.PaymentFailed
		}
		return f.markPaidErr
	}
	if detail.PaymentStatus == model.PaymentPaid {
		return repository.ErrAlreadyPaid
	}
	detail.PaymentStatus = model.PaymentPaid
	detail.PaymentReference = &paymentReference
	return nil
}

func (f *fakeBookingStore) MarkFailed(_ context.Context, bookingID string) error {
	detail, ok := f.details[bookingID]
	if !ok {
		return repository.ErrNotFound
	}
	if detail.PaymentStatus == model.PaymentPaid {
		return repository.ErrAlreadyPaid
	}
	detail.PaymentStatus = model.PaymentFailed
	f.failedCalls++
	return nil
}

func (f *fakeBookingStore) SetTicketArtifact(_ context.Context, bookingID, artifact string) (bool, error) {
	detail, ok := f.details[bookingID]
	if !ok {
		return false, repository.ErrNotFound
	}
	if detail.PaymentStatus != model.PaymentPaid || detail.QRCode != nil {
		return false, nil
	}
	f.artifactCalls++
	f.lastArtifact = artifact
	detail.QRCode = &artifact
	return true, nil
}

func (f *fakeBookingStore) Stats(_ context.Context) (*model.BookingStats, error) {
	return &model.BookingStats{TotalBookings: len(f.details)}, nil
}

func (f *fakeBookingStore) RevenueByMonth(_ context.Context, months int) ([]model.MonthlyRevenue, error) {
	f.revenueMonths = months
	return []model.MonthlyRevenue{{Month: "2025-05", Revenue: decimal.NewFromInt(1000)}}, nil
}

// fakeCharger returns a preset outcome and records the charge.
type fakeCharger struct {
	outcome service.Outcome
	calls   int
	card    string
	amount  decimal.Decimal
}

func (f *fakeCharger) Charge(cardNumber string, amount decimal.Decimal) service.Outcome {
	f.calls++
	f.card = cardNumber
	f.amount = amount
	return f.outcome
}

// fakeTickets counts issued artifacts, optionally failing.
type fakeTickets struct {
	issued int
	err    error
}

func (f *fakeTickets) Issue(booking *model.BookingDetail) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.issued++
	return "qr_" + booking.BookingReference + ".png", nil
}

// fakeNotifier counts delivered signals.
type fakeNotifier struct {
	confirmed int
	paid      int
	verify    int
}

func (f *fakeNotifier) BookingConfirmed(context.Context, *model.BookingDetail) error {
	f.confirmed++
	return nil
}

func (f *fakeNotifier) PaymentSucceeded(context.Context, *model.BookingDetail) error {
	f.paid++
	return nil
}

func (f *fakeNotifier) VerificationRequested(context.Context, string, string, string) error {
	f.verify++
	return nil
}

type bookingFixture struct {
	store    *fakeBookingStore
	charger  *fakeCharger
	tickets  *fakeTickets
	notifier *fakeNotifier
	svc      *service.BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		store:    newFakeBookingStore(),
		charger:  &fakeCharger{},
		tickets:  &fakeTickets{},
		notifier: &fakeNotifier{},
	}
	f.svc = service.NewBookingService(f.store, f.tickets, f.charger, f.notifier, zap.NewNop())
	return f
}

func approvedOutcome() service.Outcome {
	return service.Outcome{Approved: true, Code: service.OutcomeApproved, Message: "Payment successful"}
}

func declinedOutcome() service.Outcome {
	return service.Outcome{Approved: false, Code: service.OutcomeDeclined, Message: "Card declined"}
}

func TestCreateBookingSeatBounds(t *testing.T) {
	f := newBookingFixture()
	ctx := context.Background()

	for _, seats := range []int{0, -1, 11, 100} {
		_, err := f.svc.CreateBooking(ctx, "u1", "e1", seats)
		assert.Error(t, err, "seats=%d", seats)
	}
	assert.Empty(t, f.store.details, "rejected requests must not create rows")
}

func TestCreateBookingSuccess(t *testing.T) {
	f := newBookingFixture()

	result, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 10)
	require.NoError(t, err)

	assert.Regexp(t, `^AIC\d{6}[0-9A-F]{4}$`, result.BookingReference)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(1000)),
		"10 seats at 100 each, got %s", result.TotalAmount)
	assert.Equal(t, 1, f.notifier.confirmed)

	detail := f.store.details[result.BookingID]
	require.NotNil(t, detail)
	assert.Equal(t, model.PaymentPending, detail.PaymentStatus)
}

func TestCreateBookingSoldOut(t *testing.T) {
	f := newBookingFixture()
	f.store.createErr = repository.ErrNotEnoughSeats

	_, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 2)

	assert.ErrorIs(t, err, repository.ErrNotEnoughSeats)
	assert.Equal(t, 0, f.notifier.confirmed)
}

func TestCreateBookingEventNotFound(t *testing.T) {
	f := newBookingFixture()
	f.store.createErr = repository.ErrNotFound

	_, err := f.svc.CreateBooking(context.Background(), "u1", "missing", 2)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetBookingVisibility(t *testing.T) {
	f := newBookingFixture()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 1)
	require.NoError(t, err)

	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}
	stranger := model.AuthContext{UserID: "u2", Role: model.RoleUser}
	admin := model.AuthContext{UserID: "u9", Role: model.RoleAdmin}

	_, err = f.svc.GetBooking(context.Background(), created.BookingID, owner)
	assert.NoError(t, err)

	_, err = f.svc.GetBooking(context.Background(), created.BookingID, stranger)
	assert.ErrorIs(t, err, repository.ErrNotFound, "other users must not see the booking")

	_, err = f.svc.GetBooking(context.Background(), created.BookingID, admin)
	assert.NoError(t, err)
}

func TestPayApprovedMarksPaid(t *testing.T) {
	f := newBookingFixture()
	f.charger.outcome = approvedOutcome()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 3)
	require.NoError(t, err)

	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}
	card := model.PaymentRequest{CardNumber: "4111111111111111"}

	result, err := f.svc.Pay(context.Background(), created.BookingID, owner, card)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.PaymentPaid, result.PaymentStatus)
	assert.Regexp(t, `^PAY_[0-9A-F]{16}$`, result.PaymentReference)
	assert.Equal(t, created.BookingReference, result.BookingReference)

	detail := f.store.details[created.BookingID]
	assert.Equal(t, model.PaymentPaid, detail.PaymentStatus)
	require.NotNil(t, detail.PaymentReference)
	assert.Equal(t, 1, f.tickets.issued)
	assert.Equal(t, 1, f.notifier.paid)
	assert.True(t, f.charger.amount.Equal(decimal.NewFromInt(300)),
		"charged amount must be the stored total, got %s", f.charger.amount)
}

func TestPayDeclinedMarksFailed(t *testing.T) {
	f := newBookingFixture()
	f.charger.outcome = declinedOutcome()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 2)
	require.NoError(t, err)

	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}

	result, err := f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{CardNumber: "4000000000000002"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, model.PaymentFailed, result.PaymentStatus)
	assert.Empty(t, result.PaymentReference)

	detail := f.store.details[created.BookingID]
	assert.Equal(t, model.PaymentFailed, detail.PaymentStatus)
	assert.Nil(t, detail.PaymentReference, "a declined charge must not persist a payment reference")
	assert.Equal(t, 0, f.tickets.issued)
	assert.Equal(t, 0, f.notifier.paid)
}

func TestPayRetryAfterFailure(t *testing.T) {
	f := newBookingFixture()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 2)
	require.NoError(t, err)
	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}

	f.charger.outcome = declinedOutcome()
	result, err := f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})
	require.NoError(t, err)
	require.False(t, result.Success)

	f.charger.outcome = approvedOutcome()
	result, err = f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.PaymentPaid, f.store.details[created.BookingID].PaymentStatus)
	assert.Equal(t, 1, f.tickets.issued, "exactly one ticket across the whole retry sequence")
}

func TestPayAlreadyPaidRejected(t *testing.T) {
	f := newBookingFixture()
	f.charger.outcome = approvedOutcome()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 1)
	require.NoError(t, err)
	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}

	_, err = f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})
	require.NoError(t, err)
	chargesSoFar := f.charger.calls

	_, err = f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})

	assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
	assert.Equal(t, chargesSoFar, f.charger.calls, "a paid booking must never be charged again")
	assert.Equal(t, 1, f.tickets.issued)
}

func TestPaySoldOutAtPaymentTime(t *testing.T) {
	f := newBookingFixture()
	f.charger.outcome = approvedOutcome()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 5)
	require.NoError(t, err)

	// Capacity was consumed by other paid bookings while this one was
	// pending; the paid transition reports the shortfall.
	f.store.markPaidErr = repository.ErrNotEnoughSeats
	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}

	result, err := f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, model.PaymentFailed, result.PaymentStatus)
	assert.Contains(t, result.Message, "no longer available")
	assert.Equal(t, model.PaymentFailed, f.store.details[created.BookingID].PaymentStatus)
	assert.Equal(t, 0, f.tickets.issued)
}

func TestPayTicketFailureDoesNotFailPayment(t *testing.T) {
	f := newBookingFixture()
	f.charger.outcome = approvedOutcome()
	f.tickets.err = assert.AnError
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 1)
	require.NoError(t, err)
	owner := model.AuthContext{UserID: "u1", Role: model.RoleUser}

	result, err := f.svc.Pay(context.Background(), created.BookingID, owner, model.PaymentRequest{})
	require.NoError(t, err)

	assert.True(t, result.Success, "the committed payment survives an artifact failure")
	assert.Equal(t, model.PaymentPaid, f.store.details[created.BookingID].PaymentStatus)
	assert.Nil(t, f.store.details[created.BookingID].QRCode)
}

func TestPayStrangerSeesNotFound(t *testing.T) {
	f := newBookingFixture()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 1)
	require.NoError(t, err)

	stranger := model.AuthContext{UserID: "u2", Role: model.RoleUser}

	_, err = f.svc.Pay(context.Background(), created.BookingID, stranger, model.PaymentRequest{})

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 0, f.charger.calls)
}

func TestCancelPassesOwnerThrough(t *testing.T) {
	f := newBookingFixture()
	created, err := f.svc.CreateBooking(context.Background(), "u1", "e1", 1)
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(context.Background(), created.BookingID, "u1"))

	assert.Equal(t, created.BookingID, f.store.cancelledID)
	assert.Equal(t, "u1", f.store.cancelOwner)
	assert.Empty(t, f.store.details)
}

func TestCancelPaidRejected(t *testing.T) {
	f := newBookingFixture()
	f.store.cancelErr = repository.ErrAlreadyPaid

	err := f.svc.Cancel(context.Background(), "bk-1", "u1")

	assert.ErrorIs(t, err, repository.ErrAlreadyPaid)
}
