package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// bookingDetailColumns joins a booking with its event and user context.
const bookingDetailColumns = `
	SELECT b.id, b.user_id, b.event_id, b.booking_reference, b.seats_booked,
	       b.total_amount, b.payment_status, b.payment_reference, b.qr_code,
	       b.booking_date,
	       e.title, e.venue, e.start_date, e.end_date,
	       u.full_name, u.email
	  FROM bookings b
	  JOIN events e ON b.event_id = e.id
	  JOIN users u ON b.user_id = u.id`

// BookingRepository owns all persistence for bookings, including the
// transactional seat-allocation path.
type BookingRepository struct {
	db *pgxpool.Pool
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create performs a concurrency-safe reservation inside a single
// transaction. The event row is locked with SELECT ... FOR UPDATE so that
// concurrent attempts against the same event are serialised; the paid seat
// sum is then recomputed inside the same transaction before the pending
// row is inserted. On any error the transaction rolls back in full and no
// partial booking is ever visible.
func (r *BookingRepository) Create(ctx context.Context, userID, eventID, reference string, seats int) (*model.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Exclusive row-level lock on the event. Blocks other booking
	// transactions for this event until commit or rollback.
	var capacity int
	var price decimal.Decimal
	var eventStatus string
	err = tx.QueryRow(ctx,
		`SELECT capacity, price, status FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &price, &eventStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}
	if eventStatus != model.EventActive {
		err = ErrNotFound
		return nil, err
	}

	var paidSeats int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(seats_booked), 0)::int
		   FROM bookings
		  WHERE event_id = $1 AND payment_status = 'paid'`,
		eventID,
	).Scan(&paidSeats)
	if err != nil {
		return nil, fmt.Errorf("sum paid seats: %w", err)
	}

	if capacity-paidSeats < seats {
		err = ErrNotEnoughSeats
		return nil, err
	}

	booking := &model.Booking{
		ID:               uuid.New().String(),
		UserID:           userID,
		EventID:          eventID,
		BookingReference: reference,
		SeatsBooked:      seats,
		TotalAmount:      price.Mul(decimal.NewFromInt(int64(seats))),
		PaymentStatus:    model.PaymentPending,
		BookingDate:      time.Now().UTC(),
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, user_id, event_id, booking_reference, seats_booked, total_amount, payment_status, booking_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		booking.ID, booking.UserID, booking.EventID, booking.BookingReference,
		booking.SeatsBooked, booking.TotalAmount, booking.PaymentStatus, booking.BookingDate,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = ErrDuplicate
			return nil, err
		}
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return booking, nil
}

// GetByID returns a booking with event and user detail, or ErrNotFound.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*model.BookingDetail, error) {
	row := r.db.QueryRow(ctx, bookingDetailColumns+` WHERE b.id = $1`, id)
	return scanBookingDetail(row)
}

// GetByReference looks a booking up by its human-readable reference code,
// the identifier customers quote to support.
func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*model.BookingDetail, error) {
	row := r.db.QueryRow(ctx, bookingDetailColumns+` WHERE b.booking_reference = $1`, reference)
	return scanBookingDetail(row)
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	rows, err := r.db.Query(ctx,
		bookingDetailColumns+` WHERE b.user_id = $1 ORDER BY b.booking_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return collectBookingDetails(rows)
}

// ListAll returns bookings for the admin listing, filtered and paginated.
func (r *BookingRepository) ListAll(ctx context.Context, filter model.BookingFilter) ([]model.BookingDetail, error) {
	sql := bookingDetailColumns
	var args []any
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
		} else {
			where += " AND " + cond
		}
	}

	if filter.EventID != "" {
		args = append(args, filter.EventID)
		and("b.event_id = $" + strconv.Itoa(len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		and("b.payment_status = $" + strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := strconv.Itoa(len(args))
		and("(b.booking_reference ILIKE $" + n + " OR u.full_name ILIKE $" + n + " OR u.email ILIKE $" + n + ")")
	}

	sql += where + " ORDER BY b.booking_date DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += " LIMIT $" + strconv.Itoa(len(args))
		if filter.Offset > 0 {
			args = append(args, filter.Offset)
			sql += " OFFSET $" + strconv.Itoa(len(args))
		}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list all bookings: %w", err)
	}
	defer rows.Close()
	return collectBookingDetails(rows)
}

// CancelPending deletes a booking, permitted only while it is pending.
// When ownerUserID is non-empty the booking must belong to that user;
// a mismatch reads as ErrNotFound so callers cannot probe other users'
// bookings. Paid bookings are never deletable through this path.
func (r *BookingRepository) CancelPending(ctx context.Context, bookingID, ownerUserID string) error {
	var status, owner string
	err := r.db.QueryRow(ctx,
		`SELECT payment_status, user_id FROM bookings WHERE id = $1`,
		bookingID,
	).Scan(&status, &owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load booking: %w", err)
	}
	if ownerUserID != "" && owner != ownerUserID {
		return ErrNotFound
	}
	switch status {
	case model.PaymentPaid:
		return ErrAlreadyPaid
	case model.PaymentPending:
		// fall through to delete
	default:
		return ErrNotPending
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM bookings WHERE id = $1 AND payment_status = 'pending'`,
		bookingID,
	)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Raced with a concurrent payment; treat as a state conflict.
		return ErrNotPending
	}
	return nil
}

// MarkPaid applies an approved payment outcome inside a transaction.
// The booking row is locked first (paid is terminal, so an already-paid
// booking rejects the transition), then the event row is locked and the
// paid seat sum recomputed excluding this booking. Pending bookings do not
// consume capacity, so without this re-check two pending bookings could
// both later turn paid and oversell the event; if capacity would be
// exceeded the booking is marked failed in the same transaction and
// ErrNotEnoughSeats returned.
func (r *BookingRepository) MarkPaid(ctx context.Context, bookingID, paymentReference string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var eventID, status string
	var seats int
	err = tx.QueryRow(ctx,
		`SELECT event_id, payment_status, seats_booked FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	).Scan(&eventID, &status, &seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock booking row: %w", err)
	}
	if status == model.PaymentPaid {
		err = ErrAlreadyPaid
		return err
	}

	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&capacity)
	if err != nil {
		return fmt.Errorf("lock event row: %w", err)
	}

	var paidSeats int
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(seats_booked), 0)::int
		   FROM bookings
		  WHERE event_id = $1 AND payment_status = 'paid' AND id <> $2`,
		eventID, bookingID,
	).Scan(&paidSeats)
	if err != nil {
		return fmt.Errorf("sum paid seats: %w", err)
	}

	if paidSeats+seats > capacity {
		// Seats were sold out from under this booking while it sat
		// pending or failed. Record the failure and reject the payment.
		if _, err = tx.Exec(ctx,
			`UPDATE bookings SET payment_status = 'failed', payment_reference = NULL WHERE id = $1`,
			bookingID,
		); err != nil {
			return fmt.Errorf("mark booking failed: %w", err)
		}
		if err = tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		return ErrNotEnoughSeats
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET payment_status = 'paid', payment_reference = $2 WHERE id = $1`,
		bookingID, paymentReference,
	)
	if err != nil {
		return fmt.Errorf("mark booking paid: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// MarkFailed applies a declined or errored payment outcome. Transitions
// out of paid are rejected; the payment reference is cleared.
func (r *BookingRepository) MarkFailed(ctx context.Context, bookingID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET payment_status = 'failed', payment_reference = NULL
		  WHERE id = $1 AND payment_status <> 'paid'`,
		bookingID,
	)
	if err != nil {
		return fmt.Errorf("mark booking failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, bookingID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check booking: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyPaid
	}
	return nil
}

// SetTicketArtifact records the generated ticket for a paid booking.
// The qr_code IS NULL guard makes the write idempotent: re-applying an
// approved outcome can never produce a second artifact.
func (r *BookingRepository) SetTicketArtifact(ctx context.Context, bookingID, artifact string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE bookings SET qr_code = $2
		  WHERE id = $1 AND payment_status = 'paid' AND qr_code IS NULL`,
		bookingID, artifact,
	)
	if err != nil {
		return false, fmt.Errorf("set ticket artifact: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Stats returns the admin dashboard aggregates derived from bookings.
func (r *BookingRepository) Stats(ctx context.Context) (*model.BookingStats, error) {
	var s model.BookingStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE payment_status = 'paid'),
		        COUNT(*) FILTER (WHERE payment_status = 'pending'),
		        COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0),
		        COALESCE(SUM(seats_booked) FILTER (WHERE payment_status = 'paid'), 0)::int
		   FROM bookings`,
	).Scan(&s.TotalBookings, &s.PaidBookings, &s.PendingBookings, &s.TotalRevenue, &s.TotalSeatsSold)
	if err != nil {
		return nil, fmt.Errorf("booking stats: %w", err)
	}
	return &s, nil
}

// RevenueByMonth returns paid revenue bucketed by calendar month for the
// last `months` months, most recent first.
func (r *BookingRepository) RevenueByMonth(ctx context.Context, months int) ([]model.MonthlyRevenue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT to_char(booking_date, 'YYYY-MM') AS month, SUM(total_amount)
		   FROM bookings
		  WHERE payment_status = 'paid'
		    AND booking_date >= NOW() - make_interval(months => $1)
		  GROUP BY to_char(booking_date, 'YYYY-MM')
		  ORDER BY month DESC`,
		months,
	)
	if err != nil {
		return nil, fmt.Errorf("revenue by month: %w", err)
	}
	defer rows.Close()

	var series []model.MonthlyRevenue
	for rows.Next() {
		var m model.MonthlyRevenue
		if err := rows.Scan(&m.Month, &m.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		series = append(series, m)
	}
	return series, rows.Err()
}

func scanBookingDetail(row pgx.Row) (*model.BookingDetail, error) {
	var d model.BookingDetail
	err := row.Scan(
		&d.ID, &d.UserID, &d.EventID, &d.BookingReference, &d.SeatsBooked,
		&d.TotalAmount, &d.PaymentStatus, &d.PaymentReference, &d.QRCode,
		&d.BookingDate,
		&d.EventTitle, &d.Venue, &d.StartDate, &d.EndDate,
		&d.UserName, &d.UserEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan booking: %w", err)
	}
	return &d, nil
}

func collectBookingDetails(rows pgx.Rows) ([]model.BookingDetail, error) {
	var details []model.BookingDetail
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}
