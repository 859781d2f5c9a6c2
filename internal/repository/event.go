package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aisummit/event-booking/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eventColumns selects an event together with its derived seat counts.
// Availability is always recomputed from paid bookings, never read from a
// stored counter, so failed and cancelled bookings can never skew it.
const eventColumns = `
	SELECT e.id, e.title, e.description, e.venue, e.capacity, e.price,
	       e.start_date, e.end_date, e.status, e.created_at,
	       COALESCE(SUM(b.seats_booked), 0)::int AS booked_seats
	  FROM events e
	  LEFT JOIN bookings b ON e.id = b.event_id AND b.payment_status = 'paid'`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Capacity:    req.Capacity,
		Price:       req.Price,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      model.EventActive,
		CreatedAt:   time.Now().UTC(),
	}
	event.AvailableSeats = event.Capacity

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, venue, capacity, price, start_date, end_date, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.Title, event.Description, event.Venue, event.Capacity,
		event.Price, event.StartDate, event.EndDate, event.Status, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events with derived availability, soonest first.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		eventColumns+`
		 GROUP BY e.id
		 ORDER BY e.start_date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event with derived availability, or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		eventColumns+`
		 WHERE e.id = $1
		 GROUP BY e.id`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Stats returns aggregate event counts for the admin dashboard.
func (r *EventRepository) Stats(ctx context.Context) (*model.EventStats, error) {
	var s model.EventStats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'active'),
		        COUNT(*) FILTER (WHERE start_date > NOW()),
		        COALESCE(SUM(capacity), 0)::int
		   FROM events`,
	).Scan(&s.TotalEvents, &s.ActiveEvents, &s.UpcomingEvents, &s.TotalCapacity)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	return &s, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	if err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Venue, &e.Capacity, &e.Price,
		&e.StartDate, &e.EndDate, &e.Status, &e.CreatedAt, &e.BookedSeats,
	); err != nil {
		return nil, err
	}
	e.AvailableSeats = e.Capacity - e.BookedSeats
	return &e, nil
}
