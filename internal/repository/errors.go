// Package repository implements all database queries for the event booking system.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import "errors"

// ErrNotFound is returned when a requested resource does not exist, or when
// an ownership check fails (deliberately indistinguishable to the caller).
var ErrNotFound = errors.New("not found")

// ErrNotEnoughSeats is returned when an event lacks capacity for the
// requested seat count.
var ErrNotEnoughSeats = errors.New("not enough seats available")

// ErrAlreadyPaid is returned on any attempt to transition or delete a
// booking that has already been paid. Paid is terminal.
var ErrAlreadyPaid = errors.New("booking is already paid")

// ErrNotPending is returned when an operation permitted only for pending
// bookings targets a booking in another state.
var ErrNotPending = errors.New("booking is not pending")

// ErrDuplicate is returned when a unique constraint rejects an insert
// (username, email, or booking reference collision).
var ErrDuplicate = errors.New("already exists")
