package store

import (
	"context"

	"slotline/internal/domain"
)

// Store is the interval store: the committed bookings plus the operator's
// blocked dates. Reads may run concurrently; all mutation goes through
// InTransaction so a validate-then-insert sequence executes as one atomic
// unit with respect to other booking attempts.
type Store interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	BlockedDates(ctx context.Context) (domain.DateSet, error)

	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of the store inside a transaction. Nothing staged through a
// Tx is visible to other callers until the transaction commits, and an error
// from fn discards everything.
type Tx interface {
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	AppendBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// NextConfirmationSeq returns the next value of a monotonic counter used
	// to derive confirmation codes. Two transactions never observe the same
	// value, even when they commit within the same clock tick.
	NextConfirmationSeq(ctx context.Context) (int64, error)
}
