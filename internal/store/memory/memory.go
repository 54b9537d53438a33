// Package memory is the in-process interval store. It is the composition
// root's default backend: bookings live for the process lifetime only.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"slotline/internal/domain"
	"slotline/internal/store"
)

// Store serializes transactions with a single write lock, so the conflict
// check and the insert inside one transaction can never interleave with
// another booking attempt. Reads share a read lock and may run concurrently.
type Store struct {
	mu       sync.RWMutex
	bookings []domain.Booking
	blocked  domain.DateSet
	seq      int64
}

func New(blocked domain.DateSet) *Store {
	if blocked == nil {
		blocked = domain.NewDateSet()
	}
	return &Store{blocked: blocked}
}

func (s *Store) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

func (s *Store) BlockedDates(ctx context.Context) (domain.DateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(domain.DateSet, len(s.blocked))
	for d := range s.blocked {
		out.Add(d)
	}
	return out, nil
}

func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.bookings = append(s.bookings, tx.appended...)
	s.seq += tx.seqDelta
	return nil
}

// memTx stages writes against a snapshot of the store; InTransaction applies
// them only when fn succeeds.
type memTx struct {
	store    *Store
	appended []domain.Booking
	seqDelta int64
}

func (t *memTx) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0, len(t.store.bookings)+len(t.appended))
	out = append(out, t.store.bookings...)
	out = append(out, t.appended...)
	return out, nil
}

func (t *memTx) AppendBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	existing, _ := t.ListBookings(ctx)
	for _, e := range existing {
		if b.StartTime.Before(e.EndTime) && b.EndTime.After(e.StartTime) {
			return domain.Booking{}, store.ErrConflict
		}
	}

	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Booking{}, err
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	t.appended = append(t.appended, b)
	return b, nil
}

func (t *memTx) NextConfirmationSeq(ctx context.Context) (int64, error) {
	t.seqDelta++
	return t.store.seq + t.seqDelta, nil
}
