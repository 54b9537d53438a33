package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"slotline/internal/domain"
	"slotline/internal/store"
)

func booking(start time.Time, hours int) domain.Booking {
	return domain.Booking{
		Title:     "t",
		StartTime: start,
		EndTime:   start.Add(time.Duration(hours) * time.Hour),
	}
}

func TestInTransaction_CommitAppliesStagedWrites(t *testing.T) {
	s := New(nil)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	var created domain.Booking
	err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		b, err := tx.AppendBooking(ctx, booking(start, 1))
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		t.Fatalf("InTransaction error: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Fatalf("expected generated booking ID")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}

	got, err := s.ListBookings(context.Background())
	if err != nil {
		t.Fatalf("ListBookings error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(bookings) = %d, want 1", len(got))
	}
	if got[0].ID != created.ID {
		t.Fatalf("stored ID = %s, want %s", got[0].ID, created.ID)
	}
}

func TestInTransaction_ErrorDiscardsStagedWrites(t *testing.T) {
	s := New(nil)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.AppendBooking(ctx, booking(start, 1)); err != nil {
			return err
		}
		if _, err := tx.NextConfirmationSeq(ctx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}

	got, err := s.ListBookings(context.Background())
	if err != nil {
		t.Fatalf("ListBookings error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(bookings) = %d, want 0 after rollback", len(got))
	}

	// The discarded sequence value must be handed out again.
	err = s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		seq, err := tx.NextConfirmationSeq(ctx)
		if err != nil {
			return err
		}
		if seq != 1 {
			t.Fatalf("seq = %d, want 1", seq)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTransaction error: %v", err)
	}
}

func TestAppendBooking_RejectsOverlapWithCommitted(t *testing.T) {
	s := New(nil)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AppendBooking(ctx, booking(start, 1))
		return err
	})
	if err != nil {
		t.Fatalf("first booking error: %v", err)
	}

	err = s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.AppendBooking(ctx, booking(start.Add(30*time.Minute), 1))
		return err
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
}

func TestAppendBooking_RejectsOverlapWithStaged(t *testing.T) {
	s := New(nil)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.AppendBooking(ctx, booking(start, 2)); err != nil {
			return err
		}
		_, err := tx.AppendBooking(ctx, booking(start.Add(time.Hour), 1))
		return err
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}

	got, _ := s.ListBookings(context.Background())
	if len(got) != 0 {
		t.Fatalf("len(bookings) = %d, want 0 after failed transaction", len(got))
	}
}

func TestAppendBooking_AllowsTouchingIntervals(t *testing.T) {
	s := New(nil)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.AppendBooking(ctx, booking(start, 1)); err != nil {
			return err
		}
		_, err := tx.AppendBooking(ctx, booking(start.Add(time.Hour), 1))
		return err
	})
	if err != nil {
		t.Fatalf("back-to-back bookings error: %v", err)
	}
}

func TestNextConfirmationSeq_MonotonicAcrossTransactions(t *testing.T) {
	s := New(nil)

	var seqs []int64
	for i := 0; i < 3; i++ {
		err := s.InTransaction(context.Background(), func(ctx context.Context, tx store.Tx) error {
			seq, err := tx.NextConfirmationSeq(ctx)
			if err != nil {
				return err
			}
			seqs = append(seqs, seq)
			return nil
		})
		if err != nil {
			t.Fatalf("InTransaction error: %v", err)
		}
	}

	for i, want := range []int64{1, 2, 3} {
		if seqs[i] != want {
			t.Fatalf("seqs = %v, want [1 2 3]", seqs)
		}
	}
}

func TestBlockedDates_CopiesAreIsolated(t *testing.T) {
	blocked := domain.NewDateSet(domain.CivilDate{Year: 2026, Month: time.January, Day: 5})
	s := New(blocked)

	got, err := s.BlockedDates(context.Background())
	if err != nil {
		t.Fatalf("BlockedDates error: %v", err)
	}
	got.Add(domain.CivilDate{Year: 2026, Month: time.January, Day: 6})

	again, _ := s.BlockedDates(context.Background())
	if len(again) != 1 {
		t.Fatalf("len(blocked) = %d, want 1 after caller mutation", len(again))
	}
}
