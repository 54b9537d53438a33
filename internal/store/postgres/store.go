// Package postgres is the durable interval store backend. The no-overlap
// invariant is enforced twice: by the engine's conflict check inside the
// transaction, and by the bookings_no_overlap exclusion constraint as the
// last line of defense.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"slotline/internal/domain"
	"slotline/internal/store"
)

const noOverlapConstraint = "bookings_no_overlap"

// calendarLockKey serializes booking transactions across processes via an
// advisory lock, closing the check-then-act window between the conflict
// test and the insert.
const calendarLockKey = "slotline:calendar"

type blockedDateRow struct {
	bun.BaseModel `bun:"table:blocked_dates"`

	Day time.Time `bun:"day,pk,type:date"`
}

type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return listBookings(ctx, s.db)
}

func (s *Store) BlockedDates(ctx context.Context) (domain.DateSet, error) {
	var rows []blockedDateRow
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("day ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make(domain.DateSet, len(rows))
	for _, r := range rows {
		out.Add(domain.DateOf(r.Day))
	}
	return out, nil
}

func (s *Store) InTransaction(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCalendar(ctx, tx); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockCalendar(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", calendarLockKey).Exec(ctx)
	return err
}

type bookingTx struct {
	tx bun.Tx
}

func (t bookingTx) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return listBookings(ctx, t.tx)
}

func (t bookingTx) AppendBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == noOverlapConstraint {
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	return b, nil
}

func (t bookingTx) NextConfirmationSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := t.tx.NewRaw("SELECT nextval('booking_confirmation_seq')").Scan(ctx, &seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func listBookings(ctx context.Context, db bun.IDB) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := db.NewSelect().
		Model(&rows).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
