package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ClientInfo is what the booking form collects about the person reserving a
// slot. Service and Message are optional.
type ClientInfo struct {
	Name          string
	Email         string
	Phone         string
	Service       string
	Message       string
	NotifyByEmail bool
}

// Booking is a committed reservation. Bookings are created only by a
// successful booking transaction and are never mutated afterwards.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	Title            string    `bun:"title,notnull"`
	StartTime        time.Time `bun:"start_time,notnull"`
	EndTime          time.Time `bun:"end_time,notnull"`
	ClientName       string    `bun:"client_name,notnull"`
	ClientEmail      string    `bun:"client_email,notnull"`
	ClientPhone      string    `bun:"client_phone"`
	Service          string    `bun:"service"`
	Message          string    `bun:"message"`
	NotifyByEmail    bool      `bun:"notify_by_email,notnull"`
	ConfirmationCode string    `bun:"confirmation_code,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		b.ID = id
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Client reassembles the client details recorded on the booking.
func (b Booking) Client() ClientInfo {
	return ClientInfo{
		Name:          b.ClientName,
		Email:         b.ClientEmail,
		Phone:         b.ClientPhone,
		Service:       b.Service,
		Message:       b.Message,
		NotifyByEmail: b.NotifyByEmail,
	}
}
