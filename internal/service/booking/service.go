package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"slotline/internal/availability"
	"slotline/internal/domain"
	"slotline/internal/notify"
	"slotline/internal/store"
	"slotline/internal/suggest"
)

var (
	// ErrInvalidDay means the requested day is a non-working weekday or a
	// blocked date. The caller should offer a different day.
	ErrInvalidDay = errors.New("day is not open for booking")

	// ErrSlotConflict means another booking already holds the interval. The
	// caller should offer a different slot.
	ErrSlotConflict = errors.New("slot is already booked")
)

// InvalidRequestError marks a caller contract violation: malformed intervals
// or missing client details are rejected before any policy check runs.
type InvalidRequestError struct {
	msg string
}

func (e *InvalidRequestError) Error() string {
	return e.msg
}

func invalidRequest(msg string) error {
	return &InvalidRequestError{msg: msg}
}

const (
	confirmationPrefix = "SOT"
	reminderLead       = 24 * time.Hour

	// DefaultUpcomingHorizonDays bounds "what's next" scans when the caller
	// does not pick a horizon.
	DefaultUpcomingHorizonDays = 14
)

// Service owns the booking transaction and fronts the availability queries.
// All mutation is funneled through the store's transaction so two concurrent
// booking attempts for the same interval cannot both pass validation.
type Service struct {
	store  store.Store
	hours  domain.WorkingHours
	sender notify.Sender
	now    func() time.Time
}

func NewService(st store.Store, hours domain.WorkingHours, sender notify.Sender) *Service {
	return &Service{
		store:  st,
		hours:  hours,
		sender: sender,
		now:    time.Now,
	}
}

type BookInput struct {
	Start  time.Time
	End    time.Time
	Client domain.ClientInfo
}

// Confirmation is the artifact of a successful booking transaction.
type Confirmation struct {
	Booking domain.Booking
	Code    string
}

// Book validates the requested interval and commits it as one atomic unit.
// Precondition order is fixed: malformed input, then non-working weekday on
// either endpoint, then blocked date, then conflict; the first failure wins.
// Either everything commits and a confirmation code is issued, or nothing is.
func (s *Service) Book(ctx context.Context, in BookInput) (Confirmation, error) {
	if err := validateInput(in); err != nil {
		return Confirmation{}, err
	}

	if !s.hours.IsWorkingDay(in.Start) || !s.hours.IsWorkingDay(in.End) {
		return Confirmation{}, ErrInvalidDay
	}

	blocked, err := s.store.BlockedDates(ctx)
	if err != nil {
		return Confirmation{}, err
	}
	if blocked.Contains(in.Start) {
		return Confirmation{}, ErrInvalidDay
	}

	var out Confirmation
	err = s.store.InTransaction(ctx, func(ctx context.Context, tx store.Tx) error {
		existing, err := tx.ListBookings(ctx)
		if err != nil {
			return err
		}
		if !availability.IsSlotFree(in.Start, in.End, existing) {
			return ErrSlotConflict
		}

		seq, err := tx.NextConfirmationSeq(ctx)
		if err != nil {
			return err
		}
		code := fmt.Sprintf("%s-%06d", confirmationPrefix, seq%1000000)

		created, err := tx.AppendBooking(ctx, domain.Booking{
			Title:            "Meeting with " + in.Client.Name,
			StartTime:        in.Start,
			EndTime:          in.End,
			ClientName:       in.Client.Name,
			ClientEmail:      in.Client.Email,
			ClientPhone:      in.Client.Phone,
			Service:          in.Client.Service,
			Message:          in.Client.Message,
			NotifyByEmail:    in.Client.NotifyByEmail,
			ConfirmationCode: code,
		})
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrSlotConflict
			}
			return err
		}

		out = Confirmation{Booking: created, Code: code}
		return nil
	})
	if err != nil {
		return Confirmation{}, err
	}

	s.queueNotifications(ctx, out)
	return out, nil
}

func validateInput(in BookInput) error {
	if in.Start.IsZero() || in.End.IsZero() {
		return invalidRequest("start and end are required")
	}
	if !in.End.After(in.Start) {
		return invalidRequest("end must be after start")
	}
	if !hourAligned(in.Start) || !hourAligned(in.End) {
		return invalidRequest("start and end must fall on whole hours")
	}
	if strings.TrimSpace(in.Client.Name) == "" {
		return invalidRequest("client name is required")
	}
	if strings.TrimSpace(in.Client.Email) == "" {
		return invalidRequest("client email is required")
	}
	return nil
}

func hourAligned(t time.Time) bool {
	return t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func (s *Service) queueNotifications(ctx context.Context, c Confirmation) {
	if s.sender == nil || !c.Booking.NotifyByEmail {
		return
	}

	s.sender.Queue(ctx, notify.Intent{
		To:           c.Booking.ClientEmail,
		Kind:         notify.KindConfirmation,
		Subject:      "Appointment Confirmation - " + c.Code,
		ScheduledFor: s.now(),
	})
	s.sender.Queue(ctx, notify.Intent{
		To:           c.Booking.ClientEmail,
		Kind:         notify.KindReminder,
		Subject:      "Appointment Reminder (24 hours)",
		ScheduledFor: c.Booking.StartTime.Add(-reminderLead),
	})
}

// Slots lists the open hourly slots for a day.
func (s *Service) Slots(ctx context.Context, day time.Time) ([]domain.Slot, error) {
	blocked, bookings, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.Slots(day, s.hours, blocked, bookings), nil
}

// DayStatus classifies a day for calendar coloring.
func (s *Service) DayStatus(ctx context.Context, day time.Time) (domain.DayStatus, error) {
	blocked, bookings, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return availability.Status(day, s.hours, blocked, bookings), nil
}

// Upcoming scans forward from now for days with open slots.
func (s *Service) Upcoming(ctx context.Context, horizonDays, limit int) ([]availability.DayAvailability, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultUpcomingHorizonDays
	}
	blocked, bookings, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return availability.UpcomingDays(s.now(), horizonDays, limit, s.hours, blocked, bookings), nil
}

// Suggestions renders the assistant's "next available" lines.
func (s *Service) Suggestions(ctx context.Context, count int) ([]string, error) {
	blocked, bookings, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return suggest.Dates(s.now(), s.hours, blocked, bookings, count), nil
}

// Bookings lists the committed bookings for calendar display.
func (s *Service) Bookings(ctx context.Context) ([]domain.Booking, error) {
	return s.store.ListBookings(ctx)
}

func (s *Service) snapshot(ctx context.Context) (domain.DateSet, []domain.Booking, error) {
	blocked, err := s.store.BlockedDates(ctx)
	if err != nil {
		return nil, nil, err
	}
	bookings, err := s.store.ListBookings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return blocked, bookings, nil
}
