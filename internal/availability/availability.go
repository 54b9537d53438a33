// Package availability computes bookable slots and day-level status from the
// working-hours policy, the blocked-date set, and the committed bookings.
// Every function is pure: safe to call concurrently and repeatedly.
package availability

import (
	"time"

	"slotline/internal/domain"
)

// Slots enumerates the bookable hourly slots for day, in ascending order.
// The time of day on the argument is ignored. A blocked date or a non-working
// weekday yields no slots regardless of what is booked that day.
func Slots(day time.Time, hours domain.WorkingHours, blocked domain.DateSet, bookings []domain.Booking) []domain.Slot {
	if blocked.Contains(day) || !hours.IsWorkingDay(day) {
		return nil
	}

	y, m, d := day.Date()
	loc := day.Location()

	out := make([]domain.Slot, 0, hours.SlotsPerDay())
	for h := hours.StartHour; h < hours.EndHour; h++ {
		start := time.Date(y, m, d, h, 0, 0, 0, loc)
		end := start.Add(time.Hour)
		if IsSlotFree(start, end, bookings) {
			out = append(out, domain.Slot{Start: start, End: end})
		}
	}
	return out
}

// IsSlotFree reports whether no booking intersects [start, end). Intervals
// are half-open: a booking ending exactly at start, or starting exactly at
// end, does not count as overlap, so back-to-back bookings are legal.
func IsSlotFree(start, end time.Time, bookings []domain.Booking) bool {
	for _, b := range bookings {
		if start.Before(b.EndTime) && end.After(b.StartTime) {
			return false
		}
	}
	return true
}

// Status classifies a day for calendar coloring. Blocked takes precedence
// over the weekday check, and both take precedence over slot computation:
// a blocked day with leftover bookings is still reported blocked.
func Status(day time.Time, hours domain.WorkingHours, blocked domain.DateSet, bookings []domain.Booking) domain.DayStatus {
	if blocked.Contains(day) {
		return domain.DayStatusBlocked
	}
	if !hours.IsWorkingDay(day) {
		return domain.DayStatusWeekend
	}
	if len(Slots(day, hours, blocked, bookings)) == 0 && hasBookingOn(day, bookings) {
		return domain.DayStatusFullyBooked
	}
	return domain.DayStatusAvailable
}

func hasBookingOn(day time.Time, bookings []domain.Booking) bool {
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	for _, b := range bookings {
		if b.StartTime.Before(dayEnd) && b.EndTime.After(dayStart) {
			return true
		}
	}
	return false
}

// DayAvailability is one entry of an upcoming-days scan.
type DayAvailability struct {
	Day   time.Time
	Slots []domain.Slot
}

// UpcomingDays scans forward day by day, starting the day after from, for up
// to horizonDays calendar days, and collects days with at least one open
// slot until limit entries are found or the horizon is exhausted. Entries
// are strictly chronological. A non-positive limit means horizon-bounded
// only.
func UpcomingDays(from time.Time, horizonDays, limit int, hours domain.WorkingHours, blocked domain.DateSet, bookings []domain.Booking) []DayAvailability {
	if horizonDays <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = horizonDays
	}

	y, m, d := from.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, from.Location())

	out := make([]DayAvailability, 0, limit)
	for i := 1; i <= horizonDays && len(out) < limit; i++ {
		day := base.AddDate(0, 0, i)
		slots := Slots(day, hours, blocked, bookings)
		if len(slots) > 0 {
			out = append(out, DayAvailability{Day: day, Slots: slots})
		}
	}
	return out
}
