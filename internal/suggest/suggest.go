// Package suggest renders short "next available" lines for the assistant to
// offer when a visitor asks for an appointment. It is a projection over the
// availability engine and adds no invariants of its own.
package suggest

import (
	"fmt"
	"strings"
	"time"

	"slotline/internal/availability"
	"slotline/internal/domain"
)

const (
	// HorizonDays bounds how far ahead suggestions look.
	HorizonDays = 7

	// DefaultCount is how many days are offered when the caller does not say.
	DefaultCount = 3

	maxExampleTimes = 3
)

// Dates returns up to count display strings of the form
// "Sep 07 at 09:00 or 10:00 or 11:00", chronologically ascending, covering
// the HorizonDays days after now. Days without open slots never appear.
func Dates(now time.Time, hours domain.WorkingHours, blocked domain.DateSet, bookings []domain.Booking, count int) []string {
	if count <= 0 {
		count = DefaultCount
	}

	days := availability.UpcomingDays(now, HorizonDays, count, hours, blocked, bookings)

	out := make([]string, 0, len(days))
	for _, d := range days {
		examples := d.Slots
		if len(examples) > maxExampleTimes {
			examples = examples[:maxExampleTimes]
		}
		times := make([]string, 0, len(examples))
		for _, s := range examples {
			times = append(times, s.Start.Format("15:04"))
		}
		out = append(out, fmt.Sprintf("%s at %s", d.Day.Format("Jan 02"), strings.Join(times, " or ")))
	}
	return out
}
