package domain

import (
	"errors"
	"sort"
	"time"
)

// WorkingHours is the static booking policy: one bookable slot per whole hour
// in [StartHour, EndHour) on each working weekday.
type WorkingHours struct {
	StartHour int
	EndHour   int
	Weekdays  map[time.Weekday]bool
}

// DefaultWorkingHours is 9 AM to 5 PM, Monday to Friday.
func DefaultWorkingHours() WorkingHours {
	return WorkingHours{
		StartHour: 9,
		EndHour:   17,
		Weekdays: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
	}
}

func (w WorkingHours) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return errors.New("start hour must be between 0 and 23")
	}
	if w.EndHour < 0 || w.EndHour > 23 {
		return errors.New("end hour must be between 0 and 23")
	}
	if w.EndHour <= w.StartHour {
		return errors.New("end hour must be after start hour")
	}
	if len(w.Weekdays) == 0 {
		return errors.New("at least one working weekday is required")
	}
	return nil
}

func (w WorkingHours) IsWorkingDay(t time.Time) bool {
	return w.Weekdays[t.Weekday()]
}

// SlotsPerDay is the number of hourly slots a fully open day offers.
func (w WorkingHours) SlotsPerDay() int {
	return w.EndHour - w.StartHour
}

// CivilDate is a calendar day with no time component.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, err
	}
	return DateOf(t), nil
}

func (d CivilDate) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

// DateSet holds blocked calendar days keyed by civil date, so membership
// ignores the time of day and timezone offset of the probe.
type DateSet map[CivilDate]struct{}

func NewDateSet(dates ...CivilDate) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s DateSet) Contains(t time.Time) bool {
	_, ok := s[DateOf(t)]
	return ok
}

func (s DateSet) Add(d CivilDate) {
	s[d] = struct{}{}
}

// Dates returns the members in ascending calendar order.
func (s DateSet) Dates() []CivilDate {
	out := make([]CivilDate, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// Slot is a candidate or committed one-hour interval [Start, End). Slots are
// derived values: they are recomputed on every availability query and never
// stored.
type Slot struct {
	Start time.Time
	End   time.Time
}

// DayStatus is the aggregate availability of a single calendar day, used by
// calendar views for coloring.
type DayStatus string

const (
	DayStatusBlocked     DayStatus = "blocked"
	DayStatusWeekend     DayStatus = "weekend"
	DayStatusAvailable   DayStatus = "available"
	DayStatusFullyBooked DayStatus = "fully_booked"
)
