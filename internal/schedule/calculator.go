// Package schedule derives candidate appointment start times from the
// clinic's weekly opening hours. It is a dumb slot generator: overlap
// detection against existing bookings belongs to the remote calendar
// service, which owns the authoritative availability list.
package schedule

import (
	"time"

	"github.com/vet-tarapaca/booking-api/internal/model"
)

const (
	// SlotGranularityMinutes is fixed regardless of consultation duration:
	// a 60-minute service still starts on 30-minute boundaries.
	SlotGranularityMinutes = 30

	// MinLeadTimeMinutes keeps same-day bookings from starting almost
	// immediately.
	MinLeadTimeMinutes = 30
)

// Calculator computes static slots for a weekly schedule.
type Calculator struct {
	week model.WeeklySchedule
	loc  *time.Location
}

func NewCalculator(week model.WeeklySchedule, loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.Local
	}
	return &Calculator{week: week, loc: loc}
}

// Week exposes the configured schedule for open-day checks.
func (c *Calculator) Week() model.WeeklySchedule {
	return c.week
}

// Slots returns every start time on the given date at which a consultation
// of the given duration fits inside opening hours. Deterministic and
// side-effect free: the reference instant is the only notion of "now".
//
// Rules, in order:
//   - closed weekday: no slots
//   - slots start at opening time and advance by SlotGranularityMinutes
//     while slot+duration still fits before closing time
//   - slots intersecting a configured break window are dropped
//   - when the date is the reference instant's own date, slots starting
//     less than MinLeadTimeMinutes from the reference are dropped
func (c *Calculator) Slots(date model.Date, durationMinutes int, reference time.Time) []model.TimeSlot {
	hours, open := c.week.HoursFor(date.Weekday())
	if !open {
		return nil
	}

	var cutoff time.Time
	sameDay := date == model.DateOf(reference.In(c.loc))
	if sameDay {
		cutoff = reference.Add(MinLeadTimeMinutes * time.Minute)
	}

	var slots []model.TimeSlot
	for s := hours.Open; s.Add(durationMinutes).Minutes() <= hours.Close.Minutes(); s = s.Add(SlotGranularityMinutes) {
		if intersectsBreak(s, durationMinutes, hours.Breaks) {
			continue
		}
		if sameDay && date.At(s, c.loc).Before(cutoff) {
			continue
		}
		slots = append(slots, s)
	}
	return slots
}

func intersectsBreak(start model.TimeSlot, durationMinutes int, breaks []model.BreakWindow) bool {
	end := start.Add(durationMinutes)
	for _, b := range breaks {
		// Half-open intervals: [start,end) intersects [b.Start,b.End).
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}
