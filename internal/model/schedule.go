package model

import (
	"fmt"
	"time"
)

// TimeSlot is a bookable start time within a day, minute precision.
type TimeSlot struct {
	Hour   int
	Minute int
}

// ParseTimeSlot parses "HH:MM".
func ParseTimeSlot(s string) (TimeSlot, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeSlot{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeSlot{}, fmt.Errorf("invalid time %q", s)
	}
	return TimeSlot{Hour: h, Minute: m}, nil
}

// MustTimeSlot is for configuration defaults and tests.
func MustTimeSlot(s string) TimeSlot {
	t, err := ParseTimeSlot(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight.
func (t TimeSlot) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Add returns the slot shifted by the given number of minutes.
func (t TimeSlot) Add(minutes int) TimeSlot {
	total := t.Minutes() + minutes
	return TimeSlot{Hour: total / 60, Minute: total % 60}
}

func (t TimeSlot) Before(other TimeSlot) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeSlot) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

func (t *TimeSlot) UnmarshalJSON(data []byte) error {
	var s string
	if _, err := fmt.Sscanf(string(data), "%q", &s); err != nil {
		return fmt.Errorf("invalid time slot %s", data)
	}
	parsed, err := ParseTimeSlot(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date without a time zone. The widget exchanges dates as
// "YYYY-MM-DD" strings; parsing by components avoids the timezone shifts the
// naive Date constructor caused in the old front end.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates an instant to its calendar date in the instant's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// At combines the date with a time of day in the given location.
func (d Date) At(slot TimeSlot, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, slot.Hour, slot.Minute, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == `""` || string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if _, err := fmt.Sscanf(string(data), "%q", &s); err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Before reports whether d is an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// BreakWindow is a span within a working day when no consultation starts or
// runs, e.g. a lunch break.
type BreakWindow struct {
	Start TimeSlot
	End   TimeSlot
}

// DayHours are the opening hours of a single weekday.
type DayHours struct {
	Open   TimeSlot
	Close  TimeSlot
	Breaks []BreakWindow
}

// WeeklySchedule maps each weekday to its opening hours; a missing entry
// means the clinic is closed that day. Immutable after configuration.
type WeeklySchedule map[time.Weekday]DayHours

// HoursFor returns the day's hours and whether the clinic opens at all.
func (w WeeklySchedule) HoursFor(day time.Weekday) (DayHours, bool) {
	h, ok := w[day]
	return h, ok
}

// IsOpen reports whether the clinic opens on the given date's weekday.
func (w WeeklySchedule) IsOpen(d Date) bool {
	_, ok := w[d.Weekday()]
	return ok
}
