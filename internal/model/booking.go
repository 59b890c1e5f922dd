package model

// ConsultationType is a named service offering with a fixed duration.
// Defined at configuration time, immutable afterwards.
type ConsultationType struct {
	Key             string `json:"key"`
	Label           string `json:"label"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description,omitempty"`
}

// Catalog is the set of bookable consultation types, keyed by wire name.
type Catalog map[string]ConsultationType

func (c Catalog) Get(key string) (ConsultationType, bool) {
	t, ok := c[key]
	return t, ok
}

// Tutor is the pet owner's contact information.
type Tutor struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Pet describes the animal the appointment is for. Age is free text the way
// owners report it ("3", "8 meses").
type Pet struct {
	Name    string `json:"name"`
	Species string `json:"species"`
	Age     string `json:"age"`
}

// AppointmentRequest is the immutable snapshot sent to the scheduling
// service. JSON layout matches the upstream createAppointment payload.
type AppointmentRequest struct {
	Type  string `json:"type"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Tutor Tutor  `json:"tutor"`
	Pet   Pet    `json:"pet"`
}

// ConfirmationRecord echoes a successfully booked appointment back to the
// widget.
type ConfirmationRecord struct {
	Appointment AppointmentRequest `json:"appointment"`
	ServiceName string             `json:"service_name"`
	Duration    int                `json:"duration_minutes"`
}

// AvailabilityResult is the ordered slot list for one (date, type) query.
// Produced fresh per query, never cached across dates.
type AvailabilityResult struct {
	Date  Date       `json:"date"`
	Type  string     `json:"type"`
	Slots []TimeSlot `json:"slots"`
}

// Contains reports whether the result offers the given slot.
func (r *AvailabilityResult) Contains(slot TimeSlot) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
