// Package session holds the state accumulated across the booking wizard's
// steps and enforces its transition guards. It knows nothing about HTTP or
// rendering; the handler layer dispatches into it and the service layer owns
// the clock and the availability source.
package session

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

// State is the wizard's logical position.
type State string

const (
	StateCollectingContact State = "collecting_contact"
	StateChoosingService   State = "choosing_service"
	StateChoosingSlot      State = "choosing_slot"
	StateReadyToSubmit     State = "ready_to_submit"
	StateSubmitted         State = "submitted"
)

// Step maps the state onto the widget's three-step progress indicator.
func (s State) Step() int {
	switch s {
	case StateCollectingContact:
		return 1
	case StateChoosingService:
		return 2
	default:
		return 3
	}
}

var (
	// Chilean phone numbers, optional country prefix, spaces ignored.
	phonePattern = regexp.MustCompile(`^(\+56|56)?[2-9]\d{7,8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Session is the mutable aggregate behind one widget instance. All mutation
// goes through its methods; a session is never shared between flows.
type Session struct {
	ID               uuid.UUID                 `json:"id"`
	State            State                     `json:"state"`
	Tutor            model.Tutor               `json:"tutor"`
	Pet              model.Pet                 `json:"pet"`
	ConsultationType string                    `json:"consultation_type,omitempty"`
	SelectedDate     model.Date                `json:"selected_date,omitempty"`
	SelectedSlot     *model.TimeSlot           `json:"selected_slot,omitempty"`
	Availability     *model.AvailabilityResult `json:"availability,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// New creates a session at step 1.
func New() *Session {
	return &Session{
		ID:        uuid.New(),
		State:     StateCollectingContact,
		CreatedAt: time.Now(),
	}
}

// SubmitContact validates the tutor and pet fields and advances to service
// selection. On failure the session stays put and the error names every
// offending field.
func (s *Session) SubmitContact(tutor model.Tutor, pet model.Pet) error {
	if s.State != StateCollectingContact {
		return errors.NewStateConflict("contact data can only be submitted on step 1")
	}

	tutor.Name = strings.TrimSpace(tutor.Name)
	tutor.Phone = strings.TrimSpace(tutor.Phone)
	tutor.Email = strings.TrimSpace(tutor.Email)
	pet.Name = strings.TrimSpace(pet.Name)
	pet.Species = strings.TrimSpace(pet.Species)
	pet.Age = strings.TrimSpace(pet.Age)

	var fields []string
	if len([]rune(tutor.Name)) < 2 {
		fields = append(fields, "name")
	}
	if !phonePattern.MatchString(strings.ReplaceAll(tutor.Phone, " ", "")) {
		fields = append(fields, "phone")
	}
	if !emailPattern.MatchString(tutor.Email) {
		fields = append(fields, "email")
	}
	if pet.Name == "" {
		fields = append(fields, "pet_name")
	}
	if pet.Species == "" {
		fields = append(fields, "pet_species")
	}
	if len(fields) > 0 {
		return errors.NewValidation(fields...)
	}

	s.Tutor = tutor
	s.Pet = pet
	s.State = StateChoosingService
	return nil
}

// SelectService records the consultation type and advances to slot
// selection. The only guard is a known, non-empty selection.
func (s *Session) SelectService(key string, catalog model.Catalog) error {
	if s.State != StateChoosingService {
		return errors.NewStateConflict("a consultation type can only be chosen on step 2")
	}
	if _, ok := catalog.Get(key); !ok {
		return errors.NewValidation("type")
	}
	s.ConsultationType = key
	s.State = StateChoosingSlot
	return nil
}

// SelectDate picks the appointment date. Changing the date invalidates any
// previously selected slot and recorded availability: the user must re-pick
// from the new date's list.
func (s *Session) SelectDate(date model.Date, week model.WeeklySchedule, today model.Date) error {
	if s.State != StateChoosingSlot && s.State != StateReadyToSubmit {
		return errors.NewStateConflict("a date can only be chosen on step 3")
	}
	if date.Before(today) {
		return errors.NewValidation("date")
	}
	if !week.IsOpen(date) {
		return errors.NewValidation("date")
	}

	if s.SelectedDate != date {
		s.SelectedSlot = nil
		s.Availability = nil
	}
	s.SelectedDate = date
	s.State = StateChoosingSlot
	return nil
}

// RecordAvailability stores a query result on the session, but only while it
// still matches the selected date and service. A stale response that
// resolves after the user moved on is discarded by this value comparison;
// in-flight queries are never cancelled.
func (s *Session) RecordAvailability(res *model.AvailabilityResult) bool {
	if res == nil || s.SelectedDate != res.Date || s.ConsultationType != res.Type {
		return false
	}
	s.Availability = res
	return true
}

// SelectSlot picks a start time. The slot must come from the most recent
// availability recorded for the currently selected date.
func (s *Session) SelectSlot(slot model.TimeSlot) error {
	if s.State != StateChoosingSlot {
		return errors.NewStateConflict("a time can only be chosen on step 3")
	}
	if s.SelectedDate.IsZero() {
		return errors.NewValidation("date")
	}
	if s.Availability == nil || s.Availability.Date != s.SelectedDate || s.Availability.Type != s.ConsultationType {
		return errors.NewValidation("time")
	}
	if !s.Availability.Contains(slot) {
		return errors.NewValidation("time")
	}
	s.SelectedSlot = &slot
	s.State = StateReadyToSubmit
	return nil
}

// Back moves one step backwards without clearing anything the user entered,
// so moving forward again does not require retyping.
func (s *Session) Back() error {
	switch s.State {
	case StateChoosingService:
		s.State = StateCollectingContact
	case StateChoosingSlot, StateReadyToSubmit:
		s.State = StateChoosingService
	default:
		return errors.NewStateConflict("cannot go back from this step")
	}
	return nil
}

// MarkSubmitted finalizes the session after a successful creation call.
// Irreversible; booking again requires a fresh session.
func (s *Session) MarkSubmitted() error {
	if s.State != StateReadyToSubmit {
		return errors.NewStateConflict("session is not ready to submit")
	}
	s.State = StateSubmitted
	return nil
}
