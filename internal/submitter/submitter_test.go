package submitter

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/session"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

type fakeClient struct {
	configured bool
	calls      int
	err        error
	got        model.AppointmentRequest
}

func (f *fakeClient) Configured() bool { return f.configured }

func (f *fakeClient) CreateAppointment(ctx context.Context, apt model.AppointmentRequest) error {
	f.calls++
	f.got = apt
	return f.err
}

var catalog = model.Catalog{
	"general": {Key: "general", Label: "Consulta General", DurationMinutes: 30},
}

func readySession(t *testing.T) *session.Session {
	t.Helper()

	week := model.WeeklySchedule{
		time.Monday: {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
	}
	today := model.Date{Year: 2026, Month: time.February, Day: 23}
	monday := model.Date{Year: 2026, Month: time.March, Day: 2}

	s := session.New()
	require.NoError(t, s.SubmitContact(
		model.Tutor{Name: "Ana Pérez", Phone: "+56912345678", Email: "ana@example.com"},
		model.Pet{Name: "Fido", Species: "Perro", Age: "3"},
	))
	require.NoError(t, s.SelectService("general", catalog))
	require.NoError(t, s.SelectDate(monday, week, today))
	require.True(t, s.RecordAvailability(&model.AvailabilityResult{
		Date: monday, Type: "general", Slots: []model.TimeSlot{model.MustTimeSlot("11:00")},
	}))
	require.NoError(t, s.SelectSlot(model.MustTimeSlot("11:00")))
	return s
}

func TestSubmitSuccessEchoesData(t *testing.T) {
	client := &fakeClient{configured: true}
	sub := New(client, catalog, zerolog.Nop())
	sess := readySession(t)

	rec, err := sub.Submit(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)

	assert.Equal(t, "general", rec.Appointment.Type)
	assert.Equal(t, "2026-03-02", rec.Appointment.Date)
	assert.Equal(t, "11:00", rec.Appointment.Time)
	assert.Equal(t, "Ana Pérez", rec.Appointment.Tutor.Name)
	assert.Equal(t, "Fido", rec.Appointment.Pet.Name)
	assert.Equal(t, "Consulta General", rec.ServiceName)
	assert.Equal(t, 30, rec.Duration)

	// The submitter itself does not mutate the session.
	assert.Equal(t, session.StateReadyToSubmit, sess.State)
	require.NoError(t, sess.MarkSubmitted())
}

func TestSubmitFailureLeavesSessionReady(t *testing.T) {
	client := &fakeClient{configured: true, err: fmt.Errorf("scheduling script error: slot taken")}
	sub := New(client, catalog, zerolog.Nop())
	sess := readySession(t)

	_, err := sub.Submit(context.Background(), sess)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrUpstream, appErr.Code)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, session.StateReadyToSubmit, sess.State)
}

func TestSubmitRejectsIncompleteSession(t *testing.T) {
	client := &fakeClient{configured: true}
	sub := New(client, catalog, zerolog.Nop())

	_, err := sub.Submit(context.Background(), session.New())
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrStateConflict, appErr.Code)
	assert.Equal(t, 0, client.calls)
}

func TestSubmitUnconfiguredClient(t *testing.T) {
	client := &fakeClient{configured: false}
	sub := New(client, catalog, zerolog.Nop())

	_, err := sub.Submit(context.Background(), readySession(t))
	require.Error(t, err)
	assert.Equal(t, 0, client.calls)
}
