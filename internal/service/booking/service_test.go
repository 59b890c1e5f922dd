package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vet-tarapaca/booking-api/internal/gateway"
	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/remote"
	"github.com/vet-tarapaca/booking-api/internal/schedule"
	"github.com/vet-tarapaca/booking-api/internal/session"
	"github.com/vet-tarapaca/booking-api/internal/submitter"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

var (
	testCatalog = model.Catalog{
		"general":   {Key: "general", Label: "Consulta General", DurationMinutes: 30},
		"specialty": {Key: "specialty", Label: "Consulta Especialidad", DurationMinutes: 60},
	}

	testWeek = model.WeeklySchedule{
		time.Monday:    {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
		time.Tuesday:   {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
		time.Wednesday: {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
		time.Thursday:  {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
		time.Friday:    {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
		time.Saturday:  {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("14:00")},
	}

	// Wednesday; "next Monday" from here is 2026-03-02.
	testNow    = time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)
	nextMonday = model.Date{Year: 2026, Month: time.March, Day: 2}

	validContact = model.ContactRequest{
		TutorName:  "Ana Pérez",
		TutorPhone: "+56912345678",
		TutorEmail: "ana@example.com",
		PetName:    "Fido",
		PetSpecies: "Perro",
		PetAge:     "3",
	}
)

type fakeEmail struct {
	sent []*model.ConfirmationRecord
}

func (f *fakeEmail) SendConfirmation(ctx context.Context, rec *model.ConfirmationRecord) error {
	f.sent = append(f.sent, rec)
	return nil
}

// newService wires the full stack against the given scheduling endpoint.
// An empty URL leaves the remote unconfigured.
func newService(t *testing.T, scriptURL string) (*Service, *fakeEmail) {
	t.Helper()
	log := zerolog.Nop()
	calc := schedule.NewCalculator(testWeek, time.UTC)
	client := remote.NewClient(scriptURL, time.Second, log)
	gw := gateway.New(calc, testCatalog, client, nil, log).WithClock(func() time.Time { return testNow })
	sub := submitter.New(client, testCatalog, log)
	mail := &fakeEmail{}
	svc := NewService(session.NewMemoryStore(0), gw, sub, mail, testCatalog, testWeek, time.UTC, log).
		WithClock(func() time.Time { return testNow })
	return svc, mail
}

func schedulingStub(t *testing.T, createResponse map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "checkAvailability":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":        true,
				"availableSlots": []string{"10:30", "11:00", "11:30", "15:00"},
			})
		case "createAppointment":
			json.NewEncoder(w).Encode(createResponse)
		default:
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
	}))
}

func TestFullBookingFlow(t *testing.T) {
	srv := schedulingStub(t, map[string]interface{}{"success": true})
	defer srv.Close()

	svc, mail := newService(t, srv.URL)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	_, err = svc.SubmitContact(ctx, sess.ID, validContact)
	require.NoError(t, err)

	_, err = svc.SelectService(ctx, sess.ID, "general")
	require.NoError(t, err)

	res, err := svc.Availability(ctx, sess.ID, nextMonday)
	require.NoError(t, err)
	assert.Contains(t, res.Slots, model.MustTimeSlot("11:00"))

	_, err = svc.SelectSlot(ctx, sess.ID, nextMonday, model.MustTimeSlot("11:00"))
	require.NoError(t, err)

	rec, err := svc.Submit(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, "general", rec.Appointment.Type)
	assert.Equal(t, "2026-03-02", rec.Appointment.Date)
	assert.Equal(t, "11:00", rec.Appointment.Time)
	assert.Equal(t, "Ana Pérez", rec.Appointment.Tutor.Name)
	assert.Equal(t, "+56912345678", rec.Appointment.Tutor.Phone)
	assert.Equal(t, "ana@example.com", rec.Appointment.Tutor.Email)
	assert.Equal(t, "Fido", rec.Appointment.Pet.Name)
	assert.Equal(t, "Perro", rec.Appointment.Pet.Species)
	assert.Equal(t, "3", rec.Appointment.Pet.Age)

	final, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateSubmitted, final.State)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ana@example.com", mail.sent[0].Appointment.Tutor.Email)
}

func TestSubmitFailureKeepsSessionReady(t *testing.T) {
	srv := schedulingStub(t, map[string]interface{}{"success": false, "error": "slot taken"})
	defer srv.Close()

	svc, mail := newService(t, srv.URL)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitContact(ctx, sess.ID, validContact)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, sess.ID, "general")
	require.NoError(t, err)
	_, err = svc.Availability(ctx, sess.ID, nextMonday)
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, sess.ID, nextMonday, model.MustTimeSlot("11:00"))
	require.NoError(t, err)

	_, err = svc.Submit(ctx, sess.ID)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrUpstream, appErr.Code)

	after, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateReadyToSubmit, after.State)
	assert.Empty(t, mail.sent)
}

func TestAvailabilityFallsBackToStaticSchedule(t *testing.T) {
	// Unconfigured remote: availability equals the computed schedule.
	svc, _ := newService(t, "")
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitContact(ctx, sess.ID, validContact)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, sess.ID, "general")
	require.NoError(t, err)

	res, err := svc.Availability(ctx, sess.ID, nextMonday)
	require.NoError(t, err)

	calc := schedule.NewCalculator(testWeek, time.UTC)
	assert.Equal(t, calc.Slots(nextMonday, 30, testNow), res.Slots)
}

func TestAvailabilityRejectsClosedAndPastDates(t *testing.T) {
	svc, _ := newService(t, "")
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitContact(ctx, sess.ID, validContact)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, sess.ID, "general")
	require.NoError(t, err)

	sunday := model.Date{Year: 2026, Month: time.March, Day: 1}
	_, err = svc.Availability(ctx, sess.ID, sunday)
	assert.ErrorIs(t, err, errors.NewValidation("date"))

	yesterday := model.Date{Year: 2026, Month: time.February, Day: 24}
	_, err = svc.Availability(ctx, sess.ID, yesterday)
	assert.ErrorIs(t, err, errors.NewValidation("date"))
}

func TestChangingDateRequiresFreshSlotSelection(t *testing.T) {
	svc, _ := newService(t, "")
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	_, err = svc.SubmitContact(ctx, sess.ID, validContact)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, sess.ID, "general")
	require.NoError(t, err)

	_, err = svc.Availability(ctx, sess.ID, nextMonday)
	require.NoError(t, err)
	_, err = svc.SelectSlot(ctx, sess.ID, nextMonday, model.MustTimeSlot("11:00"))
	require.NoError(t, err)

	tuesday := model.Date{Year: 2026, Month: time.March, Day: 3}
	_, err = svc.Availability(ctx, sess.ID, tuesday)
	require.NoError(t, err)

	after, err := svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, after.SelectedSlot)

	// The Monday slot cannot be submitted against Tuesday.
	_, err = svc.SelectSlot(ctx, sess.ID, nextMonday, model.MustTimeSlot("11:00"))
	assert.Error(t, err)

	_, err = svc.SelectSlot(ctx, sess.ID, tuesday, model.MustTimeSlot("11:00"))
	require.NoError(t, err)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	svc, _ := newService(t, "")
	sess := session.New()

	_, err := svc.SubmitContact(context.Background(), sess.ID, validContact)
	assert.ErrorIs(t, err, errors.NewNotFound("session"))
}
