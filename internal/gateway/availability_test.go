package gateway

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/schedule"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

type fakeClient struct {
	configured bool
	calls      int
	slots      []model.TimeSlot
	err        error
}

func (f *fakeClient) Configured() bool { return f.configured }

func (f *fakeClient) CheckAvailability(ctx context.Context, date model.Date, consultationType string) ([]model.TimeSlot, error) {
	f.calls++
	return f.slots, f.err
}

func testCatalog() model.Catalog {
	return model.Catalog{
		"general":   {Key: "general", Label: "Consulta General", DurationMinutes: 30},
		"specialty": {Key: "specialty", Label: "Consulta Especialidad", DurationMinutes: 60},
	}
}

func testCalc() *schedule.Calculator {
	week := model.WeeklySchedule{
		time.Monday: {Open: model.MustTimeSlot("10:30"), Close: model.MustTimeSlot("19:00")},
	}
	return schedule.NewCalculator(week, time.UTC)
}

var monday = model.Date{Year: 2026, Month: time.March, Day: 2}

func fixedClock() time.Time {
	return time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)
}

func TestUnconfiguredUsesStaticWithoutNetworkCall(t *testing.T) {
	client := &fakeClient{configured: false}
	calc := testCalc()
	g := New(calc, testCatalog(), client, nil, zerolog.Nop()).WithClock(fixedClock)

	res, err := g.CheckAvailability(context.Background(), monday, "general")
	require.NoError(t, err)
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, calc.Slots(monday, 30, fixedClock()), res.Slots)
}

func TestRemoteResultPassedThrough(t *testing.T) {
	client := &fakeClient{
		configured: true,
		slots:      []model.TimeSlot{model.MustTimeSlot("11:00"), model.MustTimeSlot("15:30")},
	}
	g := New(testCalc(), testCatalog(), client, nil, zerolog.Nop()).WithClock(fixedClock)

	res, err := g.CheckAvailability(context.Background(), monday, "general")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, client.slots, res.Slots)
	assert.Equal(t, monday, res.Date)
}

func TestRemoteFailureFallsBackSilently(t *testing.T) {
	client := &fakeClient{configured: true, err: fmt.Errorf("scheduling script error: calendar unavailable")}
	calc := testCalc()
	g := New(calc, testCatalog(), client, nil, zerolog.Nop()).WithClock(fixedClock)

	res, err := g.CheckAvailability(context.Background(), monday, "general")
	require.NoError(t, err)
	assert.Equal(t, calc.Slots(monday, 30, fixedClock()), res.Slots)
}

func TestRateLimitFailsFastWithoutFallback(t *testing.T) {
	client := &fakeClient{configured: true, slots: []model.TimeSlot{model.MustTimeSlot("11:00")}}
	limiter := rate.NewLimiter(rate.Every(time.Minute), 1)
	g := New(testCalc(), testCatalog(), client, limiter, zerolog.Nop()).WithClock(fixedClock)

	_, err := g.CheckAvailability(context.Background(), monday, "general")
	require.NoError(t, err)

	_, err = g.CheckAvailability(context.Background(), monday, "general")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewRateLimited())
	assert.Equal(t, 1, client.calls)
}

func TestUnknownConsultationType(t *testing.T) {
	g := New(testCalc(), testCatalog(), &fakeClient{}, nil, zerolog.Nop())

	_, err := g.CheckAvailability(context.Background(), monday, "dermatologia")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.NewValidation("type"))
}

func TestEmptyAvailabilityIsNotAnError(t *testing.T) {
	client := &fakeClient{configured: true, slots: []model.TimeSlot{}}
	g := New(testCalc(), testCatalog(), client, nil, zerolog.Nop()).WithClock(fixedClock)

	res, err := g.CheckAvailability(context.Background(), monday, "general")
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
}
