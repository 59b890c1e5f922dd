// Package gateway answers availability queries for the booking widget.
// Queries degrade, never fail: if the remote calendar cannot answer, the
// caller gets the static schedule instead of an error. Showing *something*
// is load-bearing product behavior here.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/schedule"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

// SchedulingClient is the outbound side of an availability query.
type SchedulingClient interface {
	Configured() bool
	CheckAvailability(ctx context.Context, date model.Date, consultationType string) ([]model.TimeSlot, error)
}

// Gateway resolves (date, consultation type) to bookable slots.
type Gateway struct {
	calc    *schedule.Calculator
	catalog model.Catalog
	client  SchedulingClient
	limiter *rate.Limiter
	now     func() time.Time
	logger  zerolog.Logger
}

func New(calc *schedule.Calculator, catalog model.Catalog, client SchedulingClient, limiter *rate.Limiter, logger zerolog.Logger) *Gateway {
	return &Gateway{
		calc:    calc,
		catalog: catalog,
		client:  client,
		limiter: limiter,
		now:     time.Now,
		logger:  logger.With().Str("component", "gateway").Logger(),
	}
}

// WithClock overrides the reference clock. Test hook.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// CheckAvailability returns the ordered slots for one date and consultation
// type. Results are computed fresh per call; nothing is cached across dates.
//
// The rate limit is the one path that fails fast: tripping it is a local
// policy decision, so no fallback applies. Every remote failure mode
// (transport, HTTP status, success:false) falls back to the static schedule.
func (g *Gateway) CheckAvailability(ctx context.Context, date model.Date, consultationType string) (*model.AvailabilityResult, error) {
	if g.limiter != nil && !g.limiter.Allow() {
		return nil, errors.NewRateLimited()
	}

	ct, ok := g.catalog.Get(consultationType)
	if !ok {
		return nil, errors.NewValidation("type")
	}

	if g.client == nil || !g.client.Configured() {
		return g.static(date, ct), nil
	}

	slots, err := g.client.CheckAvailability(ctx, date, consultationType)
	if err != nil {
		g.logger.Warn().Err(err).Str("date", date.String()).Msg("availability query degraded to static schedule")
		return g.static(date, ct), nil
	}

	return &model.AvailabilityResult{Date: date, Type: ct.Key, Slots: slots}, nil
}

func (g *Gateway) static(date model.Date, ct model.ConsultationType) *model.AvailabilityResult {
	return &model.AvailabilityResult{
		Date:  date,
		Type:  ct.Key,
		Slots: g.calc.Slots(date, ct.DurationMinutes, g.now()),
	}
}
