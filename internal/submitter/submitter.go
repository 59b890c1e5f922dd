// Package submitter turns a completed booking session into one creation
// request against the scheduling service.
package submitter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/session"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

// SchedulingClient is the outbound side of appointment creation.
type SchedulingClient interface {
	Configured() bool
	CreateAppointment(ctx context.Context, apt model.AppointmentRequest) error
}

type Submitter struct {
	client  SchedulingClient
	catalog model.Catalog
	logger  zerolog.Logger
}

func New(client SchedulingClient, catalog model.Catalog, logger zerolog.Logger) *Submitter {
	return &Submitter{
		client:  client,
		catalog: catalog,
		logger:  logger.With().Str("component", "submitter").Logger(),
	}
}

// BuildRequest snapshots a ready session into the immutable wire record.
func BuildRequest(s *session.Session) (model.AppointmentRequest, error) {
	if s.State != session.StateReadyToSubmit || s.SelectedSlot == nil {
		return model.AppointmentRequest{}, errors.NewStateConflict("session is not ready to submit")
	}
	return model.AppointmentRequest{
		Type:  s.ConsultationType,
		Date:  s.SelectedDate.String(),
		Time:  s.SelectedSlot.String(),
		Tutor: s.Tutor,
		Pet:   s.Pet,
	}, nil
}

// Submit sends exactly one creation request; it never retries. On success
// the confirmation echoes the submitted data and the caller transitions the
// session to submitted. On failure the session stays ready so the user can
// trigger another attempt.
func (s *Submitter) Submit(ctx context.Context, sess *session.Session) (*model.ConfirmationRecord, error) {
	apt, err := BuildRequest(sess)
	if err != nil {
		return nil, err
	}

	if !s.client.Configured() {
		return nil, errors.NewUpstream("appointment service is not configured", nil)
	}

	if err := s.client.CreateAppointment(ctx, apt); err != nil {
		s.logger.Error().Err(err).Str("date", apt.Date).Str("time", apt.Time).Msg("appointment creation failed")
		return nil, errors.NewUpstream("could not schedule the appointment, please try again", err)
	}

	ct, _ := s.catalog.Get(apt.Type)
	s.logger.Info().Str("date", apt.Date).Str("time", apt.Time).Str("type", apt.Type).Msg("appointment created")

	return &model.ConfirmationRecord{
		Appointment: apt,
		ServiceName: ct.Label,
		Duration:    ct.DurationMinutes,
	}, nil
}
