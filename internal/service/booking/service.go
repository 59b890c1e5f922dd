// Package booking orchestrates the wizard: it owns the clock, loads and
// saves sessions around each transition, and wires the availability gateway
// and the submitter to the state machine.
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vet-tarapaca/booking-api/internal/email"
	"github.com/vet-tarapaca/booking-api/internal/gateway"
	"github.com/vet-tarapaca/booking-api/internal/model"
	"github.com/vet-tarapaca/booking-api/internal/session"
	"github.com/vet-tarapaca/booking-api/internal/submitter"
	"github.com/vet-tarapaca/booking-api/pkg/errors"
)

type Service struct {
	store     session.Store
	gateway   *gateway.Gateway
	submitter *submitter.Submitter
	emailSvc  email.Service
	catalog   model.Catalog
	week      model.WeeklySchedule
	loc       *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

func NewService(
	store session.Store,
	gw *gateway.Gateway,
	sub *submitter.Submitter,
	emailSvc email.Service,
	catalog model.Catalog,
	week model.WeeklySchedule,
	loc *time.Location,
	logger zerolog.Logger,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	if emailSvc == nil {
		emailSvc = email.Noop{}
	}
	return &Service{
		store:     store,
		gateway:   gw,
		submitter: sub,
		emailSvc:  emailSvc,
		catalog:   catalog,
		week:      week,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With().Str("component", "booking").Logger(),
	}
}

// WithClock overrides the reference clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Catalog exposes the configured consultation types for the widget.
func (s *Service) Catalog() model.Catalog {
	return s.catalog
}

func (s *Service) CreateSession(ctx context.Context) (*session.Session, error) {
	sess := session.New()
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, errors.NewInternal(err)
	}
	s.logger.Debug().Str("session_id", sess.ID.String()).Msg("session created")
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return s.store.Get(ctx, id)
}

// SubmitContact runs the step 1 -> 2 transition.
func (s *Service) SubmitContact(ctx context.Context, id uuid.UUID, req model.ContactRequest) (*session.Session, error) {
	return s.transition(ctx, id, func(sess *session.Session) error {
		return sess.SubmitContact(
			model.Tutor{Name: req.TutorName, Phone: req.TutorPhone, Email: req.TutorEmail},
			model.Pet{Name: req.PetName, Species: req.PetSpecies, Age: req.PetAge},
		)
	})
}

// SelectService runs the step 2 -> 3 transition.
func (s *Service) SelectService(ctx context.Context, id uuid.UUID, typeKey string) (*session.Session, error) {
	return s.transition(ctx, id, func(sess *session.Session) error {
		return sess.SelectService(typeKey, s.catalog)
	})
}

// Availability selects the date on the session and resolves its slots. The
// result is recorded on the session only if, once it arrives, the session
// still points at the same date and service; a response racing a newer date
// selection is dropped by that comparison rather than by cancellation.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, date model.Date) (*model.AvailabilityResult, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	today := model.DateOf(s.now().In(s.loc))
	if err := sess.SelectDate(date, s.week, today); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, errors.NewInternal(err)
	}

	res, err := s.gateway.CheckAvailability(ctx, date, sess.ConsultationType)
	if err != nil {
		return nil, err
	}

	// Reload: the session may have moved while the query was in flight.
	sess, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.RecordAvailability(res) {
		if err := s.store.Put(ctx, sess); err != nil {
			return nil, errors.NewInternal(err)
		}
	} else {
		s.logger.Debug().
			Str("session_id", id.String()).
			Str("date", res.Date.String()).
			Msg("discarded stale availability result")
	}
	return res, nil
}

// SelectSlot runs the step 3 -> ready transition. The date must be the one
// the last availability query answered for.
func (s *Service) SelectSlot(ctx context.Context, id uuid.UUID, date model.Date, slot model.TimeSlot) (*session.Session, error) {
	return s.transition(ctx, id, func(sess *session.Session) error {
		if sess.SelectedDate != date {
			return errors.NewValidation("date")
		}
		return sess.SelectSlot(slot)
	})
}

// Back runs a backward transition.
func (s *Service) Back(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	return s.transition(ctx, id, func(sess *session.Session) error {
		return sess.Back()
	})
}

// Submit sends the completed session to the scheduling service. Exactly one
// creation call per invocation; on failure the session stays ready so the
// user can retry. On success the session becomes submitted and the
// confirmation email goes out best effort.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*model.ConfirmationRecord, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rec, err := s.submitter.Submit(ctx, sess)
	if err != nil {
		return nil, err
	}

	if err := sess.MarkSubmitted(); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := s.emailSvc.SendConfirmation(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id.String()).Msg("confirmation email failed")
	}

	return rec, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, fn func(*session.Session) error) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return nil, errors.NewInternal(err)
	}
	return sess, nil
}
