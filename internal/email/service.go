// Package email sends booking confirmations. Delivery is best effort: a
// failed email never fails the booking, the appointment is already on the
// calendar by then.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/vet-tarapaca/booking-api/internal/model"
)

type Service interface {
	SendConfirmation(ctx context.Context, rec *model.ConfirmationRecord) error
}

type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	ClinicCopy string // optional clinic inbox that receives a copy
}

type smtpService struct {
	dialer *gomail.Dialer
	cfg    Config
	logger zerolog.Logger
}

func NewSMTPService(cfg Config, logger zerolog.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
}

func (s *smtpService) SendConfirmation(ctx context.Context, rec *model.ConfirmationRecord) error {
	apt := rec.Appointment

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", apt.Tutor.Email)
	if s.cfg.ClinicCopy != "" {
		m.SetHeader("Bcc", s.cfg.ClinicCopy)
	}
	m.SetHeader("Subject", fmt.Sprintf("Cita confirmada: %s, %s %s", apt.Pet.Name, apt.Date, apt.Time))
	m.SetBody("text/html", confirmationBody(rec))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	s.logger.Info().Str("to", apt.Tutor.Email).Str("date", apt.Date).Msg("confirmation email sent")
	return nil
}

func confirmationBody(rec *model.ConfirmationRecord) string {
	apt := rec.Appointment
	return fmt.Sprintf(`<h2>¡Cita agendada exitosamente!</h2>
<p>Hola %s, tu cita fue confirmada y agregada al calendario de la clínica.</p>
<ul>
  <li><strong>Mascota:</strong> %s (%s)</li>
  <li><strong>Tipo:</strong> %s (%d minutos)</li>
  <li><strong>Fecha:</strong> %s</li>
  <li><strong>Hora:</strong> %s</li>
</ul>
<p>Por favor llega 10 minutos antes de tu cita.</p>`,
		apt.Tutor.Name, apt.Pet.Name, apt.Pet.Species,
		rec.ServiceName, rec.Duration, apt.Date, apt.Time)
}

// Noop is used when SMTP is not configured.
type Noop struct{}

func (Noop) SendConfirmation(ctx context.Context, rec *model.ConfirmationRecord) error {
	return nil
}
