package email

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/acube-health/acube-api/internal/config"
	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/metrics"
)

// Service sends transactional mail to the care team and clients
type Service interface {
	SendIntakeNotification(req *model.IntakeRequest) error
	SendBookingConfirmation(to string, booking *model.Booking) error
	SendBookingCancellation(to string, booking *model.Booking) error
}

type smtpService struct {
	dialer  *gomail.Dialer
	cfg     config.EmailConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(cfg config.EmailConfig, l *logger.Logger, m *metrics.Metrics) Service {
	return &smtpService{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:     cfg,
		logger:  l,
		metrics: m,
	}
}

// SendIntakeNotification alerts the care team that a new intake form
// arrived so they can reach out within one business day.
func (s *smtpService) SendIntakeNotification(req *model.IntakeRequest) error {
	var body strings.Builder
	fmt.Fprintf(&body, "A new intake request was submitted.\n\n")
	fmt.Fprintf(&body, "Name: %s\n", req.FullName)
	fmt.Fprintf(&body, "Email: %s\n", req.Email)
	fmt.Fprintf(&body, "Phone: %s\n", req.Phone)
	fmt.Fprintf(&body, "Therapy type: %s\n", req.TherapyType)
	fmt.Fprintf(&body, "Concerns: %s\n", strings.Join(req.Concerns, ", "))
	fmt.Fprintf(&body, "Preferred time: %s\n", req.PreferredTime)

	return s.send("intake", s.cfg.CareTeamEmail, "New intake request", body.String())
}

// SendBookingConfirmation tells a client their session is locked in
func (s *smtpService) SendBookingConfirmation(to string, booking *model.Booking) error {
	body := fmt.Sprintf(
		"Your session on %s from %s to %s is confirmed.\n\nIf you need to reschedule, please do so at least 24 hours in advance.",
		booking.StartTime.Format("Monday, 2 January 2006"),
		booking.StartTime.Format("15:04"),
		booking.EndTime.Format("15:04"),
	)
	return s.send("booking_confirmation", to, "Your session is confirmed", body)
}

// SendBookingCancellation notifies the other party of a cancellation
func (s *smtpService) SendBookingCancellation(to string, booking *model.Booking) error {
	reason := ""
	if booking.CancelReason != nil {
		reason = fmt.Sprintf("\n\nReason: %s", *booking.CancelReason)
	}
	body := fmt.Sprintf(
		"The session on %s at %s has been cancelled.%s",
		booking.StartTime.Format("Monday, 2 January 2006"),
		booking.StartTime.Format("15:04"),
		reason,
	)
	return s.send("booking_cancellation", to, "Session cancelled", body)
}

func (s *smtpService) send(kind, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient configured for %s email", kind)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		if s.metrics != nil {
			s.metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		}
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	if s.metrics != nil {
		s.metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	}
	s.logger.Info("email sent", "kind", kind, "to", to)
	return nil
}
