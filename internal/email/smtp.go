package email

import (
	"context"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/partstock/inventory-api/internal/config"
	"github.com/partstock/inventory-api/pkg/circuitbreaker"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/metrics"
)

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	cb      *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewSMTPService builds the gomail-backed mailer. Delivery runs behind a
// circuit breaker so a dead SMTP host fails fast instead of stalling
// every inventory mutation.
func NewSMTPService(cfg config.SMTPConfig, log *logger.Logger, m *metrics.Metrics) Service {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "smtp",
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	})

	return &smtpService{
		dialer:  dialer,
		from:    cfg.From,
		cb:      cb,
		logger:  log,
		metrics: m,
	}
}

func (s *smtpService) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Recipients...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	start := time.Now()
	err := s.cb.Execute(func() error {
		return s.dialer.DialAndSend(m)
	})
	s.metrics.MailSendLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		sendErr := Classify(err)
		s.metrics.MailSendErrors.WithLabelValues(string(sendErr.Category)).Inc()
		s.logger.Error(err, "mail delivery failed",
			"subject", msg.Subject,
			"recipients", len(msg.Recipients),
		)
		return sendErr
	}

	s.logger.Info("mail delivered",
		"subject", msg.Subject,
		"recipients", len(msg.Recipients),
	)
	return nil
}
