package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/email"
	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	"github.com/partstock/inventory-api/internal/service/recipient"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/messaging"
	"github.com/partstock/inventory-api/pkg/metrics"
)

const (
	categoryNoRecipients = "no_recipients"
	errNoRecipients      = "no recipients configured"
)

// Service is the alert engine. Every code path that changes a part's
// quantity or threshold calls Evaluate synchronously; the engine keeps
// at most one open alert per part, resolves alerts when stock recovers
// and appends to the permanent alert log.
type Service struct {
	alerts   repository.AlertRepository
	resolver *recipient.Resolver
	mailer   email.Service
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   *logger.Logger

	recentDays int

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(
	alerts repository.AlertRepository,
	resolver *recipient.Resolver,
	mailer email.Service,
	broker messaging.Broker,
	m *metrics.Metrics,
	log *logger.Logger,
	recentDays int,
) *Service {
	if recentDays <= 0 {
		recentDays = 7
	}
	return &Service{
		alerts:     alerts,
		resolver:   resolver,
		mailer:     mailer,
		broker:     broker,
		metrics:    m,
		logger:     log,
		recentDays: recentDays,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// Evaluate inspects the part after a mutation and reports whether an
// alert email was actually dispatched. It is idempotent: re-evaluating
// unchanged state produces no duplicate side effects. Email and
// alert-log write failures are absorbed and logged; only an unreadable
// store surfaces as an error.
func (s *Service) Evaluate(ctx context.Context, part *model.Part) (bool, error) {
	lock := s.partLock(part.ID)
	lock.Lock()
	defer lock.Unlock()

	if !part.IsLow() {
		s.resolveForPart(ctx, part)
		return false, nil
	}

	_, err := s.alerts.GetOpenForPart(ctx, part.ID)
	if err == nil {
		s.logger.Debug("suppressing duplicate alert", "part", part.Name)
		s.metrics.AlertsSuppressed.Inc()
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("failed to check open alerts: %w", err)
	}

	alert := &model.Alert{
		PartID:    part.ID,
		PartName:  part.Name,
		Quantity:  part.Quantity,
		Threshold: part.Threshold,
		Supplier:  part.Supplier,
		Status:    model.AlertStatusPending,
	}

	if err := s.alerts.Create(ctx, alert); err != nil {
		if errors.Is(err, repository.ErrDuplicateOpenAlert) {
			// Lost the race to a concurrent evaluation; same as dedupe.
			s.metrics.AlertsSuppressed.Inc()
			return false, nil
		}
		s.logger.Error(err, "failed to persist alert", "part", part.Name)
		return false, nil
	}

	recipients, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.fail(ctx, alert, categoryNoRecipients, fmt.Sprintf("recipient resolution failed: %v", err))
		return false, nil
	}
	if len(recipients) == 0 {
		s.logger.Error(nil, "no recipients available for low stock alert", "part", part.Name)
		s.fail(ctx, alert, categoryNoRecipients, errNoRecipients)
		return false, nil
	}

	msg := composeAlertEmail(part, alert)
	msg.Recipients = recipients
	if err := s.mailer.Send(ctx, msg); err != nil {
		sendErr := email.Classify(err)
		s.fail(ctx, alert, string(sendErr.Category), sendErr.Detail)
		return false, nil
	}

	alert.Status = model.AlertStatusSent
	alert.Recipients = recipients
	if err := s.alerts.UpdateStatus(ctx, alert); err != nil {
		s.logger.Error(err, "failed to mark alert as sent", "alert_id", alert.ID)
	}

	s.metrics.AlertsSent.Inc()
	s.publish(ctx, messaging.ChannelAlertSent, alert)
	s.logger.Info("low stock alert sent",
		"part", part.Name,
		"quantity", part.Quantity,
		"threshold", part.Threshold,
		"recipients", len(recipients),
	)
	return true, nil
}

// ActiveAlerts returns every alert still counting against the dedup
// invariant, newest first.
func (s *Service) ActiveAlerts(ctx context.Context) ([]*model.Alert, error) {
	return s.alerts.ListActive(ctx)
}

// RecentAlerts returns alerts created within the last days days; days
// <= 0 falls back to the configured default.
func (s *Service) RecentAlerts(ctx context.Context, days int) ([]*model.Alert, error) {
	if days <= 0 {
		days = s.recentDays
	}
	since := time.Now().AddDate(0, 0, -days)
	return s.alerts.ListRecent(ctx, since)
}

// SendTestEmail verifies the mail path end to end and returns the
// recipients the test message was addressed to.
func (s *Service) SendTestEmail(ctx context.Context) ([]string, error) {
	recipients, err := s.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil, errors.New("no recipients configured; add administrator users with email addresses or set a fallback list")
	}

	msg := &email.Message{
		Subject:    "Test Email - Spare Parts Inventory System",
		Body:       composeTestBody(recipients),
		Recipients: recipients,
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return recipients, email.Classify(err)
	}

	return recipients, nil
}

func (s *Service) resolveForPart(ctx context.Context, part *model.Part) {
	resolved, err := s.alerts.ResolveOpenForPart(ctx, part.ID, time.Now())
	if err != nil {
		s.logger.Error(err, "failed to resolve open alerts", "part", part.Name)
		return
	}
	if resolved == 0 {
		return
	}

	s.metrics.AlertsResolved.Add(float64(resolved))
	s.publish(ctx, messaging.ChannelAlertResolved, map[string]interface{}{
		"part_id":   part.ID,
		"part_name": part.Name,
		"resolved":  resolved,
	})
	s.logger.Info("resolved open alerts after restock",
		"part", part.Name,
		"count", resolved,
	)
}

func (s *Service) fail(ctx context.Context, alert *model.Alert, category, detail string) {
	alert.Status = model.AlertStatusFailed
	alert.ErrorCategory = category
	alert.ErrorDetail = detail
	if err := s.alerts.UpdateStatus(ctx, alert); err != nil {
		s.logger.Error(err, "failed to mark alert as failed", "alert_id", alert.ID)
	}
	s.metrics.AlertsFailed.WithLabelValues(category).Inc()
	s.publish(ctx, messaging.ChannelAlertFailed, alert)
}

func (s *Service) publish(ctx context.Context, channel string, payload interface{}) {
	if err := s.broker.Publish(ctx, channel, messaging.Message{Type: channel, Payload: payload}); err != nil {
		s.logger.Warn("failed to publish alert event", "channel", channel)
	}
}

func (s *Service) partLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

func composeAlertEmail(part *model.Part, alert *model.Alert) *email.Message {
	supplier := part.Supplier
	if supplier == "" {
		supplier = "Not specified"
	}

	var b strings.Builder
	b.WriteString("URGENT: LOW STOCK ALERT\n\n")
	b.WriteString("Part Details:\n")
	b.WriteString("----------------------------------------\n")
	fmt.Fprintf(&b, "Part Name: %s\n", part.Name)
	fmt.Fprintf(&b, "Current Quantity: %d\n", part.Quantity)
	fmt.Fprintf(&b, "Minimum Threshold: %d\n", part.Threshold)
	fmt.Fprintf(&b, "Supplier Name: %s\n", supplier)
	fmt.Fprintf(&b, "Last Updated: %s\n\n", part.UpdatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("SUGGESTED ACTION:\n")
	b.WriteString("Please restock this item as soon as possible.\n\n")
	b.WriteString("Alert Details:\n")
	b.WriteString("----------------------------------------\n")
	fmt.Fprintf(&b, "Alert ID: %s\n", alert.ID)
	fmt.Fprintf(&b, "Alert Time: %s\n\n", alert.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("This is an automated message from the Spare Parts Inventory System.\n")
	b.WriteString("Please do not reply to this email.")

	return &email.Message{
		Subject: fmt.Sprintf("Low Stock Alert: %s", part.Name),
		Body:    b.String(),
	}
}

func composeTestBody(recipients []string) string {
	return fmt.Sprintf(`This is a test email from the Spare Parts Inventory System.

If you receive this message, your email configuration is working correctly.

Recipients: %s
Timestamp: %s

Note: This test email was sent to all active administrators with configured email addresses.`,
		strings.Join(recipients, ", "),
		time.Now().Format("2006-01-02 15:04:05"),
	)
}
