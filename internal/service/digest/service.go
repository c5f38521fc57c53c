package digest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/partstock/inventory-api/internal/email"
	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	"github.com/partstock/inventory-api/internal/service/recipient"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/messaging"
	"github.com/partstock/inventory-api/pkg/metrics"
)

const (
	outcomeSent    = "sent"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// Service sends the once-daily low-stock summary. Run is safe to invoke
// any number of times per day: the digest_records date uniqueness, not
// an application flag, guarantees at most one record and one email per
// calendar date.
type Service struct {
	parts    repository.PartRepository
	digests  repository.DigestRepository
	resolver *recipient.Resolver
	mailer   email.Service
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   *logger.Logger

	// now is swapped out in tests to pin the calendar date.
	now func() time.Time
}

func NewService(
	parts repository.PartRepository,
	digests repository.DigestRepository,
	resolver *recipient.Resolver,
	mailer email.Service,
	broker messaging.Broker,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		parts:    parts,
		digests:  digests,
		resolver: resolver,
		mailer:   mailer,
		broker:   broker,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// Run executes one digest attempt for the current calendar date.
func (s *Service) Run(ctx context.Context) error {
	today := s.now()

	exists, err := s.digests.ExistsForDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to check digest record: %w", err)
	}
	if exists {
		s.logger.Info("daily digest already sent", "date", today.Format(model.DigestDateFormat))
		s.metrics.DigestSkipped.Inc()
		return nil
	}

	// Strictly below threshold here; the per-mutation alert path uses
	// the inclusive comparison instead.
	lowParts, err := s.parts.ListLowStock(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to query low stock parts: %w", err)
	}

	record := &model.DigestRecord{
		DigestDate:    today,
		LowStockCount: len(lowParts),
	}

	recipients, err := s.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		s.logger.Error(nil, "no recipients configured for daily digest")
		record.ErrorDetail = "no recipients configured"
		return s.persist(ctx, record, outcomeFailed)
	}
	record.Recipients = recipients

	totalParts, err := s.parts.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count parts: %w", err)
	}

	msg := &email.Message{
		Subject:    fmt.Sprintf("Daily Stock Alert - %s", today.Format("January 2, 2006")),
		Body:       composeDigestBody(today, lowParts, totalParts, recipients),
		Recipients: recipients,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		sendErr := email.Classify(err)
		record.ErrorDetail = sendErr.Detail
		return s.persist(ctx, record, outcomeFailed)
	}

	record.Succeeded = true
	if err := s.persist(ctx, record, outcomeSent); err != nil {
		return err
	}

	s.publish(ctx, record)
	s.logger.Info("daily digest sent",
		"date", today.Format(model.DigestDateFormat),
		"low_stock", record.LowStockCount,
		"recipients", len(recipients),
	)
	return nil
}

// History returns the most recent digest records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*model.DigestRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	return s.digests.List(ctx, limit)
}

// persist writes the one record for today. A duplicate from a racing
// scheduler is success-equivalent: somebody already owns today's digest.
func (s *Service) persist(ctx context.Context, record *model.DigestRecord, outcome string) error {
	if err := s.digests.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateDigest) {
			s.logger.Info("lost digest race, already recorded for date",
				"date", record.DigestDate.Format(model.DigestDateFormat))
			s.metrics.DigestRuns.WithLabelValues(outcomeSkipped).Inc()
			return nil
		}
		return fmt.Errorf("failed to persist digest record: %w", err)
	}
	s.metrics.DigestRuns.WithLabelValues(outcome).Inc()
	return nil
}

func (s *Service) publish(ctx context.Context, record *model.DigestRecord) {
	msg := messaging.Message{Type: messaging.ChannelDigestSent, Payload: record}
	if err := s.broker.Publish(ctx, messaging.ChannelDigestSent, msg); err != nil {
		s.logger.Warn("failed to publish digest event")
	}
}

func composeDigestBody(today time.Time, lowParts []*model.Part, totalParts int, recipients []string) string {
	date := today.Format("January 2, 2006")

	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "This is your daily inventory stock report for %s.\n\n", date)

	if len(lowParts) > 0 {
		plural := ""
		if len(lowParts) > 1 {
			plural = "s"
		}
		fmt.Fprintf(&b, "ATTENTION REQUIRED: %d item%s below minimum threshold\n\n", len(lowParts), plural)
		b.WriteString("Low Stock Items:\n")
		b.WriteString("---------------------------------------------------------\n")
		for _, part := range lowParts {
			fmt.Fprintf(&b, "%s - Quantity: %d (Threshold: %d)\n", part.Name, part.Quantity, part.Threshold)
			if part.Supplier != "" {
				fmt.Fprintf(&b, "   Supplier: %s\n", part.Supplier)
			}
			b.WriteString("\n")
		}
		b.WriteString("---------------------------------------------------------\n\n")
		b.WriteString("Action Required:\n")
		b.WriteString("- Review these items in your inventory dashboard\n")
		b.WriteString("- Contact suppliers for restocking\n")
		b.WriteString("- Prioritize critical parts for immediate ordering\n\n")
	} else {
		b.WriteString("All stock levels are healthy today.\n\n")
		b.WriteString("No items are currently below their minimum threshold levels.\n")
		b.WriteString("All spare parts inventory is adequately stocked.\n\n")
		b.WriteString("Current Status:\n")
		fmt.Fprintf(&b, "- Total parts in inventory: %d\n", totalParts)
		b.WriteString("- Low stock items: 0\n")
		b.WriteString("- Status: All systems normal\n\n")
	}

	b.WriteString("---\n")
	b.WriteString("This is an automated daily report from Spare Parts Inventory System.\n")
	fmt.Fprintf(&b, "Sent to: %s", strings.Join(recipients, ", "))

	return b.String()
}
