package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partstock/inventory-api/internal/email"
	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	"github.com/partstock/inventory-api/internal/service/recipient"
	"github.com/partstock/inventory-api/pkg/logger"
	"github.com/partstock/inventory-api/pkg/messaging"
	"github.com/partstock/inventory-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test_alert")

type fakeAlertRepo struct {
	mu     sync.Mutex
	alerts []*model.Alert
}

func (f *fakeAlertRepo) Create(_ context.Context, alert *model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.PartID == alert.PartID && a.IsOpen() {
			return repository.ErrDuplicateOpenAlert
		}
	}
	alert.ID = uuid.New()
	alert.CreatedAt = time.Now()
	stored := *alert
	f.alerts = append(f.alerts, &stored)
	return nil
}

func (f *fakeAlertRepo) UpdateStatus(_ context.Context, alert *model.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.ID == alert.ID {
			a.Status = alert.Status
			a.Recipients = alert.Recipients
			a.ErrorDetail = alert.ErrorDetail
			a.ErrorCategory = alert.ErrorCategory
			a.ResolvedAt = alert.ResolvedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeAlertRepo) GetOpenForPart(_ context.Context, partID uuid.UUID) (*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.alerts {
		if a.PartID == partID && a.IsOpen() {
			found := *a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAlertRepo) ResolveOpenForPart(_ context.Context, partID uuid.UUID, resolvedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var resolved int64
	for _, a := range f.alerts {
		if a.PartID == partID && a.IsOpen() {
			a.Status = model.AlertStatusResolved
			at := resolvedAt
			a.ResolvedAt = &at
			resolved++
		}
	}
	return resolved, nil
}

func (f *fakeAlertRepo) ListActive(_ context.Context) ([]*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Alert
	for _, a := range f.alerts {
		if a.IsOpen() {
			found := *a
			out = append(out, &found)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) ListRecent(_ context.Context, since time.Time) ([]*model.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Alert
	for _, a := range f.alerts {
		if !a.CreatedAt.Before(since) {
			found := *a
			out = append(out, &found)
		}
	}
	return out, nil
}

func (f *fakeAlertRepo) openCount(partID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.alerts {
		if a.PartID == partID && a.IsOpen() {
			count++
		}
	}
	return count
}

func (f *fakeAlertRepo) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

type fakeUserRepo struct {
	adminEmails     []string
	superuserEmails []string
}

func (f *fakeUserRepo) ListRoleEmails(_ context.Context, _ string) ([]string, error) {
	return f.adminEmails, nil
}

func (f *fakeUserRepo) ListSuperuserEmails(_ context.Context) ([]string, error) {
	return f.superuserEmails, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []*email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg *email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testService struct {
	svc    *Service
	alerts *fakeAlertRepo
	mailer *fakeMailer
}

func newTestService(t *testing.T, users *fakeUserRepo, fallback []string, mailErr error) *testService {
	t.Helper()
	log := logger.NewLogger(nil)
	alerts := &fakeAlertRepo{}
	mailer := &fakeMailer{err: mailErr}
	resolver := recipient.NewResolver(users, fallback, log)
	svc := NewService(alerts, resolver, mailer, messaging.NewNoopBroker(), testMetrics, log, 7)
	return &testService{svc: svc, alerts: alerts, mailer: mailer}
}

func lowPart(name string) *model.Part {
	return &model.Part{
		ID:        uuid.New(),
		Name:      name,
		Quantity:  2,
		Threshold: 10,
		Supplier:  "Test Supplier Corp",
		UpdatedAt: time.Now(),
	}
}

func TestEvaluateSendsAlert(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Demo Bearing")

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, ts.mailer.sentCount())

	open, err := ts.alerts.GetOpenForPart(context.Background(), part.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusSent, open.Status)
	assert.Equal(t, "Demo Bearing", open.PartName)
	assert.Equal(t, 2, open.Quantity)
	assert.Equal(t, 10, open.Threshold)
	assert.Equal(t, "Test Supplier Corp", open.Supplier)
	assert.Equal(t, []string{"admin@x.com"}, []string(open.Recipients))
}

func TestEvaluateSuppressesDuplicate(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Oil Filter")

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.False(t, sent)

	assert.Equal(t, 1, ts.alerts.total())
	assert.Equal(t, 1, ts.mailer.sentCount())
}

func TestEvaluateResolvesOnRecovery(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Drive Belt")

	_, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	require.Equal(t, 1, ts.alerts.openCount(part.ID))

	part.Quantity = 15
	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.False(t, sent, "resolution must not send email")
	assert.Equal(t, 0, ts.alerts.openCount(part.ID))
	assert.Equal(t, 1, ts.mailer.sentCount())

	// Going low again opens exactly one fresh alert.
	part.Quantity = 2
	sent, err = ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 1, ts.alerts.openCount(part.ID))
	assert.Equal(t, 2, ts.alerts.total())
	assert.Equal(t, 2, ts.mailer.sentCount())
}

func TestEvaluateNotLowIsNoOp(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Gasket")
	part.Quantity = 50

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, ts.alerts.total())
	assert.Equal(t, 0, ts.mailer.sentCount())
}

func TestEvaluateAtThresholdIsLow(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Spark Plug")
	part.Quantity = 10 // equal to threshold

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestEvaluateNoRecipients(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{}, nil, nil)
	part := lowPart("Demo Bearing")

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Equal(t, 0, ts.mailer.sentCount())

	require.Equal(t, 1, ts.alerts.total())
	alert := ts.alerts.alerts[0]
	assert.Equal(t, model.AlertStatusFailed, alert.Status)
	assert.Equal(t, "no recipients configured", alert.ErrorDetail)
	assert.Equal(t, "no_recipients", alert.ErrorCategory)
	// A failed alert does not block a later retry.
	assert.Equal(t, 0, ts.alerts.openCount(part.ID))
}

func TestEvaluateSuperuserFallback(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{superuserEmails: []string{"a@x.com"}}, nil, nil)
	part := lowPart("Demo Bearing")

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)
	assert.True(t, sent)
	require.Equal(t, 1, ts.mailer.sentCount())
	assert.Equal(t, []string{"a@x.com"}, ts.mailer.sent[0].Recipients)
}

func TestEvaluateMailFailure(t *testing.T) {
	mailErr := errors.New("dial tcp: connection refused")
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, mailErr)
	part := lowPart("Demo Bearing")

	sent, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err, "mail failures must not surface to the mutation caller")
	assert.False(t, sent)

	require.Equal(t, 1, ts.alerts.total())
	alert := ts.alerts.alerts[0]
	assert.Equal(t, model.AlertStatusFailed, alert.Status)
	assert.Equal(t, string(email.FailureNetwork), alert.ErrorCategory)
	assert.Contains(t, alert.ErrorDetail, "connection refused")
}

func TestEvaluateConcurrentSameItem(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Demo Bearing")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.svc.Evaluate(context.Background(), part)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ts.alerts.openCount(part.ID))
	assert.Equal(t, 1, ts.alerts.total())
	assert.Equal(t, 1, ts.mailer.sentCount())
}

func TestEvaluateMessageContent(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)
	part := lowPart("Demo Bearing")

	_, err := ts.svc.Evaluate(context.Background(), part)
	require.NoError(t, err)

	require.Equal(t, 1, ts.mailer.sentCount())
	msg := ts.mailer.sent[0]
	assert.Equal(t, "Low Stock Alert: Demo Bearing", msg.Subject)
	assert.Contains(t, msg.Body, "Part Name: Demo Bearing")
	assert.Contains(t, msg.Body, "Current Quantity: 2")
	assert.Contains(t, msg.Body, "Minimum Threshold: 10")
	assert.Contains(t, msg.Body, "Supplier Name: Test Supplier Corp")
	assert.Equal(t, []string{"admin@x.com"}, msg.Recipients)
}

func TestRecentAlerts(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)

	_, err := ts.svc.Evaluate(context.Background(), lowPart("Demo Bearing"))
	require.NoError(t, err)
	_, err = ts.svc.Evaluate(context.Background(), lowPart("Oil Filter"))
	require.NoError(t, err)

	recent, err := ts.svc.RecentAlerts(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	active, err := ts.svc.ActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSendTestEmail(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{adminEmails: []string{"admin@x.com"}}, nil, nil)

	recipients, err := ts.svc.SendTestEmail(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@x.com"}, recipients)
	assert.Equal(t, 1, ts.mailer.sentCount())
}

func TestSendTestEmailNoRecipients(t *testing.T) {
	ts := newTestService(t, &fakeUserRepo{}, nil, nil)

	_, err := ts.svc.SendTestEmail(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no recipients configured")
	assert.Equal(t, 0, ts.mailer.sentCount())
}
