package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
)

type alertRepository struct {
	BaseRepository
}

func NewAlertRepository(base BaseRepository) repository.AlertRepository {
	return &alertRepository{base}
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		INSERT INTO alerts (
			id, part_id, part_name, quantity, threshold, supplier,
			status, recipients, error_detail, error_category,
			created_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	alert.ID = uuid.New()
	alert.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.PartID,
		alert.PartName,
		alert.Quantity,
		alert.Threshold,
		alert.Supplier,
		alert.Status,
		alert.Recipients,
		alert.ErrorDetail,
		alert.ErrorCategory,
		alert.CreatedAt,
		alert.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "alerts_one_open_per_part") {
			return repository.ErrDuplicateOpenAlert
		}
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

func (r *alertRepository) UpdateStatus(ctx context.Context, alert *model.Alert) error {
	query := `
		UPDATE alerts SET
			status = $1,
			recipients = $2,
			error_detail = $3,
			error_category = $4,
			resolved_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		alert.Status,
		alert.Recipients,
		alert.ErrorDetail,
		alert.ErrorCategory,
		alert.ResolvedAt,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *alertRepository) GetOpenForPart(ctx context.Context, partID uuid.UUID) (*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE part_id = $1 AND status IN ('pending', 'sent')
		ORDER BY created_at DESC
		LIMIT 1
	`

	var alert model.Alert
	if err := r.db.GetContext(ctx, &alert, query, partID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get open alert: %w", err)
	}

	return &alert, nil
}

func (r *alertRepository) ResolveOpenForPart(ctx context.Context, partID uuid.UUID, resolvedAt time.Time) (int64, error) {
	query := `
		UPDATE alerts SET
			status = 'resolved',
			resolved_at = $1
		WHERE part_id = $2 AND status IN ('pending', 'sent')
	`

	result, err := r.db.ExecContext(ctx, query, resolvedAt, partID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve alerts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func (r *alertRepository) ListActive(ctx context.Context) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE status IN ('pending', 'sent')
		ORDER BY created_at DESC
	`

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) ListRecent(ctx context.Context, since time.Time) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alerts
		WHERE created_at >= $1
		ORDER BY created_at DESC
	`

	var alerts []*model.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, since); err != nil {
		return nil, fmt.Errorf("failed to list recent alerts: %w", err)
	}

	return alerts, nil
}
