package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
)

type digestRepository struct {
	BaseRepository
}

func NewDigestRepository(base BaseRepository) repository.DigestRepository {
	return &digestRepository{base}
}

func (r *digestRepository) Create(ctx context.Context, record *model.DigestRecord) error {
	query := `
		INSERT INTO digest_records (
			id, digest_date, sent_at, low_stock_count, recipients,
			succeeded, error_detail
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	record.ID = uuid.New()
	record.SentAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.DigestDate.Format(model.DigestDateFormat),
		record.SentAt,
		record.LowStockCount,
		record.Recipients,
		record.Succeeded,
		record.ErrorDetail,
	)
	if err != nil {
		if isUniqueViolation(err, "digest_records_digest_date_key") {
			return repository.ErrDuplicateDigest
		}
		return fmt.Errorf("failed to create digest record: %w", err)
	}

	return nil
}

func (r *digestRepository) ExistsForDate(ctx context.Context, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM digest_records WHERE digest_date = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, date.Format(model.DigestDateFormat)); err != nil {
		return false, fmt.Errorf("failed to check digest record: %w", err)
	}

	return exists, nil
}

func (r *digestRepository) List(ctx context.Context, limit int) ([]*model.DigestRecord, error) {
	query := `
		SELECT * FROM digest_records
		ORDER BY digest_date DESC
		LIMIT $1
	`

	var records []*model.DigestRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list digest records: %w", err)
	}

	return records, nil
}
