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

type partRepository struct {
	BaseRepository
}

func NewPartRepository(base BaseRepository) repository.PartRepository {
	return &partRepository{base}
}

func (r *partRepository) Create(ctx context.Context, part *model.Part) error {
	query := `
		INSERT INTO parts (
			id, name, quantity, threshold, supplier, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	part.ID = uuid.New()
	part.CreatedAt = time.Now()
	part.UpdatedAt = part.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		part.ID,
		part.Name,
		part.Quantity,
		part.Threshold,
		part.Supplier,
		part.CreatedAt,
		part.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "parts_name_key") {
			return fmt.Errorf("part %q already exists: %w", part.Name, err)
		}
		return fmt.Errorf("failed to create part: %w", err)
	}

	return nil
}

func (r *partRepository) Get(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	query := `SELECT * FROM parts WHERE id = $1`

	var part model.Part
	if err := r.db.GetContext(ctx, &part, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get part: %w", err)
	}

	return &part, nil
}

func (r *partRepository) Update(ctx context.Context, part *model.Part) error {
	query := `
		UPDATE parts SET
			name = $1,
			quantity = $2,
			threshold = $3,
			supplier = $4,
			updated_at = $5
		WHERE id = $6
	`

	part.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		part.Name,
		part.Quantity,
		part.Threshold,
		part.Supplier,
		part.UpdatedAt,
		part.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update part: %w", err)
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

func (r *partRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Alert history keeps only snapshots of the part, so deletion does
	// not cascade into the alert log.
	result, err := r.db.ExecContext(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete part: %w", err)
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

func (r *partRepository) List(ctx context.Context) ([]*model.Part, error) {
	query := `SELECT * FROM parts ORDER BY name`

	var parts []*model.Part
	if err := r.db.SelectContext(ctx, &parts, query); err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}

	return parts, nil
}

func (r *partRepository) ListLowStock(ctx context.Context, strict bool) ([]*model.Part, error) {
	// The digest report uses the strict comparison, the dashboard and
	// alert path the inclusive one.
	query := `SELECT * FROM parts WHERE quantity <= threshold ORDER BY name`
	if strict {
		query = `SELECT * FROM parts WHERE quantity < threshold ORDER BY name`
	}

	var parts []*model.Part
	if err := r.db.SelectContext(ctx, &parts, query); err != nil {
		return nil, fmt.Errorf("failed to list low stock parts: %w", err)
	}

	return parts, nil
}

func (r *partRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM parts`); err != nil {
		return 0, fmt.Errorf("failed to count parts: %w", err)
	}
	return count, nil
}
