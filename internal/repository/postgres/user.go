package postgres

import (
	"context"
	"fmt"

	"github.com/partstock/inventory-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) ListRoleEmails(ctx context.Context, role string) ([]string, error) {
	query := `
		SELECT u.email FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role = $1 AND u.is_active AND u.email <> ''
		ORDER BY u.email
	`

	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query, role); err != nil {
		return nil, fmt.Errorf("failed to list role emails: %w", err)
	}

	return emails, nil
}

func (r *userRepository) ListSuperuserEmails(ctx context.Context) ([]string, error) {
	query := `
		SELECT email FROM users
		WHERE is_superuser AND is_active AND email <> ''
		ORDER BY email
	`

	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query); err != nil {
		return nil, fmt.Errorf("failed to list superuser emails: %w", err)
	}

	return emails, nil
}
