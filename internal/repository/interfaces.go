package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/model"
)

// Sentinel errors shared by all repository implementations.
var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateOpenAlert means the one-open-alert-per-part index
	// rejected an insert; callers collapse this into suppression.
	ErrDuplicateOpenAlert = errors.New("open alert already exists for part")

	// ErrDuplicateDigest means a digest record already exists for the
	// date; callers treat it as "already sent today".
	ErrDuplicateDigest = errors.New("digest record already exists for date")
)

// All repository interfaces in one file
type (
	// PartRepository handles spare-part inventory records.
	PartRepository interface {
		Create(ctx context.Context, part *model.Part) error
		Get(ctx context.Context, id uuid.UUID) (*model.Part, error)
		Update(ctx context.Context, part *model.Part) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Part, error)
		// ListLowStock returns low-stock parts ordered by name. With
		// strict set it uses quantity < threshold (digest path),
		// otherwise quantity <= threshold (dashboard path).
		ListLowStock(ctx context.Context, strict bool) ([]*model.Part, error)
		Count(ctx context.Context) (int, error)
	}

	// AlertRepository is the append-mostly alert log store.
	AlertRepository interface {
		Create(ctx context.Context, alert *model.Alert) error
		UpdateStatus(ctx context.Context, alert *model.Alert) error
		GetOpenForPart(ctx context.Context, partID uuid.UUID) (*model.Alert, error)
		// ResolveOpenForPart transitions every open alert for the part
		// to resolved and returns how many were affected.
		ResolveOpenForPart(ctx context.Context, partID uuid.UUID, resolvedAt time.Time) (int64, error)
		ListActive(ctx context.Context) ([]*model.Alert, error)
		ListRecent(ctx context.Context, since time.Time) ([]*model.Alert, error)
	}

	// DigestRepository stores one record per calendar date.
	DigestRepository interface {
		Create(ctx context.Context, record *model.DigestRecord) error
		ExistsForDate(ctx context.Context, date time.Time) (bool, error)
		List(ctx context.Context, limit int) ([]*model.DigestRecord, error)
	}

	// UserRepository is the slice of the identity store the recipient
	// resolver queries.
	UserRepository interface {
		ListRoleEmails(ctx context.Context, role string) ([]string, error)
		ListSuperuserEmails(ctx context.Context) ([]string, error)
	}
)
