package part

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	apperrors "github.com/partstock/inventory-api/pkg/errors"
	"github.com/partstock/inventory-api/pkg/logger"
)

// Evaluator is the slice of the alert engine the inventory service
// drives after every mutation.
type Evaluator interface {
	Evaluate(ctx context.Context, part *model.Part) (bool, error)
}

type Service struct {
	repo      repository.PartRepository
	evaluator Evaluator
	logger    *logger.Logger
}

func NewService(repo repository.PartRepository, evaluator Evaluator, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		evaluator: evaluator,
		logger:    log,
	}
}

// CreatePart persists a new part and runs alert evaluation on it. The
// returned bool is whether a low-stock alert email went out.
func (s *Service) CreatePart(ctx context.Context, part *model.Part) (bool, error) {
	if err := validatePart(part); err != nil {
		return false, err
	}

	if err := s.repo.Create(ctx, part); err != nil {
		return false, fmt.Errorf("failed to create part: %w", err)
	}

	return s.evaluate(ctx, part), nil
}

func (s *Service) GetPart(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListParts(ctx context.Context) ([]*model.Part, error) {
	return s.repo.List(ctx)
}

// UpdatePart saves the part and re-evaluates its alert state.
func (s *Service) UpdatePart(ctx context.Context, part *model.Part) (bool, error) {
	if err := validatePart(part); err != nil {
		return false, err
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return false, err
	}

	return s.evaluate(ctx, part), nil
}

func (s *Service) DeletePart(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AdjustQuantity applies a use/restock/set operation. "use" clamps at
// zero rather than going negative.
func (s *Service) AdjustQuantity(ctx context.Context, id uuid.UUID, action model.AdjustAction, qty int) (*model.Part, bool, error) {
	if qty < 0 {
		return nil, false, apperrors.BadRequest("quantity must not be negative", nil)
	}

	part, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	oldQuantity := part.Quantity
	switch action {
	case model.AdjustActionUse:
		part.Quantity -= qty
		if part.Quantity < 0 {
			part.Quantity = 0
		}
	case model.AdjustActionRestock:
		part.Quantity += qty
	case model.AdjustActionSet:
		part.Quantity = qty
	default:
		return nil, false, apperrors.BadRequest(fmt.Sprintf("unknown adjust action %q", action), nil)
	}

	if err := s.repo.Update(ctx, part); err != nil {
		return nil, false, err
	}

	sent := false
	if part.Quantity != oldQuantity {
		sent = s.evaluate(ctx, part)
	}

	return part, sent, nil
}

// Stats summarizes the inventory using the inclusive low-stock
// comparison the dashboards use.
func (s *Service) Stats(ctx context.Context) (*model.PartStats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	low, err := s.repo.ListLowStock(ctx, false)
	if err != nil {
		return nil, err
	}

	return &model.PartStats{
		TotalParts:  total,
		LowStock:    len(low),
		WellStocked: total - len(low),
	}, nil
}

// evaluate runs the alert engine for a mutated part. Evaluation
// failures never fail the mutation that triggered them.
func (s *Service) evaluate(ctx context.Context, part *model.Part) bool {
	sent, err := s.evaluator.Evaluate(ctx, part)
	if err != nil {
		s.logger.Error(err, "alert evaluation failed", "part", part.Name)
		return false
	}
	return sent
}

func validatePart(part *model.Part) error {
	if strings.TrimSpace(part.Name) == "" {
		return apperrors.BadRequest("part name is required", nil)
	}
	if part.Quantity < 0 {
		return apperrors.BadRequest("quantity must not be negative", nil)
	}
	if part.Threshold < 0 {
		return apperrors.BadRequest("threshold must not be negative", nil)
	}
	return nil
}
