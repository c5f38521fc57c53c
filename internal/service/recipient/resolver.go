package recipient

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/partstock/inventory-api/internal/model"
	"github.com/partstock/inventory-api/internal/repository"
	"github.com/partstock/inventory-api/pkg/logger"
)

const (
	cacheKey = "alert_recipients"
	cacheTTL = 5 * time.Minute
)

// Strategy produces one candidate recipient set. Strategies are tried in
// order; the first non-empty result wins.
type Strategy interface {
	Resolve(ctx context.Context) ([]string, error)
	Name() string
}

// Resolver computes the current notification audience. It may return an
// empty list only when every strategy, including the static fallback,
// comes up empty; callers degrade that to a failed alert, not an error.
type Resolver struct {
	strategies []Strategy
	cache      *gocache.Cache
	logger     *logger.Logger
}

func NewResolver(users repository.UserRepository, fallback []string, log *logger.Logger) *Resolver {
	return &Resolver{
		strategies: []Strategy{
			&roleStrategy{users: users, role: model.RoleAdministrator},
			&superuserStrategy{users: users},
			&staticStrategy{addresses: fallback},
		},
		cache:  gocache.New(cacheTTL, 10*time.Minute),
		logger: log,
	}
}

func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.([]string), nil
	}

	for _, strategy := range r.strategies {
		addresses, err := strategy.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("recipient strategy %s: %w", strategy.Name(), err)
		}
		if len(addresses) > 0 {
			r.cache.Set(cacheKey, addresses, cacheTTL)
			return addresses, nil
		}
		r.logger.Debug("recipient strategy returned no addresses", "strategy", strategy.Name())
	}

	return nil, nil
}

// Invalidate drops the cached recipient list, e.g. after user edits.
func (r *Resolver) Invalidate() {
	r.cache.Delete(cacheKey)
}

type roleStrategy struct {
	users repository.UserRepository
	role  string
}

func (s *roleStrategy) Name() string { return "role:" + s.role }

func (s *roleStrategy) Resolve(ctx context.Context) ([]string, error) {
	return s.users.ListRoleEmails(ctx, s.role)
}

type superuserStrategy struct {
	users repository.UserRepository
}

func (s *superuserStrategy) Name() string { return "superuser" }

func (s *superuserStrategy) Resolve(ctx context.Context) ([]string, error) {
	return s.users.ListSuperuserEmails(ctx)
}

type staticStrategy struct {
	addresses []string
}

func (s *staticStrategy) Name() string { return "static" }

func (s *staticStrategy) Resolve(_ context.Context) ([]string, error) {
	var out []string
	for _, addr := range s.addresses {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out, nil
}
