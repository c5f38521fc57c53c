package recipient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partstock/inventory-api/pkg/logger"
)

type fakeUserRepo struct {
	adminEmails     []string
	superuserEmails []string
	err             error

	roleCalls      int
	superuserCalls int
}

func (f *fakeUserRepo) ListRoleEmails(_ context.Context, _ string) ([]string, error) {
	f.roleCalls++
	return f.adminEmails, f.err
}

func (f *fakeUserRepo) ListSuperuserEmails(_ context.Context) ([]string, error) {
	f.superuserCalls++
	return f.superuserEmails, f.err
}

func TestResolveAdministratorsWin(t *testing.T) {
	users := &fakeUserRepo{
		adminEmails:     []string{"admin1@x.com", "admin2@x.com"},
		superuserEmails: []string{"root@x.com"},
	}
	r := NewResolver(users, []string{"fallback@x.com"}, logger.NewLogger(nil))

	addresses, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"admin1@x.com", "admin2@x.com"}, addresses)
	assert.Equal(t, 0, users.superuserCalls, "later strategies must not run")
}

func TestResolveSuperuserFallback(t *testing.T) {
	users := &fakeUserRepo{superuserEmails: []string{"a@x.com"}}
	r := NewResolver(users, []string{"fallback@x.com"}, logger.NewLogger(nil))

	addresses, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, addresses)
}

func TestResolveStaticFallback(t *testing.T) {
	r := NewResolver(&fakeUserRepo{}, []string{"ops@company.com", ""}, logger.NewLogger(nil))

	addresses, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@company.com"}, addresses, "blank fallback entries are dropped")
}

func TestResolveEmpty(t *testing.T) {
	r := NewResolver(&fakeUserRepo{}, nil, logger.NewLogger(nil))

	addresses, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestResolveError(t *testing.T) {
	users := &fakeUserRepo{err: errors.New("db down")}
	r := NewResolver(users, nil, logger.NewLogger(nil))

	_, err := r.Resolve(context.Background())
	require.Error(t, err)
}

func TestResolveCaches(t *testing.T) {
	users := &fakeUserRepo{adminEmails: []string{"admin@x.com"}}
	r := NewResolver(users, nil, logger.NewLogger(nil))

	_, err := r.Resolve(context.Background())
	require.NoError(t, err)
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, users.roleCalls)

	r.Invalidate()
	_, err = r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, users.roleCalls)
}
