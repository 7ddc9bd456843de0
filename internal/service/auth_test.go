package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func newAuth(t *testing.T) (*AuthService, *events.Memory) {
	t.Helper()
	ev := &events.Memory{}
	return &AuthService{
		Repo:          repo.New(testdb.New(t)),
		JWTSecret:     []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Events:        ev,
	}, ev
}

func registerReq() transport.RegisterRequest {
	return transport.RegisterRequest{
		Username: "jane", Email: "Jane@Example.com", FirstName: "Jane", LastName: "Doe",
		Password: "s3cret-pass", Password2: "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	svc, ev := newAuth(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	require.Len(t, ev.Events(events.TopicUser), 1)

	_, err = svc.Register(ctx, registerReq())
	require.ErrorIs(t, err, domain.ErrConflict)

	bad := registerReq()
	bad.Username = "other"
	bad.Email = "other@example.com"
	bad.Password2 = "different"
	_, err = svc.Register(ctx, bad)
	require.ErrorIs(t, err, domain.ErrValidation)

	bad.Password2 = bad.Password
	bad.Email = "not-an-email"
	_, err = svc.Register(ctx, bad)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin_UsernameOrEmail(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	for _, login := range []string{"jane", "JANE@example.com"} {
		pair, err := svc.Login(ctx, login, "s3cret-pass")
		require.NoError(t, err, login)
		claims, err := tokens.AccessClaimsFromToken(pair.AccessToken, svc.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, tokens.RoleUser, claims.Role)
		assert.False(t, pair.IsAdmin)
	}

	_, err = svc.Login(ctx, "jane", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StaffIsAdmin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	require.NoError(t, svc.Repo.DB.Model(u).Update("is_staff", true).Error)

	pair, err := svc.Login(ctx, "jane", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, pair.IsAdmin)
}

func TestRefresh_RotatesAndRevokes(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "jane", "s3cret-pass")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.Logout(ctx, next.RefreshToken))
	_, err = svc.Refresh(ctx, next.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestMe(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	got, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", got.Username)

	_, err = svc.Me(ctx, 999)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
