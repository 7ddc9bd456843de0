package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

var resetTokenRe = regexp.MustCompile(`token=([0-9a-f-]+)`)

func resetToken(t *testing.T, m *fakeMailer) string {
	t.Helper()
	require.NotEmpty(t, m.sent)
	match := resetTokenRe.FindStringSubmatch(m.sent[len(m.sent)-1].body)
	require.Len(t, match, 2)
	return match[1]
}

func TestChangePassword(t *testing.T) {
	svc, ev := newAuth(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	old, err := svc.Login(ctx, "jane", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{OldPassword: "wrong-pass", NewPassword: "n3w-password"})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{OldPassword: "s3cret-pass", NewPassword: "short"})
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.ChangePassword(ctx, 999, transport.ChangePasswordRequest{OldPassword: "s3cret-pass", NewPassword: "n3w-password"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	pair, err := svc.ChangePassword(ctx, u.ID, transport.ChangePasswordRequest{OldPassword: "s3cret-pass", NewPassword: "n3w-password"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, old.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials, "sessions from before the change are revoked")
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jane", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "jane", "n3w-password")
	require.NoError(t, err)

	userEvents := ev.Events(events.TopicUser)
	require.Len(t, userEvents, 2)
	assert.Equal(t, "password_changed", userEvents[1].Payload["type"])
}

func TestPasswordReset(t *testing.T) {
	svc, _ := newAuth(t)
	m := &fakeMailer{}
	svc.Mailer = m
	svc.ResetURL = "https://shop.test/reset?token="
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	old, err := svc.Login(ctx, "jane", "s3cret-pass")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "JANE@example.com"))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "jane@example.com", m.sent[0].to)
	token := resetToken(t, m)

	var stored models.PasswordResetToken
	require.NoError(t, svc.Repo.DB.First(&stored).Error)
	assert.NotEqual(t, token, stored.TokenHash)

	err = svc.ConfirmPasswordReset(ctx, transport.ResetPasswordConfirmRequest{Token: token, NewPassword: "short"})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, transport.ResetPasswordConfirmRequest{Token: token, NewPassword: "r3set-password"}))
	_, err = svc.Login(ctx, "jane", "r3set-password")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, old.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ConfirmPasswordReset(ctx, transport.ResetPasswordConfirmRequest{Token: token, NewPassword: "another-password"})
	require.ErrorIs(t, err, domain.ErrValidation, "a token works once")
	err = svc.ConfirmPasswordReset(ctx, transport.ResetPasswordConfirmRequest{Token: "made-up", NewPassword: "another-password"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPasswordReset_Expired(t *testing.T) {
	svc, _ := newAuth(t)
	m := &fakeMailer{}
	svc.Mailer = m
	svc.ResetURL = "https://shop.test/reset?token="
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "jane@example.com"))
	token := resetToken(t, m)

	require.NoError(t, svc.Repo.DB.Model(&models.PasswordResetToken{}).
		Where("1 = 1").
		Update("expires_at", time.Now().Add(-time.Minute).Unix()).Error)

	err = svc.ConfirmPasswordReset(ctx, transport.ResetPasswordConfirmRequest{Token: token, NewPassword: "r3set-password"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, _ := newAuth(t)
	m := &fakeMailer{}
	svc.Mailer = m
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.Empty(t, m.sent)

	require.ErrorIs(t, svc.RequestPasswordReset(ctx, "not-an-email"), domain.ErrValidation)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newAuth(t)
	req := registerReq()
	req.Password, req.Password2 = "short", "short"
	_, err := svc.Register(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrValidation)
}
