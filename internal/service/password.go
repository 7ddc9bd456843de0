package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/mail"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

func checkPassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	return nil
}

// ChangePassword verifies oldPassword, stores the new one and revokes every
// refresh token of the user. The returned pair is the only live session.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req transport.ChangePasswordRequest) (*tokens.Pair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	if req.OldPassword == "" || req.NewPassword == "" {
		return nil, fmt.Errorf("%w: old_password and new_password are required", domain.ErrValidation)
	}
	if err := checkPassword(req.NewPassword); err != nil {
		return nil, err
	}

	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !hash.CheckPassword(u.PasswordHash, req.OldPassword) {
		return nil, fmt.Errorf("%w: old password is incorrect", domain.ErrValidation)
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		l.Error("change_password_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	pair, rt, err := s.newPair(u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetPassword(ctx, u.ID, pwHash, rt); err != nil {
		return nil, err
	}

	s.publishPasswordChanged(ctx, u.ID, "change")
	return pair, nil
}

// RequestPasswordReset mails a single-use reset link to email. Unknown or
// inactive accounts get no mail and no error.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := logging.FromContext(ctx).With("svc", "auth.password_reset")

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := netmail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}

	u, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("password_reset_unknown_email")
			return nil
		}
		return err
	}
	if !u.IsActive {
		return nil
	}

	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	raw := uuid.NewString()
	if err := s.Repo.AddPasswordReset(ctx, &models.PasswordResetToken{
		TokenHash: hash.Sha256Hex(raw),
		UserID:    u.ID,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}); err != nil {
		return err
	}

	mailer := s.Mailer
	if mailer == nil {
		mailer = mail.Nop{}
	}
	subject, body := mail.PasswordResetMessage(models.DefaultSiteName, s.ResetURL+raw, ttl)
	if err := mailer.Send(ctx, u.Email, subject, body); err != nil {
		l.Error("password_reset_error", "reason", "cannot send the reset mail", "user_id", u.ID, "error", err)
		return err
	}
	l.Info("password_reset_sent", "user_id", u.ID)
	return nil
}

// ConfirmPasswordReset spends token and sets newPassword. Existing sessions
// are revoked.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req transport.ResetPasswordConfirmRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	if err := checkPassword(req.NewPassword); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	userID, err := s.Repo.ConsumePasswordReset(ctx, hash.Sha256Hex(strings.TrimSpace(req.Token)), pwHash)
	if err != nil {
		if errors.Is(err, repo.ErrResetTokenInvalid) {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return err
	}

	s.publishPasswordChanged(ctx, userID, "reset")
	return nil
}

func (s *AuthService) publishPasswordChanged(ctx context.Context, userID uint, via string) {
	publish(ctx, s.Events, events.TopicUser, strconv.FormatUint(uint64(userID), 10), map[string]any{
		"type":   "password_changed",
		"userID": userID,
		"via":    via,
	})
}
