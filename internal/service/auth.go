package service

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

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

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultResetTTL   = time.Hour

	MinPasswordLength = 8
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Events        events.Publisher

	// Password reset links are ResetURL followed by the raw token.
	Mailer   mail.Mailer
	ResetURL string
	ResetTTL time.Duration
}

func (s *AuthService) ttls() (time.Duration, time.Duration) {
	access, refresh := s.AccessTTL, s.RefreshTTL
	if access <= 0 {
		access = DefaultAccessTTL
	}
	if refresh <= 0 {
		refresh = DefaultRefreshTTL
	}
	return access, refresh
}

func RoleOf(u *models.User) string {
	if u.IsStaff {
		return tokens.RoleAdmin
	}
	return tokens.RoleUser
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case username == "" || email == "" || req.Password == "":
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	case req.Password != req.Password2:
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	if err := checkPassword(req.Password); err != nil {
		return nil, err
	}
	if _, err := netmail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}

	taken, err := s.Repo.UserTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username or email already registered", domain.ErrConflict)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	u := models.User{
		Username:     username,
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: pwHash,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, &u); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUser, strconv.FormatUint(uint64(u.ID), 10), map[string]any{
		"type":     "user_registered",
		"userID":   u.ID,
		"username": u.Username,
	})
	return &u, nil
}

// Login accepts a username or an email address.
func (s *AuthService) Login(ctx context.Context, login, password string) (*tokens.Pair, error) {
	u, err := s.Repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive || !hash.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, rt, err := s.newPair(u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.AddRefreshToken(ctx, rt); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) newPair(u *models.User) (*tokens.Pair, *models.RefreshToken, error) {
	accessTTL, refreshTTL := s.ttls()
	now := time.Now()
	subject := strconv.FormatUint(uint64(u.ID), 10)
	role := RoleOf(u)

	accessExp := now.Add(accessTTL)
	access, err := tokens.NewAccessToken(s.JWTSecret, subject, role, accessExp)
	if err != nil {
		return nil, nil, err
	}
	refreshExp := now.Add(refreshTTL)
	refresh, jti, err := tokens.NewRefreshToken(s.RefreshSecret, subject, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	pair := &tokens.Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		IsAdmin:      role == tokens.RoleAdmin,
	}
	rt := &models.RefreshToken{
		Token:     hash.Sha256Hex(refresh),
		UserID:    u.ID,
		ExpiresAt: refreshExp.Unix(),
		JTI:       jti,
	}
	return pair, rt, nil
}

// Refresh rotates refreshToken: the old one is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidCredentials)
	}
	u, err := s.Repo.GetUser(ctx, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	pair, rt, err := s.newPair(u)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, rt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrTokenExpiredOrRevoked) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return nil, err
	}
	return pair, nil
}

// Logout revokes refreshToken. Tokens that no longer parse have nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, claims.ID)
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}
