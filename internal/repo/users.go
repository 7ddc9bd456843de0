package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrTokenExpiredOrRevoked = errors.New("token expired or revoked")

var ErrResetTokenInvalid = errors.New("reset token invalid, used or expired")

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) UserTaken(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(username) = ? OR LOWER(email) = ?", strings.ToLower(username), strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

// FindByLogin matches login against username or email, ignoring case.
func (r *GormRepo) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("LOWER(username) = ? OR LOWER(email) = ?", login, login).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func refreshUsable(db *gorm.DB, jti string) error {
	var t models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&t).Error; err != nil {
		return err
	}
	if t.Revoked || t.ExpiresAt < time.Now().Unix() {
		return ErrTokenExpiredOrRevoked
	}
	return nil
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshUsable(tx, oldJTI); err != nil {
			return err
		}
		if err := tx.Model(&models.RefreshToken{}).Where("jti = ?", oldJTI).Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).Where("jti = ?", jti).Update("revoked", true).Error
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func revokeAllRefreshTokens(db *gorm.DB, userID uint) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// SetPassword stores a new password hash and revokes every refresh token of
// the user. When next is not nil it is stored as the only live session.
func (r *GormRepo) SetPassword(ctx context.Context, userID uint, passwordHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		if err := revokeAllRefreshTokens(tx, userID); err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		return tx.Create(next).Error
	})
}

func (r *GormRepo) AddPasswordReset(ctx context.Context, t *models.PasswordResetToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

// ConsumePasswordReset marks the token used, sets the new password and
// revokes the user's refresh tokens in one transaction.
func (r *GormRepo) ConsumePasswordReset(ctx context.Context, tokenHash, passwordHash string) (uint, error) {
	var userID uint
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PasswordResetToken{}).
			Where("token_hash = ? AND used = ? AND expires_at >= ?", tokenHash, false, time.Now().Unix()).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetTokenInvalid
		}

		var t models.PasswordResetToken
		if err := tx.Where("token_hash = ?", tokenHash).First(&t).Error; err != nil {
			return err
		}
		userID = t.UserID
		if err := tx.Model(&models.User{}).Where("id = ?", t.UserID).Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		return revokeAllRefreshTokens(tx, t.UserID)
	})
	return userID, err
}
