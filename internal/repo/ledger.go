package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

// Persist stores a fresh, non-revoked refresh token record.
func (r *GormRepo) Persist(ctx context.Context, rec models.RefreshToken) error {
	if err := r.ensureSchema(ctx); err != nil {
		return storageErr("persist", err)
	}
	rec.ID = 0
	rec.Revoked = false
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	return storageErr("persist", r.DB.WithContext(ctx).Create(&rec).Error)
}

// FindActive returns the record for token if it exists, is not revoked and
// has not expired. Anything else is ErrTokenNotActive.
func (r *GormRepo) FindActive(ctx context.Context, token string) (*models.RefreshToken, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, storageErr("find_active", err)
	}

	var rec models.RefreshToken
	err := r.DB.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotActive
	}
	if err != nil {
		return nil, storageErr("find_active", err)
	}
	if rec.Revoked || rec.ExpiresAt <= r.now().Unix() {
		return nil, ErrTokenNotActive
	}
	return &rec, nil
}

// Revoke marks every row holding token as revoked. Unknown tokens are not an error.
func (r *GormRepo) Revoke(ctx context.Context, token string) error {
	if err := r.ensureSchema(ctx); err != nil {
		return storageErr("revoke", err)
	}
	err := r.DB.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
	return storageErr("revoke", err)
}

// Rotate revokes old and stores next atomically. Only one caller can win the
// conditional update for a given old token; the rest get ErrTokenNotActive.
func (r *GormRepo) Rotate(ctx context.Context, old string, next models.RefreshToken) error {
	if err := r.ensureSchema(ctx); err != nil {
		return storageErr("rotate", err)
	}
	now := r.now()
	next.ID = 0
	next.Revoked = false
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now.UTC()
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token = ? AND revoked = ? AND expires_at > ?", old, false, now.Unix()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return ErrTokenNotActive
		}
		return tx.Create(&next).Error
	})
	if errors.Is(err, ErrTokenNotActive) {
		return err
	}
	return storageErr("rotate", err)
}

// PurgeExpired deletes ledger and denylist rows whose expiry is at or before now.
func (r *GormRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return 0, storageErr("purge", err)
	}

	var total int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("expires_at <= ?", now.Unix()).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected

		res = tx.Where("expires_at <= ?", now.Unix()).Delete(&models.AccessDenylist{})
		if res.Error != nil {
			return res.Error
		}
		total += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, storageErr("purge", err)
	}
	return total, nil
}
