package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

// Deny blocks an access token by jti until expiresAt. Denying twice is a no-op.
func (r *GormRepo) Deny(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := r.ensureSchema(ctx); err != nil {
		return storageErr("deny", err)
	}
	row := models.AccessDenylist{JTI: jti, ExpiresAt: expiresAt.Unix()}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&row).Error
	return storageErr("deny", err)
}

func (r *GormRepo) IsDenied(ctx context.Context, jti string) (bool, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return false, storageErr("is_denied", err)
	}
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.AccessDenylist{}).
		Where("jti = ?", jti).
		Count(&n).Error
	if err != nil {
		return false, storageErr("is_denied", err)
	}
	return n > 0, nil
}
