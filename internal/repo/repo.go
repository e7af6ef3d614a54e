package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

var ErrTokenNotActive = errors.New("refresh token not active")

// StorageError reports a failure of the backing store, as opposed to a
// token that is simply absent, revoked or expired.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("ledger %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

type GormRepo struct {
	DB  *gorm.DB
	Now func() time.Time

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db, Now: time.Now}
}

func (r *GormRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Migrate creates or updates every table the service owns.
func (r *GormRepo) Migrate(ctx context.Context) error {
	if err := r.DB.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	r.schemaMu.Lock()
	r.schemaReady = true
	r.schemaMu.Unlock()
	return nil
}

// ensureSchema creates the token tables on first use. A failed attempt is
// retried on the next call.
func (r *GormRepo) ensureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()
	if r.schemaReady {
		return nil
	}
	if err := r.DB.WithContext(ctx).AutoMigrate(&models.RefreshToken{}, &models.AccessDenylist{}); err != nil {
		return err
	}
	r.schemaReady = true
	return nil
}
