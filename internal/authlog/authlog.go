// Package authlog records authentication events: login, refresh and logout
// outcomes plus every 401 and 403 served. Events go to the auth_events table
// and, when brokers are configured, to a Kafka topic.
package authlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/edu_platform/internal/models"
)

const (
	EventLoginSuccess  = "login_success"
	EventLoginFailed   = "login_failed"
	EventRefresh       = "refresh"
	EventRefreshFailed = "refresh_failed"
	EventLogout        = "logout"
	EventUnauthorized  = "unauthorized"
	EventForbidden     = "forbidden"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type Recorder interface {
	Record(ctx context.Context, ev models.AuthEvent) error
}

type Nop struct{}

func (Nop) Record(context.Context, models.AuthEvent) error { return nil }

// Multi fans an event out to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, ev models.AuthEvent) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store persists events with gorm.
type Store struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) Record(ctx context.Context, ev models.AuthEvent) error {
	ev.ID = 0
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(&ev).Error; err != nil {
		return fmt.Errorf("authlog: record: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first. Out-of-range limits fall
// back to DefaultLimit or are capped at MaxLimit.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	out := make([]models.AuthEvent, 0)
	err := s.DB.WithContext(ctx).Order("id DESC").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("authlog: recent: %w", err)
	}
	return out, nil
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// Publisher forwards events to a message broker topic, keyed by username.
type Publisher struct {
	P     EventPublisher
	Topic string
}

func (p *Publisher) Record(ctx context.Context, ev models.AuthEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	key := ev.Username
	if key == "" {
		key = ev.Type
	}
	if err := p.P.PublishEvent(ctx, p.Topic, key, ev); err != nil {
		return fmt.Errorf("authlog: publish: %w", err)
	}
	return nil
}
