package services

import (
	"context"
	"errors"
	"time"

	"talent2income_backend/internal/cache"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/pkg/apperrors"
)

// Deps - общие зависимости сервисов
type Deps struct {
	Store    repositories.Store
	Bus      *events.Bus
	Cache    *cache.RedisBackend // nil - чтение без кэша
	CacheTTL time.Duration
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now()
}

func (d Deps) ttl() time.Duration {
	if d.CacheTTL <= 0 {
		return 5 * time.Minute
	}
	return d.CacheTTL
}

// inTx выполняет fn в одной транзакции и публикует записанное только после коммита.
// Если транзакция откатилась, ни инвалидации, ни уведомлений не будет.
func (d Deps) inTx(ctx context.Context, fn func(tx repositories.Tx, rec *events.Recorder) error) error {
	rec := events.NewRecorder()
	err := d.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		rec.Reset()
		return fn(tx, rec)
	})
	if err != nil {
		return mapStoreError(err)
	}
	if d.Bus != nil {
		d.Bus.Publish(ctx, rec)
	}
	return nil
}

// mapStoreError переводит ошибки хранилища в ошибки приложения.
// AppError пропускаются как есть.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrVersionConflict):
		return apperrors.ErrConcurrentUpdate.WithError(err)
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("entity")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apperrors.InternalError(err)
	}
}

// notFound - ErrNotFound хранилища как 404 конкретного ресурса
func notFound(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(resource)
	}
	return err
}

func loadUser(ctx context.Context, tx repositories.Tx, id uint64) (*models.User, error) {
	u, err := tx.Users().GetByID(ctx, id)
	return u, notFound(err, "user")
}

func loadJob(ctx context.Context, tx repositories.Tx, id uint64) (*models.Job, error) {
	j, err := tx.Jobs().GetByID(ctx, id)
	return j, notFound(err, "job")
}

func loadPayment(ctx context.Context, tx repositories.Tx, id uint64) (*models.Payment, error) {
	p, err := tx.Payments().GetByID(ctx, id)
	return p, notFound(err, "payment")
}

// loadActor - актор должен существовать и не быть заблокирован администрацией
func loadActor(ctx context.Context, tx repositories.Tx, id uint64) (*models.User, error) {
	u, err := tx.Users().GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NewUnauthorizedError("user no longer exists")
	}
	if err != nil {
		return nil, err
	}
	if u.Status == models.UserStatusSuspended || u.Status == models.UserStatusBanned {
		return nil, apperrors.ErrAccountInactive
	}
	return u, nil
}
