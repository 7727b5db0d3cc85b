package repositories

import (
	"context"
	"errors"
	"time"

	"talent2income_backend/internal/models"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate record")
	ErrVersionConflict = errors.New("version conflict")
)

// Store - хранилище сущностей. Методы самого Store выполняются вне транзакции,
// WithinTx дает атомарный check-then-act: при ошибке fn все изменения откатываются.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

type Tx interface {
	Users() UserRepository
	Jobs() JobRepository
	Skills() SkillRepository
	Payments() PaymentRepository
	Reviews() ReviewRepository
	Messages() MessageRepository
	Blocks() BlockRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type JobFilter struct {
	Status     models.JobStatus
	CategoryID uint64
	OwnerID    uint64
	Limit      int
	Offset     int
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uint64) (*models.Job, error)
	// UpdateIfVersion сохраняет job, только если версия в хранилище равна expected.
	// При успехе job.Version = expected + 1.
	UpdateIfVersion(ctx context.Context, job *models.Job, expected uint64) error
	SoftDelete(ctx context.Context, id uint64) error
	List(ctx context.Context, filter JobFilter) ([]models.Job, int64, error)
	ListOverdueOpen(ctx context.Context, now time.Time, limit int) ([]models.Job, error)
}

type SkillRepository interface {
	Create(ctx context.Context, skill *models.Skill) error
	GetByID(ctx context.Context, id uint64) (*models.Skill, error)
	Update(ctx context.Context, skill *models.Skill) error
	SoftDelete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]models.Skill, error)
}

type PaymentRepository interface {
	// Create возвращает ErrDuplicate, если платеж по заданию уже существует
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint64) (*models.Payment, error)
	GetByJobID(ctx context.Context, jobID uint64) (*models.Payment, error)
	UpdateIfVersion(ctx context.Context, payment *models.Payment, expected uint64) error
}

type ReviewRepository interface {
	// Create возвращает ErrDuplicate при повторе пары (job_id, reviewer_id)
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint64) (*models.Review, error)
	Exists(ctx context.Context, jobID, reviewerID uint64) (bool, error)
	Delete(ctx context.Context, id uint64) error
	ListByReviewee(ctx context.Context, revieweeID uint64, includeHidden bool) ([]models.Review, error)
	RatingStats(ctx context.Context, revieweeID uint64) (*models.RatingStats, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint64) (*models.Message, error)
	MarkRead(ctx context.Context, id uint64, at time.Time) error
	SoftDelete(ctx context.Context, id uint64) error
	// ListConversation - последние сообщения диалога, новые первыми
	ListConversation(ctx context.Context, conversationKey string, limit int) ([]models.Message, error)
}

// BlockRepository - сервис блокировок. IsBlocked(a, b): a заблокировал b.
type BlockRepository interface {
	Block(ctx context.Context, blockerID, blockedID uint64) error
	Unblock(ctx context.Context, blockerID, blockedID uint64) error
	IsBlocked(ctx context.Context, blockerID, blockedID uint64) (bool, error)
	IsMutuallyBlocked(ctx context.Context, a, b uint64) (bool, error)
}
