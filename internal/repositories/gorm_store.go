package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormStore - реализация Store поверх gorm (postgres или mysql).
// БД должна быть открыта с gorm.Config{TranslateError: true}, иначе
// нарушения уникальности не превратятся в ErrDuplicate.
type GormStore struct {
	gormTx
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{gormTx{db: db}}
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(gormTx{db: db})
	})
}

type gormTx struct {
	db *gorm.DB
}

func (t gormTx) Users() UserRepository       { return &gormUserRepository{db: t.db} }
func (t gormTx) Jobs() JobRepository         { return &gormJobRepository{db: t.db} }
func (t gormTx) Skills() SkillRepository     { return &gormSkillRepository{db: t.db} }
func (t gormTx) Payments() PaymentRepository { return &gormPaymentRepository{db: t.db} }
func (t gormTx) Reviews() ReviewRepository   { return &gormReviewRepository{db: t.db} }
func (t gormTx) Messages() MessageRepository { return &gormMessageRepository{db: t.db} }
func (t gormTx) Blocks() BlockRepository     { return &gormBlockRepository{db: t.db} }

// translate приводит ошибки gorm к ошибкам пакета
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// updateIfVersion - UPDATE ... WHERE id = ? AND version = ?.
// Пустой результат означает либо чужую запись версии, либо отсутствие записи.
func updateIfVersion(ctx context.Context, db *gorm.DB, model interface{}, id, expected uint64) error {
	res := db.WithContext(ctx).Model(model).
		Where("version = ?", expected).
		Select("*").Omit("created_at").
		Updates(model)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}
