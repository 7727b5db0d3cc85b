// Package memory - хранилище сущностей в памяти процесса.
// Используется в тестах и при database.driver = memory.
package memory

import (
	"context"
	"sync"
	"time"

	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"

	"gorm.io/datatypes"
)

type state struct {
	seq      uint64
	users    map[uint64]models.User
	jobs     map[uint64]models.Job
	skills   map[uint64]models.Skill
	payments map[uint64]models.Payment
	reviews  map[uint64]models.Review
	messages map[uint64]models.Message
	blocks   map[[2]uint64]models.UserBlock
}

func newState() *state {
	return &state{
		users:    make(map[uint64]models.User),
		jobs:     make(map[uint64]models.Job),
		skills:   make(map[uint64]models.Skill),
		payments: make(map[uint64]models.Payment),
		reviews:  make(map[uint64]models.Review),
		messages: make(map[uint64]models.Message),
		blocks:   make(map[[2]uint64]models.UserBlock),
	}
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

// clone - снимок для отката. Значения в картах не делят изменяемых указателей:
// все записи проходят через copy* при сохранении.
func (s *state) clone() *state {
	c := &state{
		seq:      s.seq,
		users:    make(map[uint64]models.User, len(s.users)),
		jobs:     make(map[uint64]models.Job, len(s.jobs)),
		skills:   make(map[uint64]models.Skill, len(s.skills)),
		payments: make(map[uint64]models.Payment, len(s.payments)),
		reviews:  make(map[uint64]models.Review, len(s.reviews)),
		messages: make(map[uint64]models.Message, len(s.messages)),
		blocks:   make(map[[2]uint64]models.UserBlock, len(s.blocks)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.skills {
		c.skills[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	for k, v := range s.messages {
		c.messages[k] = v
	}
	for k, v := range s.blocks {
		c.blocks[k] = v
	}
	return c
}

// Store сериализует транзакции целиком одним мьютексом:
// два WithinTx никогда не пересекаются, а ошибка fn восстанавливает снимок.
type Store struct {
	mu    sync.Mutex
	st    *state
	nowFn func() time.Time
}

func NewStore() *Store {
	return &Store{st: newState(), nowFn: time.Now}
}

// WithClock задает часы для CreatedAt/UpdatedAt, если вызывающий их не выставил
func (s *Store) WithClock(nowFn func() time.Time) *Store {
	s.nowFn = nowFn
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	if err := fn(&view{store: s, locked: true}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository       { return userRepo{s.view()} }
func (s *Store) Jobs() repositories.JobRepository         { return jobRepo{s.view()} }
func (s *Store) Skills() repositories.SkillRepository     { return skillRepo{s.view()} }
func (s *Store) Payments() repositories.PaymentRepository { return paymentRepo{s.view()} }
func (s *Store) Reviews() repositories.ReviewRepository   { return reviewRepo{s.view()} }
func (s *Store) Messages() repositories.MessageRepository { return messageRepo{s.view()} }
func (s *Store) Blocks() repositories.BlockRepository     { return blockRepo{s.view()} }

func (s *Store) view() *view {
	return &view{store: s}
}

// view - доступ к состоянию. Вне транзакции каждый вызов берет мьютекс сам,
// внутри транзакции мьютекс уже удерживается WithinTx.
type view struct {
	store  *Store
	locked bool
}

func (v *view) run(fn func(st *state) error) error {
	if !v.locked {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.st)
}

func (v *view) now() time.Time {
	return v.store.nowFn()
}

func (v *view) Users() repositories.UserRepository       { return userRepo{v} }
func (v *view) Jobs() repositories.JobRepository         { return jobRepo{v} }
func (v *view) Skills() repositories.SkillRepository     { return skillRepo{v} }
func (v *view) Payments() repositories.PaymentRepository { return paymentRepo{v} }
func (v *view) Reviews() repositories.ReviewRepository   { return reviewRepo{v} }
func (v *view) Messages() repositories.MessageRepository { return messageRepo{v} }
func (v *view) Blocks() repositories.BlockRepository     { return blockRepo{v} }

func stamp(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt != nil && createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt != nil && updatedAt.IsZero() {
		*updatedAt = now
	}
}

func copyUint64(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyJob(j models.Job) models.Job {
	j.AssignedTo = copyUint64(j.AssignedTo)
	j.BudgetMin = copyFloat(j.BudgetMin)
	j.BudgetMax = copyFloat(j.BudgetMax)
	j.Deadline = copyTime(j.Deadline)
	j.RequiredSkills = datatypes.JSON(append([]byte(nil), j.RequiredSkills...))
	return j
}

func copySkill(s models.Skill) models.Skill {
	s.PriceFrom = copyFloat(s.PriceFrom)
	s.Tags = datatypes.JSON(append([]byte(nil), s.Tags...))
	return s
}

func copyMessage(m models.Message) models.Message {
	m.JobID = copyUint64(m.JobID)
	m.ReadAt = copyTime(m.ReadAt)
	return m
}
