package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories/memory"
	"talent2income_backend/internal/services/dto"
)

// fakeClock - управляемое время для окон (удаление сообщения, возврат платежа)
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recorded - все, что шина опубликовала после коммитов
type recorded struct {
	mu        sync.Mutex
	mutations []events.Mutation
	events    []events.Event
}

func (r *recorded) HandleMutation(_ context.Context, m events.Mutation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = append(r.mutations, m)
}

func (r *recorded) HandleEvent(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorded) eventNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.EventName())
	}
	return names
}

func (r *recorded) mutationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mutations)
}

func (r *recorded) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mutations = nil
	r.events = nil
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	clock    *fakeClock
	bus      *recorded
	services *ServiceContainer
	tokens   *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore().WithClock(clock.Now)
	rec := &recorded{}
	bus := events.NewBus()
	bus.SubscribeMutations(rec)
	bus.SubscribeEvents(rec)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	deps := Deps{Store: store, Bus: bus, Now: clock.Now}

	return &fixture{
		ctx:      context.Background(),
		store:    store,
		clock:    clock,
		bus:      rec,
		services: NewServiceContainer(deps, tokens, true),
		tokens:   tokens,
	}
}

// user создает активного подтвержденного пользователя напрямую в хранилище
func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{
		Email:      email,
		Name:       email,
		Role:       models.UserRoleUser,
		Status:     models.UserStatusActive,
		IsVerified: true,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, u))
	return u
}

func (f *fixture) admin(t *testing.T, email string) *models.User {
	t.Helper()
	u := f.user(t, email)
	u.Role = models.UserRoleAdmin
	require.NoError(t, f.store.Users().Update(f.ctx, u))
	return u
}

func (f *fixture) openJob(t *testing.T, owner *models.User) *models.Job {
	t.Helper()
	job, err := f.services.JobService.Create(f.ctx, owner.ID, &dto.CreateJobRequest{
		CategoryID: 7,
		Title:      "Сверстать лендинг",
		BudgetType: models.BudgetTypeFixed,
	})
	require.NoError(t, err)
	return job
}

// completedJob - open -> in_progress (назначение) -> completed
func (f *fixture) completedJob(t *testing.T, owner, worker *models.User) *models.Job {
	t.Helper()
	job := f.openJob(t, owner)
	_, err := f.services.JobService.AssignUser(f.ctx, owner.ID, job.ID, &worker.ID)
	require.NoError(t, err)
	job, err = f.services.JobService.RequestTransition(f.ctx, owner.ID, job.ID, models.JobStatusCompleted)
	require.NoError(t, err)
	return job
}

func ptr[T any](v T) *T { return &v }
