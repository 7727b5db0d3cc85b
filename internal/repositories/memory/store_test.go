package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
)

func TestStore_WithinTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := &models.Job{OwnerID: 1, Title: "Лендинг", Status: models.JobStatusOpen}
	require.NoError(t, store.Jobs().Create(ctx, job))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repositories.Tx) error {
		j, err := tx.Jobs().GetByID(ctx, job.ID)
		require.NoError(t, err)
		j.Status = models.JobStatusCancelled
		require.NoError(t, tx.Jobs().UpdateIfVersion(ctx, j, j.Version))
		require.NoError(t, tx.Users().Create(ctx, &models.User{Email: "a@b.c"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// 1. Статус не изменился
	got, err := store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, got.Status)
	assert.Equal(t, uint64(1), got.Version)

	// 2. Пользователь не создан
	_, err = store.Users().GetByEmail(ctx, "a@b.c")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestJobRepo_UpdateIfVersion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	job := &models.Job{OwnerID: 1, Status: models.JobStatusOpen}
	require.NoError(t, store.Jobs().Create(ctx, job))

	first, _ := store.Jobs().GetByID(ctx, job.ID)
	second, _ := store.Jobs().GetByID(ctx, job.ID)

	first.Title = "A"
	require.NoError(t, store.Jobs().UpdateIfVersion(ctx, first, first.Version))
	assert.Equal(t, uint64(2), first.Version)

	second.Title = "B"
	err := store.Jobs().UpdateIfVersion(ctx, second, second.Version)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	missing := &models.Job{}
	missing.ID = 999
	assert.ErrorIs(t, store.Jobs().UpdateIfVersion(ctx, missing, 1), repositories.ErrNotFound)
}

func TestJobRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	assignee := uint64(2)
	job := &models.Job{OwnerID: 1, AssignedTo: &assignee}
	require.NoError(t, store.Jobs().Create(ctx, job))

	// изменение указателя у вызывающего не должно протекать в хранилище
	*job.AssignedTo = 99
	got, err := store.Jobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), *got.AssignedTo)
}

func TestJobRepo_SoftDeleteAndOverdue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	store := NewStore().WithClock(func() time.Time { return now })

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	overdue := &models.Job{OwnerID: 1, Status: models.JobStatusOpen, Deadline: &past}
	fresh := &models.Job{OwnerID: 1, Status: models.JobStatusOpen, Deadline: &future}
	running := &models.Job{OwnerID: 1, Status: models.JobStatusInProgress, Deadline: &past}
	deleted := &models.Job{OwnerID: 1, Status: models.JobStatusOpen, Deadline: &past}
	for _, j := range []*models.Job{overdue, fresh, running, deleted} {
		require.NoError(t, store.Jobs().Create(ctx, j))
	}
	require.NoError(t, store.Jobs().SoftDelete(ctx, deleted.ID))

	list, err := store.Jobs().ListOverdueOpen(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, overdue.ID, list[0].ID)

	_, err = store.Jobs().GetByID(ctx, deleted.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, total, err := store.Jobs().List(ctx, repositories.JobFilter{OwnerID: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)
}

func TestUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.Users().Create(ctx, &models.User{Email: "x@y.z"}))
	assert.ErrorIs(t, store.Users().Create(ctx, &models.User{Email: "x@y.z"}), repositories.ErrDuplicate)

	require.NoError(t, store.Payments().Create(ctx, &models.Payment{JobID: 7}))
	assert.ErrorIs(t, store.Payments().Create(ctx, &models.Payment{JobID: 7}), repositories.ErrDuplicate)

	require.NoError(t, store.Reviews().Create(ctx, &models.Review{JobID: 7, ReviewerID: 1, RevieweeID: 2, Rating: 5}))
	assert.ErrorIs(t, store.Reviews().Create(ctx, &models.Review{JobID: 7, ReviewerID: 1, RevieweeID: 2, Rating: 4}), repositories.ErrDuplicate)
	require.NoError(t, store.Reviews().Create(ctx, &models.Review{JobID: 7, ReviewerID: 2, RevieweeID: 1, Rating: 4}))

	exists, err := store.Reviews().Exists(ctx, 7, 1)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRatingStats(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i, rating := range []int{5, 4, 5, 3} {
		require.NoError(t, store.Reviews().Create(ctx, &models.Review{
			JobID: uint64(i + 1), ReviewerID: 1, RevieweeID: 2, Rating: rating, IsPublic: i != 3,
		}))
	}

	stats, err := store.Reviews().RatingStats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalReviews)
	assert.InDelta(t, 4.25, stats.AverageRating, 0.0001)
	assert.Equal(t, int64(2), stats.RatingCounts[5])

	public, err := store.Reviews().ListByReviewee(ctx, 2, false)
	require.NoError(t, err)
	assert.Len(t, public, 3)
}

func TestBlocks(t *testing.T) {
	ctx := context.Background()
	blocks := NewStore().Blocks()

	require.NoError(t, blocks.Block(ctx, 1, 2))
	require.NoError(t, blocks.Block(ctx, 1, 2))

	blocked, _ := blocks.IsBlocked(ctx, 1, 2)
	assert.True(t, blocked)
	blocked, _ = blocks.IsBlocked(ctx, 2, 1)
	assert.False(t, blocked, "блокировка направленная")

	mutual, _ := blocks.IsMutuallyBlocked(ctx, 1, 2)
	assert.False(t, mutual)
	require.NoError(t, blocks.Block(ctx, 2, 1))
	mutual, _ = blocks.IsMutuallyBlocked(ctx, 2, 1)
	assert.True(t, mutual)

	require.NoError(t, blocks.Unblock(ctx, 1, 2))
	blocked, _ = blocks.IsBlocked(ctx, 1, 2)
	assert.False(t, blocked)
}

func TestMessages_Conversation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	key := models.ConversationKey(5, 2)
	assert.Equal(t, "2-5", key)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Messages().Create(ctx, &models.Message{
			SenderID: 2, RecipientID: 5, ConversationKey: key, Content: "hi",
		}))
	}
	list, err := store.Messages().ListConversation(ctx, key, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	require.NoError(t, store.Messages().MarkRead(ctx, list[0].ID, time.Now()))
	m, err := store.Messages().GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	assert.True(t, m.IsRead)
	assert.NotNil(t, m.ReadAt)
}

func TestStore_ConcurrentTransactionsSerialize(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	job := &models.Job{OwnerID: 1, Status: models.JobStatusOpen}
	require.NoError(t, store.Jobs().Create(ctx, job))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.WithinTx(ctx, func(tx repositories.Tx) error {
				j, err := tx.Jobs().GetByID(ctx, job.ID)
				if err != nil {
					return err
				}
				if j.Status != models.JobStatusOpen {
					return errors.New("taken")
				}
				j.Status = models.JobStatusInProgress
				return tx.Jobs().UpdateIfVersion(ctx, j, j.Version)
			})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
