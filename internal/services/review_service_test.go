package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/pkg/apperrors"
)

func TestReviewService_EligibilityFlow(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	worker := f.user(t, "worker@example.com")
	job := f.openJob(t, owner)

	req := &dto.CreateReviewRequest{RevieweeID: worker.ID, Rating: 5, Comment: "Отличная работа, все в срок"}

	// 1. До завершения задания отзыв недоступен
	_, err := f.services.JobService.AssignUser(f.ctx, owner.ID, job.ID, &worker.ID)
	require.NoError(t, err)
	_, err = f.services.ReviewService.Create(f.ctx, owner.ID, job.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrReviewNotEligible)

	// 2. После завершения - можно
	_, err = f.services.JobService.RequestTransition(f.ctx, owner.ID, job.ID, models.JobStatusCompleted)
	require.NoError(t, err)
	f.bus.reset()
	review, err := f.services.ReviewService.Create(f.ctx, owner.ID, job.ID, req)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, review.ReviewerID)
	assert.True(t, review.IsPublic)
	assert.Equal(t, []string{events.NameReviewCreated}, f.bus.eventNames())

	// 3. Повтор - дубликат
	_, err = f.services.ReviewService.Create(f.ctx, owner.ID, job.ID, req)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)

	// 4. Исполнитель оценивает владельца
	_, err = f.services.ReviewService.Create(f.ctx, worker.ID, job.ID, &dto.CreateReviewRequest{RevieweeID: owner.ID, Rating: 4})
	require.NoError(t, err)

	stats, err := f.services.ReviewService.RatingSummary(f.ctx, worker.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalReviews)
	assert.InDelta(t, 5.0, stats.AverageRating, 0.001)
}

func TestReviewService_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	worker := f.user(t, "worker@example.com")
	outsider := f.user(t, "outsider@example.com")
	job := f.completedJob(t, owner, worker)

	tests := []struct {
		name    string
		actor   uint64
		req     dto.CreateReviewRequest
		wantErr error
	}{
		{
			name:    "рейтинг вне диапазона",
			actor:   owner.ID,
			req:     dto.CreateReviewRequest{RevieweeID: worker.ID, Rating: 6},
			wantErr: apperrors.ErrInvalidRating,
		},
		{
			name:    "короткий комментарий",
			actor:   owner.ID,
			req:     dto.CreateReviewRequest{RevieweeID: worker.ID, Rating: 3, Comment: "плохо"},
			wantErr: apperrors.ErrInvalidComment,
		},
		{
			name:    "отзыв на себя",
			actor:   owner.ID,
			req:     dto.CreateReviewRequest{RevieweeID: owner.ID, Rating: 3},
			wantErr: apperrors.ErrInvalidReviewee,
		},
		{
			name:    "получатель не участник",
			actor:   owner.ID,
			req:     dto.CreateReviewRequest{RevieweeID: outsider.ID, Rating: 3},
			wantErr: apperrors.ErrInvalidReviewee,
		},
		{
			name:    "автор не участник",
			actor:   outsider.ID,
			req:     dto.CreateReviewRequest{RevieweeID: worker.ID, Rating: 3},
			wantErr: apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.ReviewService.Create(f.ctx, tt.actor, job.ID, &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReviewService_HiddenReviews(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	worker := f.user(t, "worker@example.com")
	outsider := f.user(t, "outsider@example.com")
	moderator := f.admin(t, "admin@example.com")
	job := f.completedJob(t, owner, worker)

	review, err := f.services.ReviewService.Create(f.ctx, owner.ID, job.ID, &dto.CreateReviewRequest{
		RevieweeID: worker.ID, Rating: 2, IsPublic: ptr(false),
	})
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		viewer uint64
		want   int
	}{
		{"аноним", 0, 0},
		{"посторонний", outsider.ID, 0},
		{"получатель", worker.ID, 1},
		{"администратор", moderator.ID, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.services.ReviewService.ListForUser(f.ctx, worker.ID, tc.viewer)
			require.NoError(t, err)
			assert.Len(t, resp.Reviews, tc.want)
		})
	}

	// удалять может только автор или администратор
	assert.ErrorIs(t, f.services.ReviewService.Delete(f.ctx, worker.ID, review.ID), apperrors.ErrPermissionDenied)
	require.NoError(t, f.services.ReviewService.Delete(f.ctx, moderator.ID, review.ID))
}
