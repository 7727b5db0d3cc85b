package services

import (
	"context"
	"errors"
	"fmt"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/cache"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/internal/workflow"
	"talent2income_backend/pkg/apperrors"
)

type ReviewService interface {
	Create(ctx context.Context, actorID, jobID uint64, req *dto.CreateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, actorID, reviewID uint64) error
	ListForUser(ctx context.Context, userID, viewerID uint64) (*dto.ReviewListResponse, error)
	RatingSummary(ctx context.Context, userID uint64) (*models.RatingStats, error)
}

type reviewService struct {
	deps Deps
}

func NewReviewService(deps Deps) ReviewService {
	return &reviewService{deps: deps}
}

func (s *reviewService) Create(ctx context.Context, actorID, jobID uint64, req *dto.CreateReviewRequest) (*models.Review, error) {
	if err := workflow.ValidateRating(req.Rating); err != nil {
		return nil, err
	}
	if err := workflow.ValidateComment(req.Comment); err != nil {
		return nil, err
	}

	var review *models.Review
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}

		exists, err := tx.Reviews().Exists(ctx, job.ID, actor.ID)
		if err != nil {
			return err
		}
		if err := workflow.CheckReviewEligibility(job, actor.ID, req.RevieweeID, exists); err != nil {
			return err
		}
		// отзыв оставляют только участники задания
		if !job.IsParticipant(actor.ID) {
			return apperrors.ErrPermissionDenied
		}
		reviewee, err := loadUser(ctx, tx, req.RevieweeID)
		if err != nil {
			return err
		}
		if !auth.CanCreateReview(actor, job, reviewee, exists) {
			return apperrors.ErrPermissionDenied
		}

		isPublic := true
		if req.IsPublic != nil {
			isPublic = *req.IsPublic
		}
		now := s.deps.now()
		review = &models.Review{
			JobID:      job.ID,
			ReviewerID: actor.ID,
			RevieweeID: reviewee.ID,
			Rating:     req.Rating,
			Comment:    req.Comment,
			IsPublic:   isPublic,
		}
		review.CreatedAt = now
		review.UpdatedAt = now

		if err := tx.Reviews().Create(ctx, review); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrDuplicateReview
			}
			return err
		}

		rec.Mutated(events.ReviewMutation(events.OpCreated, review))
		rec.Emit(events.ReviewCreated{
			ReviewID:   review.ID,
			JobID:      review.JobID,
			ReviewerID: review.ReviewerID,
			RevieweeID: review.RevieweeID,
			Rating:     review.Rating,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actorID, reviewID uint64) error {
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		review, err := tx.Reviews().GetByID(ctx, reviewID)
		if err != nil {
			return notFound(err, "review")
		}
		if !auth.CanDeleteReview(actor, review) {
			return apperrors.ErrPermissionDenied
		}
		if err := tx.Reviews().Delete(ctx, review.ID); err != nil {
			return notFound(err, "review")
		}
		rec.Mutated(events.ReviewMutation(events.OpDeleted, review))
		return nil
	})
}

// ListForUser - скрытые отзывы видят только их участники и администраторы
func (s *reviewService) ListForUser(ctx context.Context, userID, viewerID uint64) (*dto.ReviewListResponse, error) {
	if _, err := loadUser(ctx, s.deps.Store, userID); err != nil {
		return nil, mapStoreError(err)
	}

	viewerIsAdmin := false
	if viewerID != 0 {
		viewer, err := s.deps.Store.Users().GetByID(ctx, viewerID)
		if err == nil {
			viewerIsAdmin = viewer.IsAdmin()
		}
	}

	all, err := s.deps.Store.Reviews().ListByReviewee(ctx, userID, true)
	if err != nil {
		return nil, mapStoreError(err)
	}
	visible := make([]models.Review, 0, len(all))
	for i := range all {
		if auth.CanViewReview(viewerID, viewerIsAdmin, &all[i]) {
			visible = append(visible, all[i])
		}
	}

	stats, err := s.RatingSummary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ReviewListResponse{Reviews: visible, Rating: stats}, nil
}

func (s *reviewService) RatingSummary(ctx context.Context, userID uint64) (*models.RatingStats, error) {
	key := fmt.Sprintf("rating:%d", userID)
	tags := []string{cache.UserTag(userID), cache.TagRatings}
	stats, err := cache.Remember(ctx, s.deps.Cache, key, tags, s.deps.ttl(), func() (*models.RatingStats, error) {
		return s.deps.Store.Reviews().RatingStats(ctx, userID)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return stats, nil
}
