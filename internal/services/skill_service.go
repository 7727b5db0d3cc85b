package services

import (
	"context"
	"fmt"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/cache"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/pkg/apperrors"
)

type SkillService interface {
	Create(ctx context.Context, actorID uint64, req *dto.CreateSkillRequest) (*models.Skill, error)
	Get(ctx context.Context, skillID uint64) (*models.Skill, error)
	Update(ctx context.Context, actorID, skillID uint64, req *dto.UpdateSkillRequest) (*models.Skill, error)
	Delete(ctx context.Context, actorID, skillID uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]models.Skill, error)
}

type skillService struct {
	deps Deps
}

func NewSkillService(deps Deps) SkillService {
	return &skillService{deps: deps}
}

func (s *skillService) Create(ctx context.Context, actorID uint64, req *dto.CreateSkillRequest) (*models.Skill, error) {
	tags, err := encodeStrings(req.Tags)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.deps.now()
	skill := &models.Skill{
		UserID:      actorID,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		PriceFrom:   req.PriceFrom,
		Tags:        tags,
		IsAvailable: true,
	}
	skill.CreatedAt = now
	skill.UpdatedAt = now

	err = s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		if _, err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		if err := tx.Skills().Create(ctx, skill); err != nil {
			return err
		}
		rec.Mutated(events.SkillMutation(events.OpCreated, skill))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skill, nil
}

func (s *skillService) Get(ctx context.Context, skillID uint64) (*models.Skill, error) {
	key := fmt.Sprintf("skill:%d", skillID)
	tags := []string{cache.EntityTag(events.EntitySkill, skillID)}
	skill, err := cache.Remember(ctx, s.deps.Cache, key, tags, s.deps.ttl(), func() (*models.Skill, error) {
		sk, err := s.deps.Store.Skills().GetByID(ctx, skillID)
		return sk, notFound(err, "skill")
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return skill, nil
}

func (s *skillService) Update(ctx context.Context, actorID, skillID uint64, req *dto.UpdateSkillRequest) (*models.Skill, error) {
	var result *models.Skill
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		skill, err := tx.Skills().GetByID(ctx, skillID)
		if err != nil {
			return notFound(err, "skill")
		}
		if !auth.CanManageSkill(actor, skill) {
			return apperrors.ErrPermissionDenied
		}

		var changed []string
		if req.Title != nil {
			skill.Title = *req.Title
			changed = append(changed, "title")
		}
		if req.Description != nil {
			skill.Description = *req.Description
			changed = append(changed, "description")
		}
		if req.PriceFrom != nil {
			skill.PriceFrom = req.PriceFrom
			changed = append(changed, "price_from")
		}
		if req.Tags != nil {
			tags, err := encodeStrings(req.Tags)
			if err != nil {
				return err
			}
			skill.Tags = tags
			changed = append(changed, "tags")
		}
		if req.IsAvailable != nil {
			skill.IsAvailable = *req.IsAvailable
			changed = append(changed, "is_available")
		}
		if len(changed) == 0 {
			result = skill
			return nil
		}

		skill.UpdatedAt = s.deps.now()
		if err := tx.Skills().Update(ctx, skill); err != nil {
			return err
		}
		rec.Mutated(events.SkillMutation(events.OpUpdated, skill, changed...))
		result = skill
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *skillService) Delete(ctx context.Context, actorID, skillID uint64) error {
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		skill, err := tx.Skills().GetByID(ctx, skillID)
		if err != nil {
			return notFound(err, "skill")
		}
		if !auth.CanManageSkill(actor, skill) {
			return apperrors.ErrPermissionDenied
		}
		if err := tx.Skills().SoftDelete(ctx, skill.ID); err != nil {
			return notFound(err, "skill")
		}
		rec.Mutated(events.SkillMutation(events.OpDeleted, skill))
		return nil
	})
}

func (s *skillService) ListByUser(ctx context.Context, userID uint64) ([]models.Skill, error) {
	key := fmt.Sprintf("skills:user:%d", userID)
	tags := []string{cache.UserTag(userID), cache.TagSkills}
	skills, err := cache.Remember(ctx, s.deps.Cache, key, tags, s.deps.ttl(), func() ([]models.Skill, error) {
		list, err := s.deps.Store.Skills().ListByUser(ctx, userID)
		if list == nil && err == nil {
			list = []models.Skill{}
		}
		return list, err
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return skills, nil
}
