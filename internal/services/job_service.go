package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/cache"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/internal/workflow"
	"talent2income_backend/pkg/apperrors"
)

const expireBatchSize = 100

type JobService interface {
	Create(ctx context.Context, actorID uint64, req *dto.CreateJobRequest) (*models.Job, error)
	Get(ctx context.Context, jobID uint64) (*models.Job, error)
	List(ctx context.Context, query *dto.JobListQuery) (*dto.JobListResponse, error)
	Update(ctx context.Context, actorID, jobID uint64, req *dto.UpdateJobRequest) (*models.Job, error)
	Delete(ctx context.Context, actorID, jobID uint64) error

	// Переходы статусов
	RequestTransition(ctx context.Context, actorID, jobID uint64, to models.JobStatus) (*models.Job, error)
	AssignUser(ctx context.Context, actorID, jobID uint64, userID *uint64) (*models.Job, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

type jobService struct {
	deps Deps
}

func NewJobService(deps Deps) JobService {
	return &jobService{deps: deps}
}

// ---------------- CRUD ----------------

func (s *jobService) Create(ctx context.Context, actorID uint64, req *dto.CreateJobRequest) (*models.Job, error) {
	skills, err := encodeStrings(req.RequiredSkills)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := s.deps.now()
	job := &models.Job{
		OwnerID:        actorID,
		CategoryID:     req.CategoryID,
		Title:          req.Title,
		Description:    req.Description,
		BudgetMin:      req.BudgetMin,
		BudgetMax:      req.BudgetMax,
		BudgetType:     req.BudgetType,
		Status:         models.JobStatusOpen,
		Deadline:       req.Deadline,
		RequiredSkills: skills,
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	if !job.BudgetValid() {
		return nil, apperrors.ErrInvalidBudget
	}
	if !job.BudgetType.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"budget_type": "Unknown value"})
	}

	err = s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		if _, err := loadActor(ctx, tx, actorID); err != nil {
			return err
		}
		if err := tx.Jobs().Create(ctx, job); err != nil {
			return err
		}
		rec.Mutated(events.JobMutation(events.OpCreated, job))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *jobService) Get(ctx context.Context, jobID uint64) (*models.Job, error) {
	key := fmt.Sprintf("job:%d", jobID)
	job, err := cache.Remember(ctx, s.deps.Cache, key, []string{cache.JobTag(jobID)}, s.deps.ttl(), func() (*models.Job, error) {
		return loadJob(ctx, s.deps.Store, jobID)
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, query *dto.JobListQuery) (*dto.JobListResponse, error) {
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	filter := repositories.JobFilter{
		Status:     query.Status,
		CategoryID: query.CategoryID,
		OwnerID:    query.OwnerID,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}

	tags := []string{cache.TagSearch, cache.TagJobs}
	if filter.CategoryID != 0 {
		tags = append(tags, cache.CategoryTag(filter.CategoryID))
	}
	key := fmt.Sprintf("jobs:list:%s:%d:%d:%d:%d", filter.Status, filter.CategoryID, filter.OwnerID, page, pageSize)

	resp, err := cache.Remember(ctx, s.deps.Cache, key, tags, s.deps.ttl(), func() (*dto.JobListResponse, error) {
		jobs, total, err := s.deps.Store.Jobs().List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if jobs == nil {
			jobs = []models.Job{}
		}
		return &dto.JobListResponse{Jobs: jobs, Total: total, Page: page, PageSize: pageSize}, nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return resp, nil
}

// Update - редактирование доступно только пока задание открыто
func (s *jobService) Update(ctx context.Context, actorID, jobID uint64, req *dto.UpdateJobRequest) (*models.Job, error) {
	var result *models.Job
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !auth.CanManageJob(actor, job) {
			return apperrors.ErrPermissionDenied
		}
		if job.Status != models.JobStatusOpen {
			return apperrors.ErrInvalidTransition.WithDetails(map[string]interface{}{
				"from":   job.Status,
				"reason": "job can only be edited while open",
			})
		}

		var changed []string
		if req.Title != nil {
			job.Title = *req.Title
			changed = append(changed, "title")
		}
		if req.Description != nil {
			job.Description = *req.Description
			changed = append(changed, "description")
		}
		if req.BudgetMin != nil {
			job.BudgetMin = req.BudgetMin
			changed = append(changed, "budget_min")
		}
		if req.BudgetMax != nil {
			job.BudgetMax = req.BudgetMax
			changed = append(changed, "budget_max")
		}
		if req.BudgetType != nil {
			job.BudgetType = *req.BudgetType
			changed = append(changed, "budget_type")
		}
		if req.Deadline != nil {
			job.Deadline = req.Deadline
			changed = append(changed, "deadline")
		}
		if req.RequiredSkills != nil {
			skills, err := encodeStrings(req.RequiredSkills)
			if err != nil {
				return err
			}
			job.RequiredSkills = skills
			changed = append(changed, "required_skills")
		}
		if !job.BudgetValid() {
			return apperrors.ErrInvalidBudget
		}
		if len(changed) == 0 {
			result = job
			return nil
		}

		job.UpdatedAt = s.deps.now()
		if err := tx.Jobs().UpdateIfVersion(ctx, job, job.Version); err != nil {
			return err
		}
		rec.Mutated(events.JobMutation(events.OpUpdated, job, changed...))
		result = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *jobService) Delete(ctx context.Context, actorID, jobID uint64) error {
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !auth.CanManageJob(actor, job) {
			return apperrors.ErrPermissionDenied
		}
		if err := tx.Jobs().SoftDelete(ctx, job.ID); err != nil {
			return notFound(err, "job")
		}
		rec.Mutated(events.JobMutation(events.OpDeleted, job))
		return nil
	})
}

// ---------------- Status transitions ----------------

func (s *jobService) RequestTransition(ctx context.Context, actorID, jobID uint64, to models.JobStatus) (*models.Job, error) {
	if !to.Valid() {
		return nil, apperrors.ValidationError(map[string]string{"status": "Unknown value"})
	}

	var result *models.Job
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !auth.CanManageJob(actor, job) {
			return apperrors.ErrPermissionDenied
		}

		result, err = s.transition(ctx, tx, rec, job, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// transition - проверка по таблице переходов и CAS-запись в рамках текущей транзакции
func (s *jobService) transition(ctx context.Context, tx repositories.Tx, rec *events.Recorder, job *models.Job, to models.JobStatus) (*models.Job, error) {
	from := job.Status
	hadAssignee := job.AssignedTo != nil
	expected := job.Version

	if err := workflow.ApplyJobTransition(job, to); err != nil {
		return nil, err
	}
	job.UpdatedAt = s.deps.now()
	if err := tx.Jobs().UpdateIfVersion(ctx, job, expected); err != nil {
		return nil, err
	}

	changed := []string{"status"}
	if hadAssignee && job.AssignedTo == nil {
		changed = append(changed, "assigned_to")
	}
	rec.Mutated(events.JobMutation(events.OpUpdated, job, changed...))
	rec.Emit(events.JobStatusChanged{
		JobID:      job.ID,
		OwnerID:    job.OwnerID,
		AssignedTo: job.AssignedTo,
		From:       from,
		To:         to,
	})
	return job, nil
}

func (s *jobService) AssignUser(ctx context.Context, actorID, jobID uint64, userID *uint64) (*models.Job, error) {
	var result *models.Job
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !auth.CanManageJob(actor, job) {
			return apperrors.ErrPermissionDenied
		}

		expected := job.Version
		from := job.Status
		if err := workflow.ApplyAssignment(job, userID); err != nil {
			return err
		}
		if userID != nil {
			assignee, err := loadUser(ctx, tx, *userID)
			if err != nil {
				return err
			}
			if !assignee.IsActive() {
				return apperrors.ValidationError(map[string]string{"user_id": "Assignee account is not active"})
			}
		}

		job.UpdatedAt = s.deps.now()
		if err := tx.Jobs().UpdateIfVersion(ctx, job, expected); err != nil {
			return err
		}

		rec.Mutated(events.JobMutation(events.OpUpdated, job, "assigned_to", "status"))
		if job.AssignedTo != nil {
			rec.Emit(events.JobAssigned{
				JobID:      job.ID,
				OwnerID:    job.OwnerID,
				AssigneeID: *job.AssignedTo,
				Title:      job.Title,
			})
		}
		if from != job.Status {
			rec.Emit(events.JobStatusChanged{
				JobID: job.ID, OwnerID: job.OwnerID, AssignedTo: job.AssignedTo, From: from, To: job.Status,
			})
		}
		result = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExpireOverdue переводит открытые задания с истекшим дедлайном в expired.
// Каждое задание - своя транзакция: проигранная гонка пропускает задание, а не всю пачку.
func (s *jobService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	jobs, err := s.deps.Store.Jobs().ListOverdueOpen(ctx, now, expireBatchSize)
	if err != nil {
		return 0, mapStoreError(err)
	}

	expired := 0
	for _, candidate := range jobs {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
			job, err := loadJob(ctx, tx, candidate.ID)
			if err != nil {
				return err
			}
			if job.Status != models.JobStatusOpen || job.Deadline == nil || !job.Deadline.Before(now) {
				return errSkip
			}
			_, err = s.transition(ctx, tx, rec, job, models.JobStatusExpired)
			return err
		})
		switch {
		case err == nil:
			expired++
		case errors.Is(err, errSkip):
		default:
			logger.WorkerLog("job_expiry", "expire", err, "job_id", candidate.ID)
		}
	}
	return expired, nil
}

// errSkip - задание уже не подходит под истечение, откатываем без ошибки
var errSkip = errors.New("job no longer overdue")

func encodeStrings(values []string) (datatypes.JSON, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
