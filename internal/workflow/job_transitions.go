package workflow

import (
	"talent2income_backend/internal/models"
	"talent2income_backend/pkg/apperrors"
)

// jobTransitions - допустимые переходы статуса задания
var jobTransitions = map[models.JobStatus][]models.JobStatus{
	models.JobStatusOpen:       {models.JobStatusInProgress, models.JobStatusCancelled, models.JobStatusExpired},
	models.JobStatusInProgress: {models.JobStatusCompleted, models.JobStatusCancelled},
	models.JobStatusCompleted:  {},
	models.JobStatusCancelled:  {models.JobStatusOpen},
	models.JobStatusExpired:    {models.JobStatusOpen},
}

func CanTransitionJob(from, to models.JobStatus) bool {
	for _, s := range jobTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedJobTransitions возвращает копию списка, вызывающий может ее менять
func AllowedJobTransitions(from models.JobStatus) []models.JobStatus {
	allowed := jobTransitions[from]
	out := make([]models.JobStatus, len(allowed))
	copy(out, allowed)
	return out
}

func IsTerminalJob(status models.JobStatus) bool {
	allowed, ok := jobTransitions[status]
	return ok && len(allowed) == 0
}

// ApplyJobTransition меняет статус задания в памяти. Сохранение - забота вызывающего.
// При переоткрытии (cancelled|expired -> open) исполнитель снимается,
// при отмене исполнитель сохраняется для истории.
func ApplyJobTransition(job *models.Job, to models.JobStatus) error {
	if !CanTransitionJob(job.Status, to) {
		return apperrors.ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from":    job.Status,
			"to":      to,
			"allowed": AllowedJobTransitions(job.Status),
		})
	}
	if to == models.JobStatusOpen {
		job.AssignedTo = nil
	}
	job.Status = to
	return nil
}

// ApplyAssignment назначает (или снимает при userID == nil) исполнителя.
// Назначение переводит задание open -> in_progress.
func ApplyAssignment(job *models.Job, userID *uint64) error {
	if job.Status != models.JobStatusOpen {
		return apperrors.ErrInvalidTransition.WithDetails(map[string]interface{}{
			"from":   job.Status,
			"reason": "job is not open",
		})
	}
	if userID == nil {
		job.AssignedTo = nil
		return nil
	}
	if *userID == job.OwnerID {
		return apperrors.ErrSelfAssignmentDenied
	}
	assignee := *userID
	job.AssignedTo = &assignee
	job.Status = models.JobStatusInProgress
	return nil
}
