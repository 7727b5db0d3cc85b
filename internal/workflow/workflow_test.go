package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/models"
	"talent2income_backend/pkg/apperrors"
)

func ptr(v uint64) *uint64 { return &v }

func TestJobTransitions_Table(t *testing.T) {
	allowed := map[[2]models.JobStatus]bool{
		{models.JobStatusOpen, models.JobStatusInProgress}:      true,
		{models.JobStatusOpen, models.JobStatusCancelled}:       true,
		{models.JobStatusOpen, models.JobStatusExpired}:         true,
		{models.JobStatusInProgress, models.JobStatusCompleted}: true,
		{models.JobStatusInProgress, models.JobStatusCancelled}: true,
		{models.JobStatusCancelled, models.JobStatusOpen}:       true,
		{models.JobStatusExpired, models.JobStatusOpen}:         true,
	}

	// полный перебор пар
	for _, from := range models.JobStatuses {
		for _, to := range models.JobStatuses {
			want := allowed[[2]models.JobStatus{from, to}]
			assert.Equal(t, want, CanTransitionJob(from, to), "%s -> %s", from, to)
		}
	}
}

func TestJobTransitions_CompletedIsTerminal(t *testing.T) {
	assert.True(t, IsTerminalJob(models.JobStatusCompleted))
	assert.False(t, IsTerminalJob(models.JobStatusCancelled))

	for _, to := range models.JobStatuses {
		job := &models.Job{Status: models.JobStatusCompleted}
		err := ApplyJobTransition(job, to)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition), "completed -> %s", to)
		assert.Equal(t, models.JobStatusCompleted, job.Status)
	}
}

func TestApplyJobTransition_AssigneePolicy(t *testing.T) {
	job := &models.Job{OwnerID: 1, AssignedTo: ptr(2), Status: models.JobStatusInProgress}

	require.NoError(t, ApplyJobTransition(job, models.JobStatusCancelled))
	require.NotNil(t, job.AssignedTo, "при отмене исполнитель сохраняется")
	assert.Equal(t, uint64(2), *job.AssignedTo)

	require.NoError(t, ApplyJobTransition(job, models.JobStatusOpen))
	assert.Nil(t, job.AssignedTo, "при переоткрытии исполнитель снимается")
	assert.Equal(t, models.JobStatusOpen, job.Status)
}

func TestAllowedJobTransitions_ReturnsCopy(t *testing.T) {
	list := AllowedJobTransitions(models.JobStatusOpen)
	require.Len(t, list, 3)
	list[0] = models.JobStatusCompleted
	assert.False(t, CanTransitionJob(models.JobStatusOpen, models.JobStatusCompleted))
}

func TestApplyAssignment(t *testing.T) {
	t.Run("назначение переводит в in_progress", func(t *testing.T) {
		job := &models.Job{OwnerID: 1, Status: models.JobStatusOpen}
		require.NoError(t, ApplyAssignment(job, ptr(2)))
		assert.Equal(t, models.JobStatusInProgress, job.Status)
		assert.Equal(t, uint64(2), *job.AssignedTo)

		err := ApplyAssignment(job, ptr(3))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
		assert.Equal(t, uint64(2), *job.AssignedTo)
	})

	t.Run("снятие исполнителя в open", func(t *testing.T) {
		job := &models.Job{OwnerID: 1, Status: models.JobStatusOpen}
		require.NoError(t, ApplyAssignment(job, nil))
		assert.Nil(t, job.AssignedTo)
		assert.Equal(t, models.JobStatusOpen, job.Status)
	})

	t.Run("владелец не может назначить себя", func(t *testing.T) {
		job := &models.Job{OwnerID: 1, Status: models.JobStatusOpen}
		err := ApplyAssignment(job, ptr(1))
		assert.True(t, apperrors.Is(err, apperrors.ErrSelfAssignmentDenied))
		assert.Equal(t, models.JobStatusOpen, job.Status)
	})

	t.Run("снятие вне open запрещено", func(t *testing.T) {
		job := &models.Job{OwnerID: 1, AssignedTo: ptr(2), Status: models.JobStatusInProgress}
		err := ApplyAssignment(job, nil)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	})
}

func TestPaymentTransitions(t *testing.T) {
	allowed := map[[2]models.PaymentStatus]bool{
		{models.PaymentStatusPending, models.PaymentStatusHeld}:      true,
		{models.PaymentStatusPending, models.PaymentStatusFailed}:    true,
		{models.PaymentStatusHeld, models.PaymentStatusReleased}:     true,
		{models.PaymentStatusHeld, models.PaymentStatusRefunded}:     true,
		{models.PaymentStatusHeld, models.PaymentStatusDisputed}:     true,
		{models.PaymentStatusHeld, models.PaymentStatusFailed}:       true,
		{models.PaymentStatusReleased, models.PaymentStatusRefunded}: true,
	}
	for _, from := range models.PaymentStatuses {
		for _, to := range models.PaymentStatuses {
			want := allowed[[2]models.PaymentStatus{from, to}]
			assert.Equal(t, want, CanTransitionPayment(from, to), "%s -> %s", from, to)
		}
	}

	p := &models.Payment{Status: models.PaymentStatusPending}
	err := ApplyPaymentTransition(p, models.PaymentStatusReleased)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidPaymentTransition))
	assert.Equal(t, models.PaymentStatusPending, p.Status)

	assert.True(t, IsTerminalPayment(models.PaymentStatusDisputed))
	assert.False(t, IsTerminalPayment(models.PaymentStatusReleased))
}

func TestCheckReviewEligibility(t *testing.T) {
	completed := &models.Job{OwnerID: 1, AssignedTo: ptr(2), Status: models.JobStatusCompleted}
	open := &models.Job{OwnerID: 1, AssignedTo: ptr(2), Status: models.JobStatusOpen}

	tests := []struct {
		name     string
		job      *models.Job
		reviewer uint64
		reviewee uint64
		dup      bool
		want     *apperrors.AppError
	}{
		{"ok владелец", completed, 1, 2, false, nil},
		{"ok исполнитель", completed, 2, 1, false, nil},
		{"не завершено", open, 1, 2, false, apperrors.ErrReviewNotEligible},
		{"не завершено важнее дубликата", open, 1, 2, true, apperrors.ErrReviewNotEligible},
		{"сам себе", completed, 1, 1, false, apperrors.ErrInvalidReviewee},
		{"посторонний получатель", completed, 1, 3, false, apperrors.ErrInvalidReviewee},
		{"дубликат", completed, 1, 2, true, apperrors.ErrDuplicateReview},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReviewEligibility(tt.job, tt.reviewer, tt.reviewee, tt.dup)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidateRatingAndComment(t *testing.T) {
	for r := -1; r <= 7; r++ {
		err := ValidateRating(r)
		if r >= 1 && r <= 5 {
			assert.NoError(t, err, "rating %d", r)
		} else {
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidRating), "rating %d", r)
		}
	}

	assert.NoError(t, ValidateComment(""))
	assert.NoError(t, ValidateComment("   "))
	assert.NoError(t, ValidateComment("Отличная работа"))
	assert.Error(t, ValidateComment("коротко"))
	assert.NoError(t, ValidateComment(strings.Repeat("я", 1000)))
	assert.Error(t, ValidateComment(strings.Repeat("a", 1001)))
}
