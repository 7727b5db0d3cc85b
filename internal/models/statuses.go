package models

type UserStatus string
type UserRole string
type JobStatus string
type BudgetType string
type PaymentStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusExpired    JobStatus = "expired"

	BudgetTypeHourly     BudgetType = "hourly"
	BudgetTypeFixed      BudgetType = "fixed"
	BudgetTypeNegotiable BudgetType = "negotiable"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusHeld     PaymentStatus = "held"
	PaymentStatusReleased PaymentStatus = "released"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusDisputed PaymentStatus = "disputed"
)

var JobStatuses = []JobStatus{
	JobStatusOpen, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled, JobStatusExpired,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusHeld, PaymentStatusReleased,
	PaymentStatusRefunded, PaymentStatusFailed, PaymentStatusDisputed,
}

func (s JobStatus) Valid() bool {
	for _, v := range JobStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (b BudgetType) Valid() bool {
	switch b {
	case BudgetTypeHourly, BudgetTypeFixed, BudgetTypeNegotiable:
		return true
	}
	return false
}
