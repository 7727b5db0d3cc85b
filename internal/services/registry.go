package services

import (
	"talent2income_backend/internal/auth"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	UserService    UserService
	JobService     JobService
	PaymentService PaymentService
	ReviewService  ReviewService
	MessageService MessageService
	SkillService   SkillService
}

func NewServiceContainer(deps Deps, tokens *auth.TokenManager, autoVerify bool) *ServiceContainer {
	return &ServiceContainer{
		UserService:    NewUserService(deps, tokens, autoVerify),
		JobService:     NewJobService(deps),
		PaymentService: NewPaymentService(deps),
		ReviewService:  NewReviewService(deps),
		MessageService: NewMessageService(deps),
		SkillService:   NewSkillService(deps),
	}
}
