package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler    *AuthHandler
	UserHandler    *UserHandler
	JobHandler     *JobHandler
	PaymentHandler *PaymentHandler
	ReviewHandler  *ReviewHandler
	MessageHandler *MessageHandler
	SkillHandler   *SkillHandler
}
