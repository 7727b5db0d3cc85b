package validator

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"talent2income_backend/internal/models"
)

// registerCustomRules регистрирует кастомные правила. Ошибка регистрации - ошибка запуска.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// -----------------------------------------------------------------
	// ➡️ Правила, основанные на 'statuses.go'
	// -----------------------------------------------------------------
	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-job-status", validateJobStatus)
	mustRegister("is-payment-status", validatePaymentStatus)
	mustRegister("is-budget-type", validateBudgetType)

	// -----------------------------------------------------------------
	// ➡️ Отзывы
	// -----------------------------------------------------------------
	mustRegister("review-comment", validateReviewComment)
}

// Пустые значения пропускаем: для этого есть 'required'

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.UserRole(value) {
	case models.UserRoleUser, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateJobStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.JobStatus(value).Valid()
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.PaymentStatus(value).Valid()
}

func validateBudgetType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.BudgetType(value).Valid()
}

func validateReviewComment(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	n := utf8.RuneCountInString(value)
	return n >= models.MinCommentLength && n <= models.MaxCommentLength
}
