package workflow

import (
	"talent2income_backend/internal/models"
	"talent2income_backend/pkg/apperrors"
)

// paymentTransitions - эскроу: pending -> held -> released/refunded/disputed.
// released -> refunded разрешен только внутри окна возврата (см. auth.CanRefundPayment).
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending:  {models.PaymentStatusHeld, models.PaymentStatusFailed},
	models.PaymentStatusHeld:     {models.PaymentStatusReleased, models.PaymentStatusRefunded, models.PaymentStatusDisputed, models.PaymentStatusFailed},
	models.PaymentStatusReleased: {models.PaymentStatusRefunded},
	models.PaymentStatusRefunded: {},
	models.PaymentStatusDisputed: {},
	models.PaymentStatusFailed:   {},
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	for _, s := range paymentTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminalPayment(status models.PaymentStatus) bool {
	allowed, ok := paymentTransitions[status]
	return ok && len(allowed) == 0
}

func ApplyPaymentTransition(p *models.Payment, to models.PaymentStatus) error {
	if !CanTransitionPayment(p.Status, to) {
		return apperrors.ErrInvalidPaymentTransition.WithDetails(map[string]interface{}{
			"from": p.Status,
			"to":   to,
		})
	}
	p.Status = to
	return nil
}
