package auth

import (
	"context"
	"time"

	"talent2income_backend/internal/models"
)

// Все предикаты детерминированы: текущее время передается явно через now.

const (
	// MessageDeleteWindow - сколько отправитель может удалить свое сообщение
	MessageDeleteWindow = 24 * time.Hour
	// RefundWindow - окно возврата после release (спорный период)
	RefundWindow = 7 * 24 * time.Hour
)

// BlockChecker - внешний сервис блокировок.
// IsBlocked(a, b) == true, если a заблокировал b.
type BlockChecker interface {
	IsBlocked(ctx context.Context, blockerID, blockedID uint64) (bool, error)
	IsMutuallyBlocked(ctx context.Context, a, b uint64) (bool, error)
}

// CanViewMessage - участник переписки или администратор
func CanViewMessage(actor *models.User, msg *models.Message) bool {
	if actor == nil || msg == nil {
		return false
	}
	return actor.ID == msg.SenderID || actor.ID == msg.RecipientID || actor.IsAdmin()
}

// CanDeleteMessage - отправитель в течение 24 часов или администратор
func CanDeleteMessage(actor *models.User, msg *models.Message, now time.Time) bool {
	if actor == nil || msg == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.ID == msg.SenderID && now.Sub(msg.CreatedAt) < MessageDeleteWindow
}

// CanSendMessageTo запрещает: себе, неактивному получателю, неподтвержденному отправителю,
// и при блокировке в любую сторону.
func CanSendMessageTo(ctx context.Context, actor, recipient *models.User, blocks BlockChecker) (bool, error) {
	if actor == nil || recipient == nil {
		return false, nil
	}
	if actor.ID == recipient.ID {
		return false, nil
	}
	if !recipient.IsActive() || !actor.IsVerifiedActive() {
		return false, nil
	}

	blockedByRecipient, err := blocks.IsBlocked(ctx, recipient.ID, actor.ID)
	if err != nil {
		return false, err
	}
	if blockedByRecipient {
		return false, nil
	}
	blockedByActor, err := blocks.IsBlocked(ctx, actor.ID, recipient.ID)
	if err != nil {
		return false, err
	}
	return !blockedByActor, nil
}

// CanManageJob - владелец задания или администратор
func CanManageJob(actor *models.User, job *models.Job) bool {
	if actor == nil || job == nil {
		return false
	}
	return actor.ID == job.OwnerID || actor.IsAdmin()
}

// CanManageSkill - владелец навыка или администратор
func CanManageSkill(actor *models.User, skill *models.Skill) bool {
	if actor == nil || skill == nil {
		return false
	}
	return actor.ID == skill.UserID || actor.IsAdmin()
}

// CanCreatePayment - владелец завершенного задания с назначенным исполнителем
func CanCreatePayment(actor *models.User, job *models.Job) bool {
	if actor == nil || job == nil {
		return false
	}
	return actor.ID == job.OwnerID &&
		job.Status == models.JobStatusCompleted &&
		job.AssignedTo != nil
}

// CanHoldPayment - плательщик вносит средства на удержание
func CanHoldPayment(actor *models.User, payment *models.Payment) bool {
	if actor == nil || payment == nil {
		return false
	}
	return actor.ID == payment.PayerID && payment.Status == models.PaymentStatusPending
}

// CanReleasePayment - плательщик освобождает удержанные средства
func CanReleasePayment(actor *models.User, payment *models.Payment) bool {
	if actor == nil || payment == nil {
		return false
	}
	return actor.ID == payment.PayerID && payment.Status == models.PaymentStatusHeld
}

// CanRefundPayment - плательщик, статус held или released;
// для released - не позже 7 дней с последнего обновления платежа.
func CanRefundPayment(actor *models.User, payment *models.Payment, now time.Time) bool {
	if actor == nil || payment == nil {
		return false
	}
	if actor.ID != payment.PayerID {
		return false
	}
	switch payment.Status {
	case models.PaymentStatusHeld:
		return true
	case models.PaymentStatusReleased:
		return now.Sub(payment.UpdatedAt) <= RefundWindow
	default:
		return false
	}
}

// CanDisputePayment - любая сторона сделки, пока средства удерживаются
func CanDisputePayment(actor *models.User, payment *models.Payment) bool {
	if actor == nil || payment == nil {
		return false
	}
	isParty := actor.ID == payment.PayerID || actor.ID == payment.PayeeID
	return isParty && payment.Status == models.PaymentStatusHeld
}

// CanCreateReview - задание завершено, получатель отзыва - другой участник,
// и автор еще не оставлял отзыв по этому заданию.
func CanCreateReview(actor *models.User, job *models.Job, reviewee *models.User, alreadyReviewed bool) bool {
	if actor == nil || job == nil || reviewee == nil {
		return false
	}
	return job.Status == models.JobStatusCompleted &&
		job.IsParticipant(reviewee.ID) &&
		actor.ID != reviewee.ID &&
		!alreadyReviewed
}

// CanDeleteReview - автор отзыва или администратор
func CanDeleteReview(actor *models.User, review *models.Review) bool {
	if actor == nil || review == nil {
		return false
	}
	return actor.ID == review.ReviewerID || actor.IsAdmin()
}

// CanViewReview - публичные видны всем, скрытые - только участникам и администраторам
func CanViewReview(viewerID uint64, viewerIsAdmin bool, review *models.Review) bool {
	if review.IsPublic || viewerIsAdmin {
		return true
	}
	return viewerID != 0 && (viewerID == review.RevieweeID || viewerID == review.ReviewerID)
}
