package services

import (
	"context"
	"errors"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/workflow"
	"talent2income_backend/pkg/apperrors"
)

type PaymentService interface {
	Create(ctx context.Context, actorID, jobID uint64, amount float64) (*models.Payment, error)
	Get(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)
	GetByJob(ctx context.Context, actorID, jobID uint64) (*models.Payment, error)

	// Эскроу
	Hold(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)
	Release(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)
	Refund(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)
	Dispute(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error)
	MarkFailed(ctx context.Context, paymentID uint64, reason string) (*models.Payment, error)
}

type paymentService struct {
	deps Deps
}

func NewPaymentService(deps Deps) PaymentService {
	return &paymentService{deps: deps}
}

// Create - плательщик = владелец задания, получатель = исполнитель.
// Второй платеж по тому же заданию - ErrDuplicatePayment.
func (s *paymentService) Create(ctx context.Context, actorID, jobID uint64, amount float64) (*models.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	var payment *models.Payment
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		job, err := loadJob(ctx, tx, jobID)
		if err != nil {
			return err
		}
		if !auth.CanCreatePayment(actor, job) {
			return apperrors.ErrPermissionDenied
		}

		_, err = tx.Payments().GetByJobID(ctx, job.ID)
		switch {
		case err == nil:
			return apperrors.ErrDuplicatePayment
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}

		now := s.deps.now()
		payment = &models.Payment{
			JobID:   job.ID,
			PayerID: job.OwnerID,
			PayeeID: *job.AssignedTo,
			Amount:  amount,
			Status:  models.PaymentStatusPending,
		}
		payment.CreatedAt = now
		payment.UpdatedAt = now

		if err := tx.Payments().Create(ctx, payment); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrDuplicatePayment
			}
			return err
		}
		rec.Mutated(events.PaymentMutation(events.OpCreated, payment))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Get(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error) {
	actor, err := loadActor(ctx, s.deps.Store, actorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	p, err := loadPayment(ctx, s.deps.Store, paymentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !canViewPayment(actor, p) {
		return nil, apperrors.ErrPermissionDenied
	}
	return p, nil
}

func (s *paymentService) GetByJob(ctx context.Context, actorID, jobID uint64) (*models.Payment, error) {
	actor, err := loadActor(ctx, s.deps.Store, actorID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	p, err := s.deps.Store.Payments().GetByJobID(ctx, jobID)
	if err != nil {
		return nil, mapStoreError(notFound(err, "payment"))
	}
	if !canViewPayment(actor, p) {
		return nil, apperrors.ErrPermissionDenied
	}
	return p, nil
}

func canViewPayment(actor *models.User, p *models.Payment) bool {
	return actor.ID == p.PayerID || actor.ID == p.PayeeID || actor.IsAdmin()
}

// ---------------- Escrow transitions ----------------

func (s *paymentService) Hold(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error) {
	return s.move(ctx, actorID, paymentID, models.PaymentStatusHeld, func(actor *models.User, p *models.Payment) error {
		if actor.ID != p.PayerID {
			return apperrors.ErrPermissionDenied
		}
		if !auth.CanHoldPayment(actor, p) {
			return invalidPaymentTransition(p, models.PaymentStatusHeld)
		}
		return nil
	}, func(p *models.Payment) events.Event {
		return events.PaymentHeld{PaymentEvent: events.NewPaymentEvent(p)}
	})
}

func (s *paymentService) Release(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error) {
	return s.move(ctx, actorID, paymentID, models.PaymentStatusReleased, func(actor *models.User, p *models.Payment) error {
		if actor.ID != p.PayerID {
			return apperrors.ErrPermissionDenied
		}
		if !auth.CanReleasePayment(actor, p) {
			return invalidPaymentTransition(p, models.PaymentStatusReleased)
		}
		return nil
	}, func(p *models.Payment) events.Event {
		return events.PaymentReleased{PaymentEvent: events.NewPaymentEvent(p)}
	})
}

// Refund - из held в любое время, из released только в окне 7 дней с момента release
func (s *paymentService) Refund(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error) {
	now := s.deps.now()
	return s.move(ctx, actorID, paymentID, models.PaymentStatusRefunded, func(actor *models.User, p *models.Payment) error {
		if actor.ID != p.PayerID {
			return apperrors.ErrPermissionDenied
		}
		if !workflow.CanTransitionPayment(p.Status, models.PaymentStatusRefunded) {
			return invalidPaymentTransition(p, models.PaymentStatusRefunded)
		}
		if !auth.CanRefundPayment(actor, p, now) {
			return apperrors.ErrRefundWindowExpired.WithDetails(map[string]interface{}{
				"released_at": p.UpdatedAt,
				"window":      auth.RefundWindow.String(),
			})
		}
		return nil
	}, func(p *models.Payment) events.Event {
		return events.PaymentRefunded{PaymentEvent: events.NewPaymentEvent(p)}
	})
}

func (s *paymentService) Dispute(ctx context.Context, actorID, paymentID uint64) (*models.Payment, error) {
	return s.move(ctx, actorID, paymentID, models.PaymentStatusDisputed, func(actor *models.User, p *models.Payment) error {
		if actor.ID != p.PayerID && actor.ID != p.PayeeID {
			return apperrors.ErrPermissionDenied
		}
		if !auth.CanDisputePayment(actor, p) {
			return invalidPaymentTransition(p, models.PaymentStatusDisputed)
		}
		return nil
	}, func(p *models.Payment) events.Event {
		return events.PaymentDisputed{PaymentEvent: events.NewPaymentEvent(p), OpenedBy: actorID}
	})
}

// MarkFailed - ошибка платежного провайдера, актора нет
func (s *paymentService) MarkFailed(ctx context.Context, paymentID uint64, reason string) (*models.Payment, error) {
	var result *models.Payment
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		p, err := loadPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		expected := p.Version
		if err := workflow.ApplyPaymentTransition(p, models.PaymentStatusFailed); err != nil {
			return err
		}
		p.FailureReason = reason
		p.UpdatedAt = s.deps.now()
		if err := tx.Payments().UpdateIfVersion(ctx, p, expected); err != nil {
			return err
		}
		rec.Mutated(events.PaymentMutation(events.OpUpdated, p, "status", "failure_reason"))
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// move - общий шаблон: загрузка, проверка прав, переход по таблице, CAS, событие
func (s *paymentService) move(
	ctx context.Context,
	actorID, paymentID uint64,
	to models.PaymentStatus,
	authorize func(actor *models.User, p *models.Payment) error,
	event func(p *models.Payment) events.Event,
) (*models.Payment, error) {
	var result *models.Payment
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		p, err := loadPayment(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if err := authorize(actor, p); err != nil {
			return err
		}

		expected := p.Version
		if err := workflow.ApplyPaymentTransition(p, to); err != nil {
			return err
		}
		p.UpdatedAt = s.deps.now()
		if err := tx.Payments().UpdateIfVersion(ctx, p, expected); err != nil {
			return err
		}
		rec.Mutated(events.PaymentMutation(events.OpUpdated, p, "status"))
		rec.Emit(event(p))
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func invalidPaymentTransition(p *models.Payment, to models.PaymentStatus) error {
	return apperrors.ErrInvalidPaymentTransition.WithDetails(map[string]interface{}{
		"from": p.Status,
		"to":   to,
	})
}
