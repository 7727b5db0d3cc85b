package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"talent2income_backend/internal/auth"
	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/repositories"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/pkg/apperrors"
)

const (
	defaultConversationLimit = 50
	maxConversationLimit     = 200
)

type MessageService interface {
	Send(ctx context.Context, senderID uint64, req *dto.SendMessageRequest) (*models.Message, error)
	Get(ctx context.Context, actorID, messageID uint64) (*models.Message, error)
	Delete(ctx context.Context, actorID, messageID uint64) error
	Conversation(ctx context.Context, actorID, otherID uint64, limit int) (*dto.ConversationResponse, error)
	Typing(ctx context.Context, senderID, recipientID uint64) error
}

type messageService struct {
	deps Deps
}

func NewMessageService(deps Deps) MessageService {
	return &messageService{deps: deps}
}

// Send проверяет блокировки при отправке; повторная проверка - при доставке уведомления
func (s *messageService) Send(ctx context.Context, senderID uint64, req *dto.SendMessageRequest) (*models.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(content) > dto.MaxMessageLength {
		return nil, apperrors.ValidationError(map[string]string{"content": "Message must be between 1 and 5000 characters"})
	}

	var msg *models.Message
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		sender, err := loadActor(ctx, tx, senderID)
		if err != nil {
			return err
		}
		recipient, err := loadUser(ctx, tx, req.RecipientID)
		if err != nil {
			return err
		}
		allowed, err := auth.CanSendMessageTo(ctx, sender, recipient, tx.Blocks())
		if err != nil {
			return err
		}
		if !allowed {
			return apperrors.ErrPermissionDenied
		}
		if req.JobID != nil {
			if _, err := loadJob(ctx, tx, *req.JobID); err != nil {
				return err
			}
		}

		msg = &models.Message{
			SenderID:        sender.ID,
			RecipientID:     recipient.ID,
			JobID:           req.JobID,
			ConversationKey: models.ConversationKey(sender.ID, recipient.ID),
			Content:         content,
			CreatedAt:       s.deps.now(),
		}
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}

		rec.Mutated(events.MessageMutation(events.OpCreated, msg))
		rec.Emit(events.MessageSent{
			MessageID:       msg.ID,
			SenderID:        msg.SenderID,
			RecipientID:     msg.RecipientID,
			JobID:           msg.JobID,
			ConversationKey: msg.ConversationKey,
			Content:         msg.Content,
			SentAt:          msg.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Get - получатель, открывший сообщение, помечает его прочитанным
func (s *messageService) Get(ctx context.Context, actorID, messageID uint64) (*models.Message, error) {
	var msg *models.Message
	err := s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		m, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return notFound(err, "message")
		}
		if !auth.CanViewMessage(actor, m) {
			return apperrors.ErrPermissionDenied
		}

		if actor.ID == m.RecipientID && !m.IsRead {
			now := s.deps.now()
			if err := tx.Messages().MarkRead(ctx, m.ID, now); err != nil {
				return err
			}
			m.IsRead = true
			m.ReadAt = &now
			rec.Mutated(events.MessageMutation(events.OpUpdated, m, "is_read", "read_at"))
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *messageService) Delete(ctx context.Context, actorID, messageID uint64) error {
	now := s.deps.now()
	return s.deps.inTx(ctx, func(tx repositories.Tx, rec *events.Recorder) error {
		actor, err := loadActor(ctx, tx, actorID)
		if err != nil {
			return err
		}
		m, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return notFound(err, "message")
		}
		if !auth.CanDeleteMessage(actor, m, now) {
			return apperrors.ErrPermissionDenied
		}
		if err := tx.Messages().SoftDelete(ctx, m.ID); err != nil {
			return notFound(err, "message")
		}
		rec.Mutated(events.MessageMutation(events.OpDeleted, m))
		return nil
	})
}

func (s *messageService) Conversation(ctx context.Context, actorID, otherID uint64, limit int) (*dto.ConversationResponse, error) {
	if actorID == otherID {
		return nil, apperrors.ValidationError(map[string]string{"user_id": "Cannot open a conversation with yourself"})
	}
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}

	if _, err := loadUser(ctx, s.deps.Store, otherID); err != nil {
		return nil, mapStoreError(err)
	}

	key := models.ConversationKey(actorID, otherID)
	messages, err := s.deps.Store.Messages().ListConversation(ctx, key, limit)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return &dto.ConversationResponse{ConversationKey: key, Messages: messages}, nil
}

// Typing не сохраняется: событие сразу уходит диспетчеру уведомлений
func (s *messageService) Typing(ctx context.Context, senderID, recipientID uint64) error {
	sender, err := loadActor(ctx, s.deps.Store, senderID)
	if err != nil {
		return mapStoreError(err)
	}
	recipient, err := loadUser(ctx, s.deps.Store, recipientID)
	if err != nil {
		return mapStoreError(err)
	}
	allowed, err := auth.CanSendMessageTo(ctx, sender, recipient, s.deps.Store.Blocks())
	if err != nil {
		return mapStoreError(err)
	}
	if !allowed {
		return apperrors.ErrPermissionDenied
	}

	if s.deps.Bus != nil {
		s.deps.Bus.PublishEvent(ctx, events.UserTyping{
			SenderID:        sender.ID,
			RecipientID:     recipient.ID,
			ConversationKey: models.ConversationKey(sender.ID, recipient.ID),
			At:              s.deps.now(),
		})
	}
	return nil
}
