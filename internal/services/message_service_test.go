package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/models"
	"talent2income_backend/internal/services/dto"
	"talent2income_backend/pkg/apperrors"
)

func TestMessageService_SendAndRead(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	// 1. Отправка
	msg, err := f.services.MessageService.Send(f.ctx, alice.ID, &dto.SendMessageRequest{
		RecipientID: bob.ID,
		Content:     "  Привет, есть вопрос по заданию  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Привет, есть вопрос по заданию", msg.Content)
	assert.Equal(t, models.ConversationKey(alice.ID, bob.ID), msg.ConversationKey)
	assert.Contains(t, f.bus.eventNames(), events.NameMessageSent)

	// 2. Отправитель читает - статус не меняется
	got, err := f.services.MessageService.Get(f.ctx, alice.ID, msg.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRead)

	// 3. Получатель читает - сообщение прочитано
	got, err = f.services.MessageService.Get(f.ctx, bob.ID, msg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	require.NotNil(t, got.ReadAt)

	// 4. Посторонний не видит
	eve := f.user(t, "eve@example.com")
	_, err = f.services.MessageService.Get(f.ctx, eve.ID, msg.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	conv, err := f.services.MessageService.Conversation(f.ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 1)
}

func TestMessageService_SendRules(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	unverified := f.user(t, "new@example.com")
	unverified.IsVerified = false
	require.NoError(t, f.store.Users().Update(f.ctx, unverified))

	tests := []struct {
		name    string
		sender  uint64
		req     dto.SendMessageRequest
		wantErr error
	}{
		{"пустое сообщение", alice.ID, dto.SendMessageRequest{RecipientID: bob.ID, Content: "   "}, nil},
		{"слишком длинное", alice.ID, dto.SendMessageRequest{RecipientID: bob.ID, Content: strings.Repeat("я", dto.MaxMessageLength+1)}, nil},
		{"себе", alice.ID, dto.SendMessageRequest{RecipientID: alice.ID, Content: "привет"}, apperrors.ErrPermissionDenied},
		{"неподтвержденный отправитель", unverified.ID, dto.SendMessageRequest{RecipientID: bob.ID, Content: "привет"}, apperrors.ErrPermissionDenied},
		{"несуществующее задание", alice.ID, dto.SendMessageRequest{RecipientID: bob.ID, JobID: ptr(uint64(777)), Content: "привет"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.MessageService.Send(f.ctx, tt.sender, &tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

// Блокировка в любую сторону запрещает отправку и индикатор набора
func TestMessageService_BlockDeniesSend(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	require.NoError(t, f.services.UserService.Block(f.ctx, bob.ID, alice.ID))
	f.bus.reset()

	_, err := f.services.MessageService.Send(f.ctx, alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "привет"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.services.MessageService.Send(f.ctx, bob.ID, &dto.SendMessageRequest{RecipientID: alice.ID, Content: "привет"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, f.services.MessageService.Typing(f.ctx, alice.ID, bob.ID), apperrors.ErrPermissionDenied)
	assert.Empty(t, f.bus.eventNames())

	// после разблокировки снова можно
	require.NoError(t, f.services.UserService.Unblock(f.ctx, bob.ID, alice.ID))
	_, err = f.services.MessageService.Send(f.ctx, alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "привет"})
	require.NoError(t, err)
	require.NoError(t, f.services.MessageService.Typing(f.ctx, alice.ID, bob.ID))
	assert.Equal(t, []string{events.NameMessageSent, events.NameUserTyping}, f.bus.eventNames())
}

func TestMessageService_DeleteWindow(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")

	send := func() *models.Message {
		msg, err := f.services.MessageService.Send(f.ctx, alice.ID, &dto.SendMessageRequest{RecipientID: bob.ID, Content: "привет"})
		require.NoError(t, err)
		return msg
	}

	// 1. Получатель не может удалить
	m1 := send()
	assert.ErrorIs(t, f.services.MessageService.Delete(f.ctx, bob.ID, m1.ID), apperrors.ErrPermissionDenied)

	// 2. Отправитель в пределах 24 часов
	f.clock.Advance(23 * time.Hour)
	require.NoError(t, f.services.MessageService.Delete(f.ctx, alice.ID, m1.ID))

	// 3. После 24 часов - запрещено
	m2 := send()
	f.clock.Advance(25 * time.Hour)
	assert.ErrorIs(t, f.services.MessageService.Delete(f.ctx, alice.ID, m2.ID), apperrors.ErrPermissionDenied)
}
