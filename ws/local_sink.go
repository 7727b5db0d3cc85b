package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/notify"
)

// LocalSink доставляет события напрямую в hub этого процесса (без redis)
type LocalSink struct {
	hub *Hub
}

func NewLocalSink(hub *Hub) *LocalSink {
	return &LocalSink{hub: hub}
}

func (s *LocalSink) Name() string { return "realtime_local" }

func (s *LocalSink) Accepts(events.Event) bool { return true }

func (s *LocalSink) Deliver(_ context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.EventName(), err)
	}

	for _, userID := range e.Recipients() {
		data, err := json.Marshal(notify.Envelope{
			ID:         uuid.NewString(),
			Event:      e.EventName(),
			UserID:     userID,
			Payload:    payload,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		// пользователь без открытых сокетов - не ошибка
		s.hub.SendToUser(userID, data)
	}
	return nil
}
