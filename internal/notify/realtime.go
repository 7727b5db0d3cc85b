package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"talent2income_backend/internal/events"
)

// Envelope - то, что получает websocket-клиент
type Envelope struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	UserID     uint64          `json:"user_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// UserChannel - канал redis для личных событий пользователя
func UserChannel(prefix string, userID uint64) string {
	return prefix + ":user:" + strconv.FormatUint(userID, 10)
}

// UserChannelPattern - шаблон для PSUBSCRIBE на все личные каналы
func UserChannelPattern(prefix string) string {
	return prefix + ":user:*"
}

// ParseUserChannel извлекает id пользователя из имени канала
func ParseUserChannel(prefix, channel string) (uint64, error) {
	raw, ok := strings.CutPrefix(channel, prefix+":user:")
	if !ok {
		return 0, fmt.Errorf("unexpected channel %q", channel)
	}
	return strconv.ParseUint(raw, 10, 64)
}

// RealtimeSink публикует события в redis pub/sub, откуда их забирает ws.Relay
type RealtimeSink struct {
	rdb    redis.UniversalClient
	prefix string
	nowFn  func() time.Time
}

func NewRealtimeSink(rdb redis.UniversalClient, prefix string) *RealtimeSink {
	if prefix == "" {
		prefix = "realtime"
	}
	return &RealtimeSink{rdb: rdb, prefix: prefix, nowFn: time.Now}
}

func (s *RealtimeSink) Name() string { return "realtime" }

func (s *RealtimeSink) Accepts(events.Event) bool { return true }

func (s *RealtimeSink) Deliver(ctx context.Context, e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.EventName(), err)
	}

	var errs []error
	for _, userID := range e.Recipients() {
		env := Envelope{
			ID:         uuid.NewString(),
			Event:      e.EventName(),
			UserID:     userID,
			Payload:    payload,
			OccurredAt: s.nowFn().UTC(),
		}
		data, err := json.Marshal(env)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := s.rdb.Publish(ctx, UserChannel(s.prefix, userID), data).Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish to user %d: %w", userID, err))
		}
	}
	return errors.Join(errs...)
}
