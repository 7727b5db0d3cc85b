package ws

import (
	"context"

	"github.com/redis/go-redis/v9"

	"talent2income_backend/internal/logger"
	"talent2income_backend/internal/notify"
)

// Relay пересылает уведомления из redis (notify.RealtimeSink) в локальные подключения.
// Каждый экземпляр API подписан на все пользовательские каналы и доставляет только своим клиентам.
type Relay struct {
	rdb    redis.UniversalClient
	prefix string
	hub    *Hub
}

func NewRelay(rdb redis.UniversalClient, prefix string, hub *Hub) *Relay {
	return &Relay{rdb: rdb, prefix: prefix, hub: hub}
}

// Run блокируется до отмены ctx
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.PSubscribe(ctx, notify.UserChannelPattern(r.prefix))
	defer sub.Close()

	// дожидаемся подтверждения подписки, чтобы не потерять первые сообщения
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	logger.Info("realtime relay subscribed", "pattern", notify.UserChannelPattern(r.prefix))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.forward(msg)
		}
	}
}

func (r *Relay) forward(msg *redis.Message) {
	userID, err := notify.ParseUserChannel(r.prefix, msg.Channel)
	if err != nil {
		logger.Warn("relay: unexpected channel", "channel", msg.Channel, "error", err.Error())
		return
	}
	r.hub.SendToUser(userID, []byte(msg.Payload))
}
