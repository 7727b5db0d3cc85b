package notify

import (
	"context"

	"talent2income_backend/internal/events"
)

// Sink - внешний канал доставки (почта, realtime)
type Sink interface {
	Name() string
	Accepts(e events.Event) bool
	Deliver(ctx context.Context, e events.Event) error
}

// BlockChecker - IsBlocked(a, b): a заблокировал b
type BlockChecker interface {
	IsBlocked(ctx context.Context, blockerID, blockedID uint64) (bool, error)
}
