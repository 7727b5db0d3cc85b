package cache

import (
	"context"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/logger"
)

// Invalidator подписывается на шину после коммита и сбрасывает теги.
// Ошибка бэкенда логируется и не влияет на уже зафиксированную запись.
type Invalidator struct {
	router  *Router
	backend Backend
}

func NewInvalidator(router *Router, backend Backend) *Invalidator {
	if backend == nil {
		backend = NoopBackend{}
	}
	return &Invalidator{router: router, backend: backend}
}

func (i *Invalidator) HandleMutation(ctx context.Context, m events.Mutation) {
	tags := i.router.Route(m)
	if err := i.backend.InvalidateTags(ctx, tags); err != nil {
		logger.CtxWarn(ctx, "cache invalidation failed",
			"mutation", m.String(),
			"tags", tags,
			"error", err.Error(),
		)
		return
	}
	logger.CtxDebug(ctx, "cache invalidated", "mutation", m.String(), "tags", tags)
}
