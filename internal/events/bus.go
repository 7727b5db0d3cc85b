package events

import (
	"context"
	"sync"

	"talent2income_backend/internal/logger"
)

// Recorder собирает мутации и события внутри транзакции.
// Ничего не публикуется, пока транзакция не зафиксирована.
type Recorder struct {
	mutations []Mutation
	events    []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Mutated(m Mutation) {
	r.mutations = append(r.mutations, m)
}

func (r *Recorder) Emit(e Event) {
	r.events = append(r.events, e)
}

func (r *Recorder) Mutations() []Mutation { return r.mutations }
func (r *Recorder) Events() []Event       { return r.events }

// Reset очищает записанное (используется при откате транзакции)
func (r *Recorder) Reset() {
	r.mutations = nil
	r.events = nil
}

type MutationHandler interface {
	HandleMutation(ctx context.Context, m Mutation)
}

type EventHandler interface {
	HandleEvent(ctx context.Context, e Event)
}

type MutationHandlerFunc func(ctx context.Context, m Mutation)

func (f MutationHandlerFunc) HandleMutation(ctx context.Context, m Mutation) { f(ctx, m) }

type EventHandlerFunc func(ctx context.Context, e Event)

func (f EventHandlerFunc) HandleEvent(ctx context.Context, e Event) { f(ctx, e) }

// Bus - явная публикация после коммита.
// Обработчики не могут откатить доменную запись: их ошибки и паники только логируются.
type Bus struct {
	mu               sync.RWMutex
	mutationHandlers []MutationHandler
	eventHandlers    []EventHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeMutations(h MutationHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mutationHandlers = append(b.mutationHandlers, h)
}

func (b *Bus) SubscribeEvents(h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.eventHandlers = append(b.eventHandlers, h)
}

// Publish вызывается только после успешного коммита.
// Сначала мутации (инвалидация кэша), затем доменные события.
func (b *Bus) Publish(ctx context.Context, rec *Recorder) {
	if rec == nil {
		return
	}
	b.mu.RLock()
	mh := append([]MutationHandler(nil), b.mutationHandlers...)
	eh := append([]EventHandler(nil), b.eventHandlers...)
	b.mu.RUnlock()

	for _, m := range rec.Mutations() {
		for _, h := range mh {
			b.safeMutation(ctx, h, m)
		}
	}
	for _, e := range rec.Events() {
		b.PublishEvent(ctx, e, eh...)
	}
}

// PublishEvent публикует одиночное событие вне транзакции (например, индикатор набора текста)
func (b *Bus) PublishEvent(ctx context.Context, e Event, handlers ...EventHandler) {
	if handlers == nil {
		b.mu.RLock()
		handlers = append([]EventHandler(nil), b.eventHandlers...)
		b.mu.RUnlock()
	}
	for _, h := range handlers {
		b.safeEvent(ctx, h, e)
	}
}

func (b *Bus) safeMutation(ctx context.Context, h MutationHandler, m Mutation) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "mutation handler panicked", "mutation", m.String(), "panic", r)
		}
	}()
	h.HandleMutation(ctx, m)
}

func (b *Bus) safeEvent(ctx context.Context, h EventHandler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "event handler panicked", "event", e.EventName(), "panic", r)
		}
	}()
	h.HandleEvent(ctx, e)
}
