package notify

import (
	"context"
	"sync"
	"time"

	"talent2income_backend/internal/events"
	"talent2income_backend/internal/logger"
)

type Options struct {
	Workers         int
	QueueSize       int
	DeliveryTimeout time.Duration
}

type queued struct {
	ctx   context.Context
	event events.Event
}

// Dispatcher асинхронно раздает события по каналам доставки.
// Dispatch никогда не блокирует вызывающего; блокировки проверяются в момент доставки.
type Dispatcher struct {
	blocks  BlockChecker
	sinks   []Sink
	opts    Options
	queue   chan queued
	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewDispatcher(blocks BlockChecker, opts Options, sinks ...Sink) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = 10 * time.Second
	}
	return &Dispatcher{
		blocks: blocks,
		sinks:  sinks,
		opts:   opts,
		queue:  make(chan queued, opts.QueueSize),
	}
}

// Start запускает воркеры. Повторный вызов ничего не делает.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	logger.CtxInfo(ctx, "notification dispatcher started", "workers", d.opts.Workers, "queue_size", d.opts.QueueSize)
}

// Stop закрывает очередь и дожидается доставки уже принятых событий
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		// воркеров нет, дочищаем очередь сами
		for item := range d.queue {
			d.deliver(item)
		}
	}
	d.wg.Wait()
	logger.Info("notification dispatcher stopped")
}

// HandleEvent - подписчик шины событий
func (d *Dispatcher) HandleEvent(ctx context.Context, e events.Event) {
	d.Dispatch(ctx, e)
}

func (d *Dispatcher) Dispatch(ctx context.Context, e events.Event) {
	item := queued{ctx: context.WithoutCancel(ctx), event: e}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.CtxWarn(ctx, "dispatcher stopped, event dropped", "event", e.EventName())
		return
	}

	select {
	case d.queue <- item:
	default:
		// очередь переполнена: доставляем в отдельной горутине, вызывающий не ждет
		logger.CtxWarn(ctx, "notification queue full, delivering out of band", "event", e.EventName())
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliver(item)
		}()
	}
}

func (d *Dispatcher) worker(n int) {
	defer d.wg.Done()
	for item := range d.queue {
		d.deliver(item)
	}
	logger.Debug("notification worker exited", "worker", n)
}

func (d *Dispatcher) deliver(item queued) {
	ctx, e := item.ctx, item.event

	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, "notification delivery panicked", "event", e.EventName(), "panic", r)
		}
	}()

	suppressed, err := d.suppressed(ctx, e)
	if err != nil {
		// сервис блокировок недоступен: не доставляем, чтобы не нарушить блокировку
		logger.WorkerLog("notify", "block_check", err, "event", e.EventName())
		return
	}
	if suppressed {
		logger.CtxDebug(ctx, "notification suppressed by block", "event", e.EventName())
		return
	}

	for _, sink := range d.sinks {
		if !sink.Accepts(e) {
			continue
		}
		sctx, cancel := context.WithTimeout(ctx, d.opts.DeliveryTimeout)
		err := sink.Deliver(sctx, e)
		cancel()
		if err != nil {
			logger.WorkerLog("notify", "deliver", err, "sink", sink.Name(), "event", e.EventName())
		}
	}
}

// suppressed - личные события не доставляются, если получатель заблокировал отправителя
func (d *Dispatcher) suppressed(ctx context.Context, e events.Event) (bool, error) {
	if d.blocks == nil {
		return false, nil
	}
	var sender, recipient uint64
	switch ev := e.(type) {
	case events.MessageSent:
		sender, recipient = ev.SenderID, ev.RecipientID
	case events.UserTyping:
		sender, recipient = ev.SenderID, ev.RecipientID
	default:
		return false, nil
	}
	return d.blocks.IsBlocked(ctx, recipient, sender)
}
