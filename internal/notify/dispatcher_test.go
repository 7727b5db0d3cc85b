package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent2income_backend/internal/events"
)

type fakeSink struct {
	mu       sync.Mutex
	name     string
	accept   func(events.Event) bool
	received []events.Event
	err      error
	delay    time.Duration
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Accepts(e events.Event) bool {
	if s.accept == nil {
		return true
	}
	return s.accept(e)
}

func (s *fakeSink) Deliver(_ context.Context, e events.Event) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, e)
	return s.err
}

func (s *fakeSink) events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.received...)
}

type fakeBlocks struct {
	mu    sync.Mutex
	pairs map[[2]uint64]bool
	err   error
}

func (b *fakeBlocks) IsBlocked(_ context.Context, blocker, blocked uint64) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pairs[[2]uint64{blocker, blocked}], b.err
}

func (b *fakeBlocks) set(blocker, blocked uint64, v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pairs == nil {
		b.pairs = map[[2]uint64]bool{}
	}
	b.pairs[[2]uint64{blocker, blocked}] = v
}

func TestDispatcher_DeliversToAcceptingSinks(t *testing.T) {
	all := &fakeSink{name: "all"}
	onlyReviews := &fakeSink{name: "reviews", accept: func(e events.Event) bool {
		return e.EventName() == events.NameReviewCreated
	}}

	d := NewDispatcher(&fakeBlocks{}, Options{Workers: 2}, all, onlyReviews)
	d.Start(context.Background())

	d.Dispatch(context.Background(), events.ReviewCreated{ReviewID: 1, RevieweeID: 2})
	d.Dispatch(context.Background(), events.UserRegistered{UserID: 3})
	d.Stop()

	assert.Len(t, all.events(), 2)
	require.Len(t, onlyReviews.events(), 1)
	assert.Equal(t, events.NameReviewCreated, onlyReviews.events()[0].EventName())
}

func TestDispatcher_SuppressesBlockedMessages(t *testing.T) {
	sink := &fakeSink{name: "sink"}
	blocks := &fakeBlocks{}
	blocks.set(2, 1, true) // получатель 2 заблокировал отправителя 1

	d := NewDispatcher(blocks, Options{Workers: 1}, sink)
	d.Start(context.Background())

	d.Dispatch(context.Background(), events.MessageSent{MessageID: 1, SenderID: 1, RecipientID: 2})
	d.Dispatch(context.Background(), events.UserTyping{SenderID: 1, RecipientID: 2})
	// обратное направление не заблокировано
	d.Dispatch(context.Background(), events.MessageSent{MessageID: 2, SenderID: 2, RecipientID: 1})
	d.Stop()

	got := sink.events()
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].(events.MessageSent).MessageID)
}

func TestDispatcher_BlockCheckedAtDeliveryTime(t *testing.T) {
	sink := &fakeSink{name: "sink"}
	blocks := &fakeBlocks{}

	// 1. Событие принято, пока блокировки нет
	d := NewDispatcher(blocks, Options{Workers: 1}, sink)
	d.Dispatch(context.Background(), events.MessageSent{MessageID: 1, SenderID: 1, RecipientID: 2})

	// 2. Блокировка появилась до доставки
	blocks.set(2, 1, true)

	// 3. Доставка при остановке - подавлено
	d.Stop()
	assert.Empty(t, sink.events())
}

func TestDispatcher_BlockCheckErrorSuppresses(t *testing.T) {
	sink := &fakeSink{name: "sink"}
	d := NewDispatcher(&fakeBlocks{err: errors.New("db down")}, Options{Workers: 1}, sink)
	d.Start(context.Background())
	d.Dispatch(context.Background(), events.MessageSent{SenderID: 1, RecipientID: 2})
	d.Dispatch(context.Background(), events.ReviewCreated{RevieweeID: 2})
	d.Stop()

	got := sink.events()
	require.Len(t, got, 1, "блокировки проверяются только для личных событий")
	assert.Equal(t, events.NameReviewCreated, got[0].EventName())
}

func TestDispatcher_SinkErrorDoesNotStopOthers(t *testing.T) {
	failing := &fakeSink{name: "failing", err: errors.New("smtp down")}
	ok := &fakeSink{name: "ok"}

	d := NewDispatcher(nil, Options{Workers: 1}, failing, ok)
	d.Start(context.Background())
	d.Dispatch(context.Background(), events.UserRegistered{UserID: 1})
	d.Stop()

	assert.Len(t, failing.events(), 1)
	assert.Len(t, ok.events(), 1)
}

func TestDispatcher_NeverBlocksCaller(t *testing.T) {
	slow := &fakeSink{name: "slow", delay: 50 * time.Millisecond}
	d := NewDispatcher(nil, Options{Workers: 1, QueueSize: 1}, slow)
	d.Start(context.Background())

	start := time.Now()
	for i := 0; i < 10; i++ {
		d.Dispatch(context.Background(), events.UserRegistered{UserID: uint64(i)})
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	d.Stop()
	assert.Len(t, slow.events(), 10, "переполнение очереди не теряет события")
}

func TestDispatcher_DropsAfterStop(t *testing.T) {
	sink := &fakeSink{name: "sink"}
	d := NewDispatcher(nil, Options{}, sink)
	d.Start(context.Background())
	d.Stop()
	d.Stop()

	d.Dispatch(context.Background(), events.UserRegistered{UserID: 1})
	assert.Empty(t, sink.events())
}

func TestDispatcher_AsBusSubscriber(t *testing.T) {
	sink := &fakeSink{name: "sink"}
	d := NewDispatcher(nil, Options{Workers: 1}, sink)
	d.Start(context.Background())

	bus := events.NewBus()
	bus.SubscribeEvents(d)

	rec := events.NewRecorder()
	rec.Emit(events.JobAssigned{JobID: 1, OwnerID: 1, AssigneeID: 2})
	bus.Publish(context.Background(), rec)
	d.Stop()

	assert.Len(t, sink.events(), 1)
}
