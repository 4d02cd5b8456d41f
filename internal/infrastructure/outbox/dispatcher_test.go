package outbox_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/outbox"
)

type fakeBus struct {
	mu        sync.Mutex
	published []event.Event
	fail      bool
}

func (f *fakeBus) Publish(evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("bus down")
	}
	f.published = append(f.published, evt)
	return nil
}

func (f *fakeBus) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type noopLogger struct{}

func (n *noopLogger) Info(string, map[string]any)  {}
func (n *noopLogger) Error(string, map[string]any) {}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Info(string, map[string]any) {}

func (l *recordingLogger) Error(msg string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

type fakeRepo struct {
	findFn func(int) ([]outbox.Event, error)
	markFn func(string) error
}

func (f *fakeRepo) Save(outbox.Event) error { return nil }

func (f *fakeRepo) FindUnpublished(limit int) ([]outbox.Event, error) {
	return f.findFn(limit)
}

func (f *fakeRepo) MarkPublished(id string) error {
	return f.markFn(id)
}

func TestDispatcher_ShouldPublishTypedPayloadAndMarkEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := outbox.NewSQLiteRepository(db)

	bus := &fakeBus{}

	dispatcher := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	payload := []byte(`{"payment_id":"pay-1","status":"Authorized","card_last_four":8877,"currency":"GBP","amount":100}`)

	err := repo.Save(outbox.Event{
		ID:        "evt-1",
		Type:      event.PaymentAuthorized,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Equal(t, 1, dispatcher.DispatchOnce())
	require.Len(t, bus.published, 1)

	got, ok := bus.published[0].Payload.(event.PaymentProcessedPayload)
	require.True(t, ok, "expected typed payload, got %T", bus.published[0].Payload)
	require.Equal(t, "pay-1", got.PaymentID)
	require.Equal(t, 8877, got.CardLastFour)

	events, _ := repo.FindUnpublished(10)
	require.Empty(t, events)
}

func TestDispatcher_ShouldKeepEvent_WhenBusFails(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	bus := &fakeBus{fail: true}

	dispatcher := &outbox.Dispatcher{
		Repo:      repo,
		EventBus:  bus,
		Logger:    &noopLogger{},
		BatchSize: 10,
	}

	require.NoError(t, repo.Save(outbox.Event{
		ID:        "evt-1",
		Type:      event.PaymentRejected,
		Payload:   []byte(`{"payment_id":"pay-1","fields":["Amount"]}`),
		CreatedAt: time.Now(),
	}))

	require.Zero(t, dispatcher.DispatchOnce())

	events, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	bus.fail = false
	require.Equal(t, 1, dispatcher.DispatchOnce())
}

func TestDispatcher_ShouldDropUndecodableEvent(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	bus := &fakeBus{}

	dispatcher := &outbox.Dispatcher{
		Repo:      repo,
		EventBus:  bus,
		Logger:    &noopLogger{},
		BatchSize: 10,
	}

	require.NoError(t, repo.Save(outbox.Event{
		ID:        "evt-bad",
		Type:      event.Type("UNKNOWN"),
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}))

	require.Zero(t, dispatcher.DispatchOnce())
	require.Zero(t, bus.count())

	events, err := repo.FindUnpublished(10)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestDispatcher_Run_ShouldStopOnContextCancel(t *testing.T) {
	repo := outbox.NewSQLiteRepository(setupTestDB(t))
	bus := &fakeBus{}

	recorder := &outbox.Recorder{Repo: repo}
	require.NoError(t, recorder.Record(event.Event{
		Type:    event.PaymentDeclined,
		Payload: event.PaymentProcessedPayload{PaymentID: "pay-2", Status: "Declined"},
	}))

	dispatcher := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     bus,
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return bus.count() == 1 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestDispatcher_ShouldLogMarkFailure_WhenDroppingUndecodableEvent(t *testing.T) {
	logger := &recordingLogger{}
	repo := &fakeRepo{
		findFn: func(int) ([]outbox.Event, error) {
			return []outbox.Event{{ID: "evt-bad", Type: event.Type("UNKNOWN"), Payload: []byte(`{}`)}}, nil
		},
		markFn: func(string) error { return errors.New("database is locked") },
	}

	dispatcher := &outbox.Dispatcher{
		Repo:      repo,
		EventBus:  &fakeBus{},
		Logger:    logger,
		BatchSize: 10,
	}

	require.Zero(t, dispatcher.DispatchOnce())
	require.Equal(t, []string{"outbox event dropped", "outbox mark failed"}, logger.errors)
}

func TestDispatcher_Run_ShouldFinishBatchInProgressBeforeReturning(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})

	var reads atomic.Int64
	repo := &fakeRepo{
		findFn: func(int) ([]outbox.Event, error) {
			if reads.Add(1) == 1 {
				entered <- struct{}{}
				<-release
			}
			return nil, nil
		},
		markFn: func(string) error { return nil },
	}

	dispatcher := &outbox.Dispatcher{
		Repo:         repo,
		EventBus:     &fakeBus{},
		Logger:       &noopLogger{},
		PollInterval: time.Millisecond,
		BatchSize:    10,
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		dispatcher.Run(ctx)
		close(stopped)
	}()

	<-entered
	cancel()

	select {
	case <-stopped:
		t.Fatal("Run returned while a batch was in progress")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}

	after := reads.Load()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, after, reads.Load(), "no batch may start after Run returned")
}
