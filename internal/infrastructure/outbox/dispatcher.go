package outbox

import (
	"context"
	"time"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
)

type EventPublisher interface {
	Publish(event.Event) error
}

// Dispatcher moves recorded events from the outbox table to the event bus.
// An event is marked published only after every subscriber accepted it.
type Dispatcher struct {
	Repo         Repository
	EventBus     EventPublisher
	Logger       logging.Logger
	PollInterval time.Duration
	BatchSize    int
}

// Run dispatches a batch every PollInterval until ctx is done. It returns only
// after the batch in progress, if any, has finished.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			d.DispatchOnce()
		}
	}
}

// DispatchOnce publishes one batch and returns how many events went out.
func (d *Dispatcher) DispatchOnce() int {
	events, err := d.Repo.FindUnpublished(d.BatchSize)
	if err != nil {
		d.Logger.Error("outbox read failed", map[string]any{"error": err.Error()})
		return 0
	}

	published := 0
	for _, evt := range events {
		payload, err := event.DecodePayload(evt.Type, evt.Payload)
		if err != nil {
			// undecodable rows would block the batch forever
			d.Logger.Error("outbox event dropped", map[string]any{
				"event-id":   evt.ID,
				"event-type": string(evt.Type),
				"error":      err.Error(),
			})
			if err := d.Repo.MarkPublished(evt.ID); err != nil {
				d.Logger.Error("outbox mark failed", map[string]any{
					"event-id": evt.ID,
					"error":    err.Error(),
				})
			}
			continue
		}

		if err := d.EventBus.Publish(event.Event{Type: evt.Type, Payload: payload}); err != nil {
			d.Logger.Error("outbox publish failed", map[string]any{
				"event-id":   evt.ID,
				"event-type": string(evt.Type),
				"error":      err.Error(),
			})
			continue
		}

		if err := d.Repo.MarkPublished(evt.ID); err != nil {
			d.Logger.Error("outbox mark failed", map[string]any{
				"event-id": evt.ID,
				"error":    err.Error(),
			})
			continue
		}

		published++
	}

	return published
}
