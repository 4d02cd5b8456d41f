package audit

import (
	"errors"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
)

var ErrInvalidPayload = errors.New("invalid event payload")

// PaymentEventHandler writes one log line per dispatched processing event.
type PaymentEventHandler struct {
	Logger logging.Logger
}

func (h *PaymentEventHandler) Subscriptions() []event.Type {
	return []event.Type{
		event.PaymentAuthorized,
		event.PaymentDeclined,
		event.PaymentRejected,
		event.AuthorizerUnavailable,
	}
}

func (h *PaymentEventHandler) Handle(evt event.Event) error {
	switch evt.Type {
	case event.PaymentAuthorized, event.PaymentDeclined:
		payload, ok := evt.Payload.(event.PaymentProcessedPayload)
		if !ok {
			return ErrInvalidPayload
		}
		h.Logger.Info("audit: payment recorded", map[string]any{
			"event-type":     string(evt.Type),
			"payment-id":     payload.PaymentID,
			"status":         payload.Status,
			"card-last-four": payload.CardLastFour,
			"currency":       payload.Currency,
			"amount":         payload.Amount,
		})

	case event.PaymentRejected:
		payload, ok := evt.Payload.(event.PaymentRejectedPayload)
		if !ok {
			return ErrInvalidPayload
		}
		h.Logger.Info("audit: payment rejected", map[string]any{
			"event-type": string(evt.Type),
			"payment-id": payload.PaymentID,
			"fields":     payload.Fields,
		})

	case event.AuthorizerUnavailable:
		payload, ok := evt.Payload.(event.AuthorizerUnavailablePayload)
		if !ok {
			return ErrInvalidPayload
		}
		h.Logger.Error("audit: authorizer unavailable", map[string]any{
			"event-type": string(evt.Type),
			"payment-id": payload.PaymentID,
			"reason":     payload.Reason,
		})
	}

	return nil
}
