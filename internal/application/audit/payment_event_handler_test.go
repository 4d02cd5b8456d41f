package audit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/application/audit"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
)

type entry struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	entries []entry
}

func (c *captureLogger) Info(msg string, fields map[string]any) {
	c.entries = append(c.entries, entry{"INFO", msg, fields})
}

func (c *captureLogger) Error(msg string, fields map[string]any) {
	c.entries = append(c.entries, entry{"ERROR", msg, fields})
}

func TestPaymentEventHandler_ShouldLogProcessedPayment(t *testing.T) {
	logger := &captureLogger{}
	handler := &audit.PaymentEventHandler{Logger: logger}

	err := handler.Handle(event.Event{
		Type: event.PaymentAuthorized,
		Payload: event.PaymentProcessedPayload{
			PaymentID:    "pay-1",
			Status:       "Authorized",
			CardLastFour: 8877,
			Currency:     "GBP",
			Amount:       100,
		},
	})
	require.NoError(t, err)

	require.Len(t, logger.entries, 1)
	require.Equal(t, "INFO", logger.entries[0].level)
	require.Equal(t, "pay-1", logger.entries[0].fields["payment-id"])
	require.Equal(t, 8877, logger.entries[0].fields["card-last-four"])
}

func TestPaymentEventHandler_ShouldLogAuthorizerFailureAsError(t *testing.T) {
	logger := &captureLogger{}
	handler := &audit.PaymentEventHandler{Logger: logger}

	err := handler.Handle(event.Event{
		Type:    event.AuthorizerUnavailable,
		Payload: event.AuthorizerUnavailablePayload{PaymentID: "pay-2", Reason: "timeout"},
	})
	require.NoError(t, err)

	require.Len(t, logger.entries, 1)
	require.Equal(t, "ERROR", logger.entries[0].level)
	require.Equal(t, "timeout", logger.entries[0].fields["reason"])
}

func TestPaymentEventHandler_ShouldRejectMismatchedPayload(t *testing.T) {
	handler := &audit.PaymentEventHandler{Logger: &captureLogger{}}

	err := handler.Handle(event.Event{
		Type:    event.PaymentRejected,
		Payload: map[string]any{"payment_id": "pay-3"},
	})
	require.ErrorIs(t, err, audit.ErrInvalidPayload)
}

func TestPaymentEventHandler_ShouldSubscribeToEveryProcessingEvent(t *testing.T) {
	handler := &audit.PaymentEventHandler{}

	require.ElementsMatch(t, []event.Type{
		event.PaymentAuthorized,
		event.PaymentDeclined,
		event.PaymentRejected,
		event.AuthorizerUnavailable,
	}, handler.Subscriptions())
}
