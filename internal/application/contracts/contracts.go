package contracts

import "github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"

// EventRecorder keeps a processing event for later dispatch.
type EventRecorder interface {
	Record(event.Event) error
}
