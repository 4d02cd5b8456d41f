package outbox

import (
	"time"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
)

// Event is a processing event waiting in the outbox table.
type Event struct {
	ID        string
	Type      event.Type
	Payload   []byte
	CreatedAt time.Time
}

type Repository interface {
	Save(Event) error
	FindUnpublished(int) ([]Event, error)
	MarkPublished(string) error
}
