package payment

import "errors"

var (
	ErrNotFound      = errors.New("payment not found")
	ErrCorruptRecord = errors.New("payment store holds a corrupt record")
)

// Repository stores finalized payment records. Implementations must be safe
// for concurrent use and InsertIfAbsent must be atomic per id.
type Repository interface {
	InsertIfAbsent(Record) (bool, error)
	Get(id string) (*Record, error)
}
