package inmemory

import (
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
)

// PaymentStore keeps payment records in process memory. Entries never expire.
type PaymentStore struct {
	payments *cache.Cache
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		payments: cache.New(cache.NoExpiration, 0),
	}
}

// InsertIfAbsent stores rec unless a record with the same id exists. The
// check and the write happen under one lock, so the first writer wins.
func (s *PaymentStore) InsertIfAbsent(rec payment.Record) (bool, error) {
	if err := s.payments.Add(rec.ID, rec, cache.NoExpiration); err != nil {
		return false, nil
	}

	return true, nil
}

func (s *PaymentStore) Get(id string) (*payment.Record, error) {
	v, ok := s.payments.Get(id)
	if !ok {
		return nil, payment.ErrNotFound
	}

	rec, ok := v.(payment.Record)
	if !ok {
		return nil, fmt.Errorf("%w: id %s holds %T", payment.ErrCorruptRecord, id, v)
	}

	return &rec, nil
}

func (s *PaymentStore) Payments() map[string]payment.Record {
	items := s.payments.Items()

	out := make(map[string]payment.Record, len(items))
	for id, item := range items {
		if rec, ok := item.Object.(payment.Record); ok {
			out[id] = rec
		}
	}

	return out
}
