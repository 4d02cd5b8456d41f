package sqlite

import (
	"database/sql"
	"errors"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
)

type PaymentStore struct {
	db *sql.DB
}

func NewPaymentStore(db *sql.DB) *PaymentStore {
	return &PaymentStore{db: db}
}

func (s *PaymentStore) InsertIfAbsent(rec payment.Record) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO payments
		 (id, status, card_last_four, expiry_month, expiry_year, currency, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.Status),
		rec.CardLastFour,
		rec.ExpiryMonth,
		rec.ExpiryYear,
		string(rec.Currency),
		rec.Amount,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// 0 rows = id already taken
	return affected == 1, nil
}

func (s *PaymentStore) Get(id string) (*payment.Record, error) {
	row := s.db.QueryRow(
		`SELECT id, status, card_last_four, expiry_month, expiry_year, currency, amount
		 FROM payments
		 WHERE id = ?`,
		id,
	)

	var (
		rec      payment.Record
		status   string
		currency string
	)

	if err := row.Scan(
		&rec.ID,
		&status,
		&rec.CardLastFour,
		&rec.ExpiryMonth,
		&rec.ExpiryYear,
		&currency,
		&rec.Amount,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}

	rec.Status = payment.Status(status)
	rec.Currency = payment.Currency(currency)
	return &rec, nil
}
