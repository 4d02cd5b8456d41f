package payment

import (
	"errors"
	"strconv"
	"strings"
)

type Status string

const (
	StatusAuthorized Status = "Authorized"
	StatusDeclined   Status = "Declined"
	StatusRejected   Status = "Rejected"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyGBP, CurrencyEUR:
		return true
	}
	return false
}

var (
	ErrInvalidPaymentID = errors.New("payment id is required")
	ErrInvalidStatus    = errors.New("only authorized or declined payments can be recorded")
	ErrInvalidCard      = errors.New("card number must end with four digits")
	ErrInvalidCurrency  = errors.New("unsupported currency")
)

// Request is a card payment submission. It lives for a single processing
// attempt and is never stored as-is.
type Request struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	Currency    Currency
	Amount      int64
	CVV         string
}

// Record is the persisted result of an authorized or declined payment.
// Build it with NewRecord; it is not modified after creation.
type Record struct {
	ID           string
	Status       Status
	CardLastFour int
	ExpiryMonth  int
	ExpiryYear   int
	Currency     Currency
	Amount       int64
}

func NewRecord(id string, status Status, req Request) (Record, error) {
	if strings.TrimSpace(id) == "" {
		return Record{}, ErrInvalidPaymentID
	}

	if status != StatusAuthorized && status != StatusDeclined {
		return Record{}, ErrInvalidStatus
	}

	if !req.Currency.IsValid() {
		return Record{}, ErrInvalidCurrency
	}

	lastFour, err := lastFourDigits(req.CardNumber)
	if err != nil {
		return Record{}, err
	}

	return Record{
		ID:           id,
		Status:       status,
		CardLastFour: lastFour,
		ExpiryMonth:  req.ExpiryMonth,
		ExpiryYear:   req.ExpiryYear,
		Currency:     req.Currency,
		Amount:       req.Amount,
	}, nil
}

func lastFourDigits(cardNumber string) (int, error) {
	if len(cardNumber) < 4 {
		return 0, ErrInvalidCard
	}

	tail := cardNumber[len(cardNumber)-4:]
	for _, r := range tail {
		if r < '0' || r > '9' {
			return 0, ErrInvalidCard
		}
	}

	return strconv.Atoi(tail)
}

type AuthorizationVerdict struct {
	Authorized bool
	Code       string
}
