package httpapi

import (
	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
)

const IdempotencyHeader = "Cko-Idempotency-Key"

type PaymentRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	Currency    string `json:"currency"`
	Amount      int64  `json:"amount"`
	CVV         string `json:"cvv"`
}

func (r PaymentRequest) toDomain() payment.Request {
	return payment.Request{
		CardNumber:  r.CardNumber,
		ExpiryMonth: r.ExpiryMonth,
		ExpiryYear:  r.ExpiryYear,
		Currency:    payment.Currency(r.Currency),
		Amount:      r.Amount,
		CVV:         r.CVV,
	}
}

type PaymentResponse struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	CardNumberLastFour int    `json:"card_number_last_four"`
	ExpiryMonth        int    `json:"expiry_month"`
	ExpiryYear         int    `json:"expiry_year"`
	Currency           string `json:"currency"`
	Amount             int64  `json:"amount"`
}

func newPaymentResponse(rec payment.Record) PaymentResponse {
	return PaymentResponse{
		ID:                 rec.ID,
		Status:             string(rec.Status),
		CardNumberLastFour: rec.CardLastFour,
		ExpiryMonth:        rec.ExpiryMonth,
		ExpiryYear:         rec.ExpiryYear,
		Currency:           string(rec.Currency),
		Amount:             rec.Amount,
	}
}

type RejectedResponse struct {
	ID     string              `json:"id"`
	Status string              `json:"status"`
	Errors map[string][]string `json:"errors"`
}

func newRejectedResponse(r payment.Rejected) RejectedResponse {
	errs := make(map[string][]string, len(r.Errors))
	for _, e := range r.Errors {
		errs[e.Field] = append(errs[e.Field], e.Message)
	}

	return RejectedResponse{
		ID:     r.PaymentID,
		Status: string(payment.StatusRejected),
		Errors: errs,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
