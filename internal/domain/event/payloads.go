package event

import (
	"fmt"

	"github.com/goccy/go-json"
)

type PaymentProcessedPayload struct {
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
	CardLastFour int    `json:"card_last_four"`
	Currency     string `json:"currency"`
	Amount       int64  `json:"amount"`
}

type PaymentRejectedPayload struct {
	PaymentID string   `json:"payment_id"`
	Fields    []string `json:"fields"`
}

type AuthorizerUnavailablePayload struct {
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

// DecodePayload turns a stored JSON payload back into the typed payload for t.
func DecodePayload(t Type, data []byte) (any, error) {
	switch t {
	case PaymentAuthorized, PaymentDeclined:
		var p PaymentProcessedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case PaymentRejected:
		var p PaymentRejectedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case AuthorizerUnavailable:
		var p AuthorizerUnavailablePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}

	return nil, fmt.Errorf("unknown event type %q", t)
}
