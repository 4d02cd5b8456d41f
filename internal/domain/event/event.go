package event

type Type string

const (
	PaymentAuthorized     Type = "PAYMENT_AUTHORIZED"
	PaymentDeclined       Type = "PAYMENT_DECLINED"
	PaymentRejected       Type = "PAYMENT_REJECTED"
	AuthorizerUnavailable Type = "AUTHORIZER_UNAVAILABLE"
)

type Event struct {
	Type    Type
	Payload any
}
