package payment

import (
	"fmt"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"

	domainPayment "github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
)

const (
	FieldCardNumber  = "CardNumber"
	FieldExpiryMonth = "ExpiryMonth"
	FieldExpiryYear  = "ExpiryYear"
	FieldCurrency    = "Currency"
	FieldAmount      = "Amount"
	FieldCVV         = "Cvv"
)

var digitsOnly = regexp.MustCompile(`^[0-9]*$`)

type rule struct {
	field   string
	message string
	check   func(domainPayment.Request) bool
}

// Validator checks a payment request against field and cross-field rules.
// All rules run on every call, so one field can collect several errors.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
	rules    []rule
}

func NewValidator(minExpiryYear int, now func() time.Time) *Validator {
	validate := validator.New()
	_ = validate.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsOnly.MatchString(fl.Field().String())
	})

	v := &Validator{
		validate: validate,
		now:      now,
	}

	card := func(r domainPayment.Request) any { return r.CardNumber }
	month := func(r domainPayment.Request) any { return r.ExpiryMonth }
	year := func(r domainPayment.Request) any { return r.ExpiryYear }
	currency := func(r domainPayment.Request) any { return string(r.Currency) }
	amount := func(r domainPayment.Request) any { return r.Amount }
	cvv := func(r domainPayment.Request) any { return r.CVV }

	v.rules = []rule{
		v.tag(FieldCardNumber, card, "required", "Card number is required."),
		v.tag(FieldCardNumber, card, "min=14,max=19", "Card number must be between 14 and 19 characters long."),
		v.tag(FieldCardNumber, card, "digits", "Card number must contain only numeric characters."),

		v.tag(FieldExpiryMonth, month, "required", "Expiry month is required."),
		v.tag(FieldExpiryMonth, month, "min=1,max=12", "Expiry month must be between 1 and 12."),

		v.tag(FieldExpiryYear, year, "required", "Expiry year is required."),
		v.tag(FieldExpiryYear, year, fmt.Sprintf("gte=%d", minExpiryYear), fmt.Sprintf("Expiry year must be greater than or equal %d.", minExpiryYear)),
		{field: FieldExpiryYear, message: "Expiry date must be in the future.", check: v.expiresInFuture},

		v.tag(FieldCurrency, currency, "oneof=USD GBP EUR", "Currency must be a valid ISO currency code."),

		v.tag(FieldAmount, amount, "required", "Amount is required."),
		v.tag(FieldAmount, amount, "gt=0", "Amount must be an integer and greater than zero."),

		v.tag(FieldCVV, cvv, "required", "CVV is required."),
		v.tag(FieldCVV, cvv, "min=3,max=4", "CVV must be 3 or 4 characters long."),
		v.tag(FieldCVV, cvv, "digits", "CVV must contain only numeric characters."),
	}

	return v
}

func (v *Validator) tag(field string, value func(domainPayment.Request) any, tag, message string) rule {
	return rule{
		field:   field,
		message: message,
		check: func(r domainPayment.Request) bool {
			return v.validate.Var(value(r), tag) == nil
		},
	}
}

// expiresInFuture reports whether the last day of the expiry month is
// strictly after now.
func (v *Validator) expiresInFuture(r domainPayment.Request) bool {
	if r.ExpiryMonth < 1 || r.ExpiryMonth > 12 || r.ExpiryYear < 1 {
		return false
	}

	lastDay := time.Date(r.ExpiryYear, time.Month(r.ExpiryMonth)+1, 0, 0, 0, 0, 0, time.UTC)

	return lastDay.After(v.now())
}

func (v *Validator) Validate(r domainPayment.Request) []domainPayment.ValidationError {
	var errs []domainPayment.ValidationError

	for _, rl := range v.rules {
		if !rl.check(r) {
			errs = append(errs, domainPayment.ValidationError{
				Field:   rl.field,
				Message: rl.message,
			})
		}
	}

	return errs
}
