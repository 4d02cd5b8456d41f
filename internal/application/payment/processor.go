package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/application/contracts"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/event"
	domainPayment "github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/metrics"
)

const (
	FieldError                = "Error"
	MessageAuthorizerFailure  = "Authorizer unavailable."
	MessageRecordNotCreatable = "Payment could not be recorded."
)

var ErrDuplicatePayment = errors.New("duplicate payment request")

type RequestValidator interface {
	Validate(domainPayment.Request) []domainPayment.ValidationError
}

// Authorizer asks the external authorizer for a verdict. A nil verdict with a
// nil error means the authorizer gave no verdict.
type Authorizer interface {
	Authorize(context.Context, domainPayment.Request) (*domainPayment.AuthorizationVerdict, error)
}

type Processor struct {
	Store      domainPayment.Repository
	Validator  RequestValidator
	Authorizer Authorizer
	Recorder   contracts.EventRecorder
	Logger     logging.Logger
	Metrics    *metrics.Counters
	NewID      func() string
}

type Resolution struct {
	PaymentID string
	Duplicate bool
}

// ResolveIdempotency picks the id a processing attempt will use. A blank
// supplied id gets a fresh one and is never treated as a duplicate.
//
// The lookup here and the insert at the end of Process are not atomic as a
// pair: concurrent attempts with the same id can all pass this check and call
// the authorizer. The store keeps only the first record; the others still
// return Done.
func (p *Processor) ResolveIdempotency(suppliedID string) (Resolution, error) {
	if strings.TrimSpace(suppliedID) == "" {
		return Resolution{PaymentID: p.newID()}, nil
	}

	existing, err := p.Store.Get(suppliedID)
	switch {
	case err == nil && existing != nil && existing.ID == suppliedID:
		return Resolution{PaymentID: suppliedID, Duplicate: true}, nil
	case err == nil, errors.Is(err, domainPayment.ErrNotFound):
		return Resolution{PaymentID: suppliedID}, nil
	default:
		return Resolution{}, fmt.Errorf("resolve idempotency key: %w", err)
	}
}

// Process runs one payment attempt end to end. Business results come back as
// an Outcome; the error is reserved for cancellation, duplicates and store
// faults.
func (p *Processor) Process(ctx context.Context, suppliedID string, req domainPayment.Request) (domainPayment.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := p.ResolveIdempotency(suppliedID)
	if err != nil {
		return nil, err
	}

	if res.Duplicate {
		p.Logger.Info("duplicate payment request", map[string]any{
			"payment-id": res.PaymentID,
		})
		return nil, ErrDuplicatePayment
	}

	return p.execute(ctx, res.PaymentID, req)
}

func (p *Processor) execute(ctx context.Context, paymentID string, req domainPayment.Request) (domainPayment.Outcome, error) {
	p.Metrics.IncProcessed()

	if errs := p.Validator.Validate(req); len(errs) > 0 {
		return p.reject(paymentID, errs), nil
	}

	verdict, err := p.Authorizer.Authorize(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.Logger.Info("payment cancelled", map[string]any{
				"payment-id": paymentID,
			})
			return nil, ctxErr
		}

		p.Metrics.IncAuthorizerFailures()
		p.Logger.Error("authorizer unavailable", map[string]any{
			"payment-id": paymentID,
			"error":      err.Error(),
		})
		p.record(event.Event{
			Type: event.AuthorizerUnavailable,
			Payload: event.AuthorizerUnavailablePayload{
				PaymentID: paymentID,
				Reason:    err.Error(),
			},
		})

		return p.reject(paymentID, []domainPayment.ValidationError{
			{Field: FieldError, Message: MessageAuthorizerFailure},
		}), nil
	}

	status := domainPayment.StatusDeclined
	if verdict != nil && verdict.Authorized {
		status = domainPayment.StatusAuthorized
	}

	rec, err := domainPayment.NewRecord(paymentID, status, req)
	if err != nil {
		p.Logger.Error("payment record not creatable", map[string]any{
			"payment-id": paymentID,
			"error":      err.Error(),
		})
		return p.reject(paymentID, []domainPayment.ValidationError{
			{Field: FieldError, Message: MessageRecordNotCreatable},
		}), nil
	}

	inserted, err := p.Store.InsertIfAbsent(rec)
	if err != nil {
		return nil, fmt.Errorf("store payment %s: %w", paymentID, err)
	}

	if status == domainPayment.StatusAuthorized {
		p.Metrics.IncAuthorized()
	} else {
		p.Metrics.IncDeclined()
	}

	p.Logger.Info("payment processed", map[string]any{
		"payment-id": paymentID,
		"status":     string(status),
		"inserted":   inserted,
	})

	evtType := event.PaymentDeclined
	if status == domainPayment.StatusAuthorized {
		evtType = event.PaymentAuthorized
	}
	p.record(event.Event{
		Type: evtType,
		Payload: event.PaymentProcessedPayload{
			PaymentID:    paymentID,
			Status:       string(status),
			CardLastFour: rec.CardLastFour,
			Currency:     string(rec.Currency),
			Amount:       rec.Amount,
		},
	})

	return domainPayment.Done{
		PaymentID: paymentID,
		Status:    status,
		Record:    rec,
	}, nil
}

func (p *Processor) reject(paymentID string, errs []domainPayment.ValidationError) domainPayment.Rejected {
	p.Metrics.IncRejected()

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}

	p.Logger.Info("payment rejected", map[string]any{
		"payment-id": paymentID,
		"fields":     fields,
	})

	p.record(event.Event{
		Type: event.PaymentRejected,
		Payload: event.PaymentRejectedPayload{
			PaymentID: paymentID,
			Fields:    fields,
		},
	})

	return domainPayment.Rejected{
		PaymentID: paymentID,
		Errors:    errs,
	}
}

func (p *Processor) record(evt event.Event) {
	if p.Recorder == nil {
		return
	}

	if err := p.Recorder.Record(evt); err != nil {
		p.Logger.Error("failed to record payment event", map[string]any{
			"event-type": string(evt.Type),
			"error":      err.Error(),
		})
	}
}

func (p *Processor) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

// Lookup returns a copy of the stored record for id.
func (p *Processor) Lookup(id string) (*domainPayment.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainPayment.ErrNotFound
	}

	return p.Store.Get(id)
}
