package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

type Counters struct {
	PaymentsProcessed  uint64
	PaymentsAuthorized uint64
	PaymentsDeclined   uint64
	PaymentsRejected   uint64
	AuthorizerFailures uint64
}

func (c *Counters) IncProcessed() {
	atomic.AddUint64(&c.PaymentsProcessed, 1)
}

func (c *Counters) IncAuthorized() {
	atomic.AddUint64(&c.PaymentsAuthorized, 1)
}

func (c *Counters) IncDeclined() {
	atomic.AddUint64(&c.PaymentsDeclined, 1)
}

func (c *Counters) IncRejected() {
	atomic.AddUint64(&c.PaymentsRejected, 1)
}

func (c *Counters) IncAuthorizerFailures() {
	atomic.AddUint64(&c.AuthorizerFailures, 1)
}

// Register exposes the counters on reg as prometheus counters.
func (c *Counters) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		counterFunc("gateway_payments_processed_total", "Processing attempts that passed idempotency resolution.", &c.PaymentsProcessed),
		counterFunc("gateway_payments_authorized_total", "Payments authorized by the authorizer.", &c.PaymentsAuthorized),
		counterFunc("gateway_payments_declined_total", "Payments declined by the authorizer.", &c.PaymentsDeclined),
		counterFunc("gateway_payments_rejected_total", "Payments rejected before a verdict was recorded.", &c.PaymentsRejected),
		counterFunc("gateway_authorizer_failures_total", "Authorizer calls that produced no verdict.", &c.AuthorizerFailures),
	}

	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			return err
		}
	}

	return nil
}

func counterFunc(name, help string, v *uint64) prometheus.CounterFunc {
	return prometheus.NewCounterFunc(
		prometheus.CounterOpts{Name: name, Help: help},
		func() float64 { return float64(atomic.LoadUint64(v)) },
	)
}
