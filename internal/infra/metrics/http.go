package metrics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type HTTPMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests handled by the gateway.",
			},
			[]string{"route", "status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_errors_total",
				Help: "Total number of HTTP requests answered with a 4xx or 5xx status.",
			},
			[]string{"route", "status"},
		),
	}

	if err := reg.Register(m.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(m.errors); err != nil {
		return nil, err
	}

	return m, nil
}

// Track counts every request by matched route and status code.
func (m *HTTPMetrics) Track() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler answers 500 unless the error carries a code
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		code := strconv.Itoa(status)

		m.requests.WithLabelValues(route, code).Inc()
		if status >= http.StatusBadRequest {
			m.errors.WithLabelValues(route, code).Inc()
		}

		return err
	}
}
