package httpapi

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/metrics"
)

func NewRouter(handler *PaymentHandler, httpMetrics *metrics.HTTPMetrics, gatherer prometheus.Gatherer, requestTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "payment-gateway",
		// header and param strings outlive the request as payment ids
		Immutable:             true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(httpMetrics.Track())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api/payments", RequestContext(requestTimeout))
	api.Post("/", handler.ProcessPayment)
	api.Get("/:id", handler.GetPayment)

	return app
}

// RequestContext gives each request a context that is cancelled when the
// handler returns or the timeout elapses. fasthttp does not report client
// disconnects, so the timeout is the only bound on an abandoned request.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			ctx    context.Context
			cancel context.CancelFunc
		)
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(context.Background(), timeout)
		} else {
			ctx, cancel = context.WithCancel(context.Background())
		}
		defer cancel()

		c.SetUserContext(ctx)
		return c.Next()
	}
}
