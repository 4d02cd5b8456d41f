package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rcarvalho-pb/payment_gateway-go/internal/application/audit"
	paymentApplication "github.com/rcarvalho-pb/payment_gateway-go/internal/application/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/config"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/domain/payment"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/logging"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/authorizer"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/eventbus"
	httpapi "github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/outbox"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/persistence/inmemory"
	"github.com/rcarvalho-pb/payment_gateway-go/internal/infrastructure/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)

	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("sqlite: %v", err)
	}
	defer db.Close()

	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	counters := &metrics.Counters{}
	if err := counters.Register(registry); err != nil {
		log.Fatalf("metrics: %v", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	bus := eventbus.NewInMemoryBus()
	auditHandler := &audit.PaymentEventHandler{Logger: logger}
	for _, t := range auditHandler.Subscriptions() {
		bus.Subscribe(t, auditHandler.Handle)
	}

	outboxRepo := outbox.NewSQLiteRepository(db)
	registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "gateway_outbox_pending_events",
			Help: "Recorded events not yet published to subscribers.",
		},
		func() float64 {
			n, err := outboxRepo.Pending()
			if err != nil {
				return 0
			}
			return float64(n)
		},
	))
	dispatcher := &outbox.Dispatcher{
		Repo:         outboxRepo,
		EventBus:     bus,
		Logger:       logger,
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
	}

	processor := &paymentApplication.Processor{
		Store:      newPaymentStore(cfg, db),
		Validator:  paymentApplication.NewValidator(cfg.MinExpiryYear, time.Now),
		Authorizer: authorizer.NewClient(cfg.AuthorizerBaseURL, cfg.AuthorizerTimeout, logger),
		Recorder:   &outbox.Recorder{Repo: outboxRepo},
		Logger:     logger,
		Metrics:    counters,
	}

	handler := &httpapi.PaymentHandler{
		Service: processor,
		Logger:  logger,
	}

	app := httpapi.NewRouter(handler, httpMetrics, registry, cfg.RequestTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	go func() {
		logger.Info("HTTP server running", map[string]any{
			"port":         cfg.Port,
			"env":          cfg.Env,
			"store-driver": cfg.StoreDriver,
		})
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("HTTP server stopped", map[string]any{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", nil)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", map[string]any{"error": err.Error()})
	}

	// flush whatever the last requests recorded, once Run has let go
	<-dispatcherDone
	dispatcher.DispatchOnce()
}

func newPaymentStore(cfg *config.Config, db *sql.DB) payment.Repository {
	if cfg.StoreDriver == config.StoreSQLite {
		return sqlite.NewPaymentStore(db)
	}
	return inmemory.NewPaymentStore()
}
