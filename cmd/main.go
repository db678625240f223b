package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/canteen/internal/adapter/logger"
	"github.com/YelzhanWeb/canteen/internal/adapter/memory"
	"github.com/YelzhanWeb/canteen/internal/adapter/postgres"
	"github.com/YelzhanWeb/canteen/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/canteen/internal/app/billing"
	"github.com/YelzhanWeb/canteen/internal/app/catalog"
	"github.com/YelzhanWeb/canteen/internal/app/order"
	"github.com/YelzhanWeb/canteen/internal/config"
	"github.com/YelzhanWeb/canteen/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/canteen/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/canteen/internal/adapter/http"
)

func main() {
	mode := flag.String("mode", "", "Service mode: api, notification-subscriber, migrate")
	configPath := flag.String("config", "config.yaml", "Path to YAML config (optional)")
	store := flag.String("store", "postgres", "Storage for api mode: postgres or memory")
	prefetch := flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	lgr, err := logger.New(*mode, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lgr.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		if err := cfg.ValidateAPI(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		err = runAPI(ctx, cfg, *store, lgr)

	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, *prefetch, lgr)

	case "migrate":
		err = runMigrate(ctx, cfg, lgr)

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if code := exitCode(err, lgr, stop); code != 0 {
		os.Exit(code)
	}
}

// exitCode flushes the log and releases signal handling before a failing exit,
// since os.Exit skips deferred calls.
func exitCode(err error, lgr logger.Logger, stop context.CancelFunc) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	lgr.Error("service_failed", "Service stopped with error", "shutdown", nil, err)
	stop()
	_ = lgr.Sync()
	return 1
}

type services struct {
	orders  *order.Service
	billing *billing.Service
	menu    *catalog.Service
	health  func(ctx context.Context) error
}

func runAPI(ctx context.Context, cfg *config.Config, store string, lgr logger.Logger) error {
	var publisher interfaces.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer mqConn.Close()
		publisher = rabbitmq.NewPublisher(mqConn)

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host":     cfg.RabbitMQ.Host,
			"exchange": rabbitmq.OrdersExchange,
		})
	}

	var svc services
	switch store {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host":      cfg.Database.Host,
			"db":        cfg.Database.Database,
			"max_conns": cfg.Database.MaxConns,
		})

		uow := postgres.NewUnitOfWork(pool, cfg.Database)
		reads := postgres.NewReadPool(pool, cfg.Database)
		menu := postgres.NewMenuRepository(reads)
		svc = services{
			orders:  order.NewService(menu, uow, postgres.NewOrderRepository(reads), publisher, lgr),
			billing: billing.NewService(uow, postgres.NewBillingRepository(reads), publisher, lgr),
			menu:    catalog.NewService(menu, lgr),
			health:  pool.Ping,
		}

	case "memory":
		mem := memory.NewStore()
		memory.Seed(mem)
		lgr.Info("memory_store", "Using in-memory store with seeded menu", "startup", nil)

		svc = services{
			orders:  order.NewService(mem, mem, mem.Orders(), publisher, lgr),
			billing: billing.NewService(mem, mem.Billings(), publisher, lgr),
			menu:    catalog.NewService(mem, lgr),
		}

	default:
		return fmt.Errorf("unknown store %q", store)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Orders:    svc.orders,
		Billing:   svc.billing,
		Menu:      svc.menu,
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    lgr,
		Health:    svc.health,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Canteen API started on port %d", cfg.Server.Port), "startup", map[string]interface{}{
		"port":  cfg.Server.Port,
		"store": store,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Canteen API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		return err
	}
	return nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, prefetch int, lgr logger.Logger) error {
	if !cfg.RabbitMQ.Enabled() {
		return errors.New("notification-subscriber requires RABBITMQ_HOST")
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, prefetch, lgr)
	handler := amqpAdapter.NewNotificationHandler(os.Stdout, lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"exchange": rabbitmq.OrdersExchange,
		"prefetch": prefetch,
	})

	err = consumer.ConsumeOrderEvents(ctx, handler.HandleOrderEvent)

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	return err
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	pool, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		return err
	}

	lgr.Info("migrations_applied", fmt.Sprintf("Applied %d migrations", len(applied)), "startup", map[string]interface{}{
		"files": applied,
	})
	return nil
}
