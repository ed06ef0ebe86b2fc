package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pizza-service/internal/config"
	httpctl "pizza-service/internal/controllers/http"
	"pizza-service/internal/infra"
	mmysql "pizza-service/internal/infra/mysql"
	"pizza-service/internal/infra/rabbitmq"
	"pizza-service/internal/logger"
	"pizza-service/internal/repository"
	"pizza-service/internal/repository/memory"
	mysqlrepo "pizza-service/internal/repository/mysql"
	"pizza-service/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, envLoaded := config.Load()

	lg, err := logger.New(logger.Options{Service: "pizza-service", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()
	if !envLoaded {
		lg.Debug("no .env file, using process environment")
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newOrderRepository(cfg, lg)
	if err != nil {
		return err
	}

	publisher, closePublisher := newPublisher(cfg, lg)
	defer closePublisher()

	var gen infra.GeneratorInterface
	if gc, err := infra.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
		lg.Warn("recommendations unavailable", zap.Error(err))
	} else {
		gen = gc
	}

	sessions := services.NewSessionManager(cfg.DeliveryFee, lg)
	defer sessions.Close()

	orders := services.NewOrderService(repo, lg)
	if cfg.RedisHost != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, "6379"),
			DB:           cfg.RedisDB,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			lg.Warn("redis unreachable, order cache disabled", zap.Error(err))
		} else {
			orders.SetRedisClient(redisClient)
		}
	}

	handler := httpctl.NewHandler(
		sessions,
		services.NewRecommender(gen, lg),
		services.NewCheckoutService(repo, publisher, lg, services.CheckoutOptions{
			PaymentDelay:  cfg.PaymentDelay,
			StageInterval: cfg.StageInterval,
		}),
		orders,
		lg,
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(httpctl.RequestLogger(lg), httpctl.Recovery(lg))
	handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		// recommendation calls can be slow
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("starting pizza service", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newOrderRepository opens the MySQL journal when configured and falls back
// to memory otherwise.
func newOrderRepository(cfg config.Config, lg *zap.Logger) (repository.OrderRepository, error) {
	if !cfg.MySQL.Enabled() {
		lg.Info("order journal in memory")
		return memory.NewOrderRepository(), nil
	}
	db, err := mmysql.Open(cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	lg.Info("order journal in mysql", zap.String("host", cfg.MySQL.Host))
	return mysqlrepo.NewOrderRepository(db, lg), nil
}

func newPublisher(cfg config.Config, lg *zap.Logger) (rabbitmq.PublisherInterface, func()) {
	logOnly := &rabbitmq.LogPublisher{Log: lg}
	if cfg.RabbitMQURL == "" {
		return logOnly, func() {}
	}
	pub, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, lg)
	if err != nil {
		lg.Warn("rabbitmq unavailable, events are logged only", zap.Error(err))
		return logOnly, func() {}
	}
	return pub, pub.Close
}
