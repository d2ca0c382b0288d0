package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/canteen-order/internal/cache"
	"github.com/nikolayk812/canteen-order/internal/config"
	"github.com/nikolayk812/canteen-order/internal/db/migrations"
	"github.com/nikolayk812/canteen-order/internal/event"
	"github.com/nikolayk812/canteen-order/internal/handler"
	"github.com/nikolayk812/canteen-order/internal/observability"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/nikolayk812/canteen-order/internal/repository"
	"github.com/nikolayk812/canteen-order/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", os.Getenv("CANTEEN_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config.Load: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "observability.NewLogger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	unit, err := cfg.Orders.CurrencyUnit()
	if err != nil {
		return err
	}

	loc, err := cfg.Orders.Location()
	if err != nil {
		return err
	}

	if cfg.Postgres.Migrate {
		if err := migrations.Up(cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations.Up: %w", err)
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	defer pool.Close()

	orderRepo := repository.NewOrder(pool)

	publisher, closePublisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	statsCache, closeCache, err := newStatsCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	orders, err := service.NewOrderService(service.OrderServiceDeps{
		Orders:      orderRepo,
		Catalog:     repository.NewProductCatalog(pool),
		Events:      publisher,
		OrderNumber: service.NewOrderNumberGenerator(cfg.Orders.NumberPrefix),
		Currency:    unit,
		MaxPageSize: cfg.Orders.MaxPageSize,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("service.NewOrderService: %w", err)
	}

	stats, err := service.NewStatisticsEngine(service.StatisticsDeps{
		Orders:      orderRepo,
		Cache:       statsCache,
		CacheTTL:    cfg.Redis.StatsTTL,
		Location:    loc,
		MaxPageSize: cfg.Orders.MaxPageSize,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("service.NewStatisticsEngine: %w", err)
	}

	merchants, err := service.NewMerchantService(service.MerchantServiceDeps{
		Lifecycle: orders,
		Stats:     stats,
		Orders:    orderRepo,
	})
	if err != nil {
		return fmt.Errorf("service.NewMerchantService: %w", err)
	}

	router, err := handler.NewRouter(handler.RouterDeps{
		Orders:    orders,
		Merchants: merchants,
		Stats:     stats,
		DB:        pool,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("handler.NewRouter: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newPublisher(cfg config.KafkaConfig, logger *zap.Logger) (port.OrderEventPublisher, func(), error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not configured, order events go to the log")
		return event.NewLogPublisher(logger), func() {}, nil
	}

	publisher, err := event.NewKafkaPublisher(event.NewKafkaWriter(cfg.Brokers, cfg.Topic, logger))
	if err != nil {
		return nil, nil, fmt.Errorf("event.NewKafkaPublisher: %w", err)
	}

	closeFn := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("kafka publisher close failed", zap.Error(err))
		}
	}

	return publisher, closeFn, nil
}

const redisPingTimeout = 3 * time.Second

// newStatsCache returns a nil cache when redis is not configured.
func newStatsCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (port.StatsCache, func(), error) {
	if cfg.Addr == "" {
		return nil, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	statsCache, err := cache.NewRedisStatsCache(client, "canteen")
	if err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("cache.NewRedisStatsCache: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}

	return statsCache, closeFn, nil
}
