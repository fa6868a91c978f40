package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/order-widget/internal/cache"
	"github.com/fjod/order-widget/internal/cart"
	"github.com/fjod/order-widget/internal/catalog"
	"github.com/fjod/order-widget/internal/config"
	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/guard"
	h "github.com/fjod/order-widget/internal/http"
	"github.com/fjod/order-widget/internal/logger"
	"github.com/fjod/order-widget/internal/transport"
	"github.com/fjod/order-widget/internal/widget"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log := logger.ForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.String("timezone", cfg.Order.Timezone), zap.Error(err))
	}

	sender, err := transport.NewClient(transport.Config{
		Endpoint: cfg.Order.Endpoint,
		Timeout:  cfg.Order.Timeout,
		Breaker: transport.BreakerConfig{
			Enabled:             cfg.Order.BreakerEnabled,
			ConsecutiveFailures: uint32(cfg.Order.BreakerFailures),
			OpenTimeout:         cfg.Order.BreakerOpenTimeout,
		},
	}, transport.WithLogger(log.Named("transport")))
	if err != nil {
		log.Fatal("failed to create order transport", zap.Error(err))
	}

	// Attempt log: redis when several replicas share sessions, memory otherwise
	var attempts guard.AttemptLog
	var forget func(id string)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

		redisLog := cache.NewRedisAttemptLog(rdb)
		attempts = redisLog
		forget = func(id string) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := redisLog.Delete(ctx, id); err != nil {
				log.Warn("failed to drop attempt record", zap.String("session", id), zap.Error(err))
			}
		}
	} else {
		memoryLog := guard.NewMemoryAttemptLog()
		attempts = memoryLog
		forget = memoryLog.Forget
	}

	settings := widget.Settings{
		Limits: guard.Limits{
			MinInterval:     cfg.Order.RateLimit,
			MaxRows:         cfg.Order.MaxRows,
			MaxPayloadBytes: cfg.Order.MaxPayloadBytes,
		},
		PricePolicy: cart.PricePolicy(cfg.Order.PricePolicy),
		MaxQty:      cfg.Order.MaxQty,
		Location:    loc,
		AttemptLog:  attempts,
		Logger:      log.Named("widget"),
	}
	menu := catalog.Default()

	registry := widget.NewRegistry(
		func(id string, lang domain.Language) *widget.Widget {
			return widget.New(id, menu, sender, lang, settings)
		},
		cfg.Session.CleanupInterval,
		widget.WithIdleTTL(cfg.Session.IdleTTL),
		widget.OnExpire(forget),
	)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Cookie: h.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
		},
	}, registry, log.Named("http"))

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("order widget starting",
			zap.String("port", cfg.App.Port),
			zap.String("env", cfg.App.Env),
			zap.String("endpoint", cfg.Order.Endpoint),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := registry.Close(); err != nil {
		log.Warn("session registry close", zap.Error(err))
	}

	log.Info("server exited")
}
