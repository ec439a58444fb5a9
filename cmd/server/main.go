package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zeynelltalay/KURA-Ecommercee/internal/cart"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/checkout"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/draft"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/inventory"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/kvstore"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/order"
	"github.com/zeynelltalay/KURA-Ecommercee/internal/server"
	"github.com/zeynelltalay/KURA-Ecommercee/pkg/config"
	"github.com/zeynelltalay/KURA-Ecommercee/pkg/logger"
	"github.com/zeynelltalay/KURA-Ecommercee/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	store, err := kvstore.Open(cfg.DBPath, inventory.Collection, order.Collection)
	if err != nil {
		log.Error("failed to open document store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to ping redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	ledger := inventory.NewLedger(store)
	carts := cart.NewService(cart.NewRedisRepository(redisClient, cfg.CartTTL), log)
	drafts := draft.NewStore(redisClient, cfg.DraftTTL)
	engine := checkout.NewEngine(store, log)
	orders := order.NewRepository(store)

	router := server.NewRouter(server.Deps{
		Engine:  engine,
		Carts:   carts,
		Drafts:  drafts,
		Ledger:  ledger,
		Orders:  orders,
		Log:     log,
		Timeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "port", cfg.HTTPPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
