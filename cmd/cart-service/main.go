package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/potter-book-bank/internal/cart/application"
	cartbadger "github.com/dmehra2102/potter-book-bank/internal/cart/infrastructure/badger"
	carthttp "github.com/dmehra2102/potter-book-bank/internal/cart/infrastructure/http"
	cartmemory "github.com/dmehra2102/potter-book-bank/internal/cart/infrastructure/memory"
	cartredis "github.com/dmehra2102/potter-book-bank/internal/cart/infrastructure/redis"
	checkoutapp "github.com/dmehra2102/potter-book-bank/internal/checkout/application"
	checkouthttp "github.com/dmehra2102/potter-book-bank/internal/checkout/infrastructure/http"
	checkoutkafka "github.com/dmehra2102/potter-book-bank/internal/checkout/infrastructure/kafka"
	checkoutpg "github.com/dmehra2102/potter-book-bank/internal/checkout/infrastructure/postgres"
	exploreapp "github.com/dmehra2102/potter-book-bank/internal/explore/application"
	explorehttp "github.com/dmehra2102/potter-book-bank/internal/explore/infrastructure/http"
	explorepg "github.com/dmehra2102/potter-book-bank/internal/explore/infrastructure/postgres"
	"github.com/dmehra2102/potter-book-bank/internal/notify"
	"github.com/dmehra2102/potter-book-bank/internal/session"
	"github.com/dmehra2102/potter-book-bank/pkg/config"
	"github.com/dmehra2102/potter-book-bank/pkg/idempotency"
	"github.com/dmehra2102/potter-book-bank/pkg/logging"
	"github.com/dmehra2102/potter-book-bank/pkg/outbox"
	"github.com/dmehra2102/potter-book-bank/pkg/shutdown"
	"github.com/dmehra2102/potter-book-bank/pkg/tracing"
)

func main() {
	configFile := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "cart-service", cfg.OTelEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}

	// Postgres Setup
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := checkoutpg.Migrate(ctx, pool); err != nil {
		log.Error("orders migration failed", "err", err)
		os.Exit(1)
	}
	if err := explorepg.Migrate(ctx, pool); err != nil {
		log.Error("explore migration failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable", "addr", cfg.RedisAddr, "err", err)
	}

	storage, closeStorage, err := openStorage(cfg, rdb)
	if err != nil {
		log.Error("cart storage open failed", "backend", cfg.CartStorage, "err", err)
		os.Exit(1)
	}
	defer closeStorage()
	log.Info("cart storage ready", "backend", cfg.CartStorage)

	// Kafka producer
	writer := checkoutkafka.NewWriter(strings.Split(cfg.KafkaAddr, ","))
	defer writer.Close()

	// Repository & Outbox store
	repo := checkoutpg.NewRepository(log, pool)
	outboxStore := checkoutpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, outboxStore, dispatch, "cart-service-relay")

	carts := application.NewRegistry(log, storage, cfg.CartCacheSize, cfg.CartCacheIdle)
	inbox := notify.NewInbox(log, 0)
	checkout := checkoutapp.NewService(log, repo, inbox, checkoutapp.Config{
		ChannelBaseURL: cfg.WhatsAppURL,
		Recipient:      cfg.WhatsAppNumber,
		PersistTimeout: cfg.PersistTimeout,
		Location:       cfg.Location(),
	})
	explore := exploreapp.NewService(log, explorepg.NewQueue(log, pool))

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, session.Middleware)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/cart", carthttp.NewHandler(log, carts).Routes())
	r.Mount("/checkout", checkouthttp.NewHandler(log, checkout, carts, inbox, idempotency.NewStore(rdb, cfg.IdempotencyTTL)).Routes())
	r.Mount("/explore", explorehttp.NewHandler(log, explore, carts).Routes())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(r, "cart-service"),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Run relay
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Run HTTP
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	_ = shutdown.Run(log, 20*time.Second,
		shutdown.Step{Name: "http", Fn: srv.Shutdown},
		shutdown.Step{Name: "order saves", Fn: checkout.Wait},
		shutdown.Step{Name: "tracing", Fn: tp.Shutdown},
	)
	log.Info("cart-service shutdown complete")
}

func openStorage(cfg config.App, rdb *redis.Client) (application.Storage, func(), error) {
	switch cfg.CartStorage {
	case config.StorageRedis:
		return cartredis.NewStorage(rdb, cfg.CartTTL), func() {}, nil
	case config.StorageBadger:
		s, err := cartbadger.Open(cfg.BadgerPath, cfg.CartTTL)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StorageMemory:
		return cartmemory.NewStorage(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown cart storage %q", cfg.CartStorage)
}
