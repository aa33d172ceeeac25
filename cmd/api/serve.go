package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"storefront/pkg/api"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	catalogpg "storefront/pkg/catalog/postgres"
	"storefront/pkg/config"
	"storefront/pkg/kvstore"
	kvmem "storefront/pkg/kvstore/memory"
	kvredis "storefront/pkg/kvstore/redis"
	"storefront/pkg/logger"
	"storefront/pkg/order"
	ordermem "storefront/pkg/order/memory"
	orderpg "storefront/pkg/order/postgres"
	"storefront/pkg/otel"
	"storefront/pkg/shop"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, level, cfg.Service, otel.GetTraceID)
	defer log.Sync()

	tp, shutdown, err := otel.InitTracing(log, otel.Config{ServiceName: cfg.Service, Host: cfg.Tracing.Host, Probability: cfg.Tracing.Probability})
	if err != nil {
		log.Error(ctx, "init tracing", "error", err)
		return err
	}
	defer shutdown(context.Background())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, log, cfg.Redis)
	if err != nil {
		return err
	}
	cat, orders, err := openRepositories(ctx, log, cfg.Postgres)
	if err != nil {
		return err
	}

	sessions := shop.NewRegistry(store, shop.Options{
		KeyPrefix:    cfg.Session.KeyPrefix,
		RemovalDelay: cfg.Cart.RemovalDelay,
		Log:          log,
	})
	defer sessions.Close()
	go sessions.Run(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTTL)

	handler := api.New(cat, orders, sessions, log, tp.Tracer(cfg.Service), api.Config{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.TLS(),
	})
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTP.Addr, "tls", cfg.TLS())
		if cfg.TLS() {
			errc <- srv.ListenAndServeTLS(cfg.HTTP.CertFile, cfg.HTTP.KeyFile)
		} else {
			errc <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server closed", "error", err)
			return err
		}
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(shutdownCtx, "shutdown", "error", err)
			return err
		}
	}
	return nil
}

func openStore(ctx context.Context, log *logger.Logger, cfg config.RedisConfig) (kvstore.Store, error) {
	if cfg.Addr == "" {
		log.Info(ctx, "using in-memory key-value store")
		return kvmem.New(), nil
	}
	client := goredis.NewClient(&goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	store := kvredis.New(client)
	if err := store.Ping(ctx); err != nil {
		log.Error(ctx, "redis connect", "addr", cfg.Addr, "error", err)
		return nil, err
	}
	log.Info(ctx, "using redis key-value store", "addr", cfg.Addr)
	return store, nil
}

func openRepositories(ctx context.Context, log *logger.Logger, cfg config.PostgresConfig) (catalog.Repository, order.Repository, error) {
	products, err := catalog.Static()
	if err != nil {
		return nil, nil, err
	}
	if cfg.URL == "" {
		log.Info(ctx, "using in-memory catalog and orders", "products", len(products))
		return catalogmem.New(products), ordermem.New(), nil
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		log.Error(ctx, "db connect", "error", err)
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		log.Error(ctx, "db ping", "error", err)
		return nil, nil, err
	}
	cat := catalogpg.New(db)
	orders := orderpg.New(db)
	if err := cat.Migrate(ctx); err != nil {
		log.Error(ctx, "create products table", "error", err)
		return nil, nil, err
	}
	if err := orders.Migrate(ctx); err != nil {
		log.Error(ctx, "create orders table", "error", err)
		return nil, nil, err
	}
	if cfg.SeedCatalog {
		if err := cat.Seed(ctx, products); err != nil {
			log.Error(ctx, "seed catalog", "error", err)
			return nil, nil, err
		}
		log.Info(ctx, "seeded catalog", "products", len(products))
	}
	return cat, orders, nil
}
