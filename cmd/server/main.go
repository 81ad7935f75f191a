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

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"landledger/internal/access"
	"landledger/internal/audit"
	"landledger/internal/fees"
	jwttoken "landledger/internal/jwt_token"
	"landledger/internal/ledger"
	"landledger/internal/platform/config"
	"landledger/internal/platform/httpserver"
	"landledger/internal/platform/logger"
	"landledger/internal/platform/metrics"
	redisplatform "landledger/internal/platform/redis"
	"landledger/internal/property"
	"landledger/internal/registry"
	"landledger/internal/token"
	httptransport "landledger/internal/transport/http"
	"landledger/pkg/domain"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	stores := registry.Stores{
		Access:   access.NewInMemoryStore(),
		Fees:     fees.NewInMemoryStore(),
		Property: property.NewInMemoryStore(),
		Token:    token.NewInMemoryStore(),
	}
	var auditStore audit.Store = audit.NewInMemoryStore()

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		propertyStore := property.NewPostgresStore(pool)
		if err := propertyStore.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure property schema", "error", err)
			os.Exit(1)
		}
		stores.Property = propertyStore

		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open audit database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		pgAudit := audit.NewPostgresStore(db)
		if err := pgAudit.EnsureSchema(ctx); err != nil {
			log.Error("failed to ensure audit schema", "error", err)
			os.Exit(1)
		}
		auditStore = pgAudit
	}

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		stores.Fees = fees.NewCachedStore(stores.Fees, redisClient.Client, log)
	}

	auditp := audit.NewPublisher(auditStore, audit.WithLogger(log))

	group, ctx := errgroup.WithContext(ctx)

	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer sink.Close()

		worker := audit.NewWorker(sink, auditp.Inbox(), log)
		group.Go(func() error {
			err := worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	bank := ledger.NewMemoryBank()
	reg, err := registry.New(ctx,
		domain.Address(cfg.Deployer),
		domain.Address(cfg.AgencyWallet),
		domain.Address(cfg.GovernmentWallet),
		stores, bank, ledger.SystemClock{}, auditp,
		registry.WithLogger(log), registry.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to assemble registry", "error", err)
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "landledger", "landledger-api")
	handler := httptransport.NewHandler(reg, jwtService, redisClient, m, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	group.Go(func() error {
		log.Info("starting landledger", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
