package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"banking-transfers/internal/account"
	"banking-transfers/internal/config"
	"banking-transfers/internal/events/kafka"
	"banking-transfers/internal/fraud"
	"banking-transfers/internal/interfaces"
	"banking-transfers/internal/logging"
	"banking-transfers/internal/metrics"
	"banking-transfers/internal/server"
	"banking-transfers/internal/storage/memory"
	"banking-transfers/internal/storage/postgres"
	"banking-transfers/internal/stream"
	"banking-transfers/internal/transfer"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var store interfaces.LedgerStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatal("failed to reach database", zap.Error(err))
		}
		store = postgres.NewPostgresLedgerStore(db)
		logger.Info("using postgres ledger store")
	} else {
		store = memory.NewMemoryLedgerStore()
		logger.Info("using in-memory ledger store")
	}

	var publisher interfaces.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("kafka publisher enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	// The hub lives for the whole process; the orchestrator and the stream
	// endpoint share this one instance.
	hub := stream.NewHub(cfg.StreamBuffer, m, logger)

	scorer := fraud.NewScorer(cfg.Fraud, store, m, logger)
	transferService := transfer.NewService(store, scorer, hub, publisher, m, logger)
	accountService := account.NewService(store, logger)

	serverCfg := server.DefaultConfig()
	serverCfg.Addr = cfg.HTTPAddr
	srv := server.New(serverCfg, transferService, accountService, scorer, hub, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("server stopped")
}
