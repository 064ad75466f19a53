package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/polybooks/polybooks/internal/config"
	"github.com/polybooks/polybooks/internal/event"
	"github.com/polybooks/polybooks/internal/http"
	"github.com/polybooks/polybooks/internal/log"
	"github.com/polybooks/polybooks/internal/recount"
	"github.com/polybooks/polybooks/internal/relay"
	"github.com/polybooks/polybooks/internal/repository"
	"github.com/polybooks/polybooks/internal/service"
	"github.com/polybooks/polybooks/internal/storage/db"
	"github.com/polybooks/polybooks/internal/storage/mq"
	"github.com/polybooks/polybooks/internal/telemetry"
	"github.com/polybooks/polybooks/pkg/cmdutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Auth     config.Auth
		Relay    config.Relay
		Recount  config.Recount
		Kafka    config.Kafka
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	productRepository := repository.NewProductRepository(dbClient)
	inventoryRepository := repository.NewInventoryRepository(dbClient)
	transactionRepository := repository.NewTransactionRepository(dbClient)
	userRepository := repository.NewUserRepository(dbClient)
	customerRepository := repository.NewCustomerRepository(dbClient)
	vendorRepository := repository.NewVendorRepository(dbClient)
	reportRepository := repository.NewReportRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	authService := service.NewAuthService(cfg.Auth, userRepository)
	productService := service.NewProductService(dbClient, productRepository, outboxMsgRepository)
	inventoryService := service.NewInventoryService(productRepository, inventoryRepository)
	transactionService := service.NewTransactionService(dbClient, transactionRepository, inventoryRepository, outboxMsgRepository)
	partyService := service.NewPartyService(customerRepository, vendorRepository)
	reportService := service.NewReportService(reportRepository)

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc, err := http.New(
			cfg.HTTP,
			logger,
			dbClient,
			authService,
			productService,
			inventoryService,
			transactionService,
			partyService,
			reportService,
		)
		if err != nil {
			panic(fmt.Errorf("error creating http service: %w", err))
		}

		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Go(func() {
		svc := recount.NewService(cfg.Recount, logger, inventoryService)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "recount service started")

		<-interruptChan

		logger.InfoContext(ctx, "recount service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "recount service is stopped")
	})

	wg.Wait()

	return nil
}
