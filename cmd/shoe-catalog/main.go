package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/trananhvu/shoe-catalog/internal/config"
	"github.com/trananhvu/shoe-catalog/internal/event"
	"github.com/trananhvu/shoe-catalog/internal/http"
	"github.com/trananhvu/shoe-catalog/internal/log"
	"github.com/trananhvu/shoe-catalog/internal/relay"
	"github.com/trananhvu/shoe-catalog/internal/repository"
	"github.com/trananhvu/shoe-catalog/internal/service"
	"github.com/trananhvu/shoe-catalog/internal/storage/kv"
	"github.com/trananhvu/shoe-catalog/internal/storage/mq"
	"github.com/trananhvu/shoe-catalog/internal/telemetry"
	"github.com/trananhvu/shoe-catalog/pkg/cmdutil"
	"github.com/trananhvu/shoe-catalog/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running shoe catalog: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log    config.Log
		Badger config.Badger
		HTTP   config.HTTP
		Relay  config.Relay
		Kafka  config.Kafka
		Otel   config.Otel
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

	badgerDB, err := kv.NewBadgerDB(cfg.Badger)
	if err != nil {
		return fmt.Errorf("error opening badger db: %w", err)
	}
	defer func() {
		if err := badgerDB.Close(); err != nil {
			logger.ErrorContext(ctx, "error closing badger db", slog.Any("error", err))
		}
	}()

	kvClient := kv.NewClient(badgerDB)

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

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	shoeRepository := repository.NewShoeRepository(kvClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(kvClient)

	shoeService := service.NewShoeService(
		kvClient,
		shoeRepository,
		outboxMsgRepository,
		service.UUIDGenerator{},
		service.NewSystemClock(),
	)

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
		svc := http.New(cfg.HTTP, logger, v, kvClient, shoeService)
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
		svc := relay.NewService(cfg.Relay, logger, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
