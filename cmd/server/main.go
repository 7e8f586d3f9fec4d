package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/mediavault/internal/fanout"
	"github.com/your-org/mediavault/internal/vault"
	"github.com/your-org/mediavault/internal/watcher"
	"github.com/your-org/mediavault/pkg/config"
	"github.com/your-org/mediavault/pkg/kafka"
	"github.com/your-org/mediavault/pkg/logger"
	"github.com/your-org/mediavault/pkg/storage/catalog"
	"github.com/your-org/mediavault/pkg/storage/objectstore"
	"github.com/your-org/mediavault/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	if cfg.Telegram.BotToken == "" {
		logr.Fatal("TELEGRAM_BOT_TOKEN is required")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logr.Fatal("init telegram bot", zap.Error(err))
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.MediaTopic,
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
		Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
		RequiredAcks: kafkago.RequireAll,
		MaxAttempts:  cfg.Kafka.Retries,
	})

	store, err := objectstore.New(objectstore.Config{
		Provider:      cfg.Storage.Provider,
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		UseSSL:        cfg.Storage.UseSSL,
		Directory:     cfg.Storage.Directory,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		logr.Fatal("init content store", zap.Error(err))
	}

	cat, err := catalog.New(ctx, catalog.Config{
		RedisAddr:     cfg.Catalog.RedisAddr,
		RedisPassword: cfg.Catalog.RedisPassword,
		RedisDB:       cfg.Catalog.RedisDB,
		Key:           cfg.Catalog.Key,
	})
	if err != nil {
		logr.Fatal("init catalog store", zap.Error(err))
	}

	fetcher := vault.NewFetcher(vault.FetcherParams{
		Resolver: bot,
		Token:    cfg.Telegram.BotToken,
		Client:   &http.Client{Timeout: cfg.Telegram.DownloadTimeout},
		MaxTries: uint(cfg.Telegram.DownloadRetries),
	})

	var hub *fanout.Hub
	var live http.Handler
	var broadcast vault.DeletionBroadcaster
	if cfg.Watcher.Enabled {
		hub = fanout.NewHub(logr)
		live = hub
		broadcast = hub
	}

	service := vault.NewService(vault.Params{
		Store:       store,
		Catalog:     cat,
		Fetcher:     fetcher,
		Notifier:    vault.NewTelegramNotifier(bot),
		Producer:    producer,
		Broadcast:   broadcast,
		Logger:      logr,
		DeleteToken: cfg.API.DeleteToken,
	})

	if cfg.Watcher.Enabled {
		w, err := watcher.New(watcher.Params{
			Directory:  cfg.Storage.Directory,
			BaseURL:    cfg.Storage.PublicBaseURL,
			Quiescence: cfg.Watcher.Quiescence,
			Poll:       cfg.Watcher.PollInterval,
			Sink:       hub,
			Logger:     logr,
		})
		if err != nil {
			logr.Fatal("init watcher", zap.Error(err))
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logr.Error("watcher stopped", zap.Error(err))
			}
		}()
	}

	handler := vault.NewHTTPHandler(service, logr, cfg.Telegram.WebhookSecret, live)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if hub != nil {
			hub.Close()
		}
		if err := producer.Close(shutdownCtx); err != nil {
			logr.Error("producer shutdown failed", zap.Error(err))
		}
		if err := cat.Close(); err != nil {
			logr.Error("catalog shutdown failed", zap.Error(err))
		}
		if err := service.Close(shutdownCtx); err != nil {
			logr.Error("service shutdown failed", zap.Error(err))
		}
	}()

	logr.Info("mediavault starting", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}

func parseResourceAttributes(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	attrs := map[string]string{}
	pairs := strings.Split(raw, ",")
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		if !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return attrs
}
