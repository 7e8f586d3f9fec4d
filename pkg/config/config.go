package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the full runtime configuration for the MediaVault service.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	API      APIConfig
	Telegram TelegramConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Kafka    KafkaConfig
	Watcher  WatcherConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Name        string `env:"APP_NAME" envDefault:"mediavault"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	Version     string `env:"APP_VERSION" envDefault:"0.1.0"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
}

type HTTPConfig struct {
	Addr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
}

// APIConfig holds the shared secret protecting the deletion endpoint.
type APIConfig struct {
	DeleteToken string `env:"API_DELETE_TOKEN"`
}

type TelegramConfig struct {
	BotToken        string        `env:"TELEGRAM_BOT_TOKEN"`
	WebhookSecret   string        `env:"TELEGRAM_WEBHOOK_SECRET"`
	DownloadTimeout time.Duration `env:"TELEGRAM_DOWNLOAD_TIMEOUT" envDefault:"30s"`
	DownloadRetries int           `env:"TELEGRAM_DOWNLOAD_RETRIES" envDefault:"3"`
}

type StorageConfig struct {
	Provider  string `env:"STORAGE_PROVIDER" envDefault:"minio"`
	Endpoint  string `env:"STORAGE_ENDPOINT" envDefault:"localhost:9000"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	Bucket    string `env:"STORAGE_BUCKET" envDefault:"mediavault"`
	AccessKey string `env:"STORAGE_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string `env:"STORAGE_SECRET_KEY" envDefault:"minioadmin"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" envDefault:"false"`
	// Directory and PublicBaseURL apply to the fs provider only.
	Directory     string `env:"STORAGE_DIRECTORY" envDefault:"./media"`
	PublicBaseURL string `env:"STORAGE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080/media"`
}

type CatalogConfig struct {
	RedisAddr     string `env:"CATALOG_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"CATALOG_REDIS_PASSWORD"`
	RedisDB       int    `env:"CATALOG_REDIS_DB" envDefault:"0"`
	Key           string `env:"CATALOG_KEY" envDefault:"mediavault:catalog"`
}

type KafkaConfig struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	MediaTopic       string        `env:"KAFKA_MEDIA_TOPIC" envDefault:"mediavault.media"`
	Retries          int           `env:"KAFKA_RETRIES" envDefault:"3"`
	CompressionCodec string        `env:"KAFKA_COMPRESSION_CODEC" envDefault:"snappy"`
	BatchSize        int           `env:"KAFKA_BATCH_SIZE" envDefault:"100"`
	BatchTimeout     time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"1s"`
}

type WatcherConfig struct {
	Enabled      bool          `env:"WATCHER_ENABLED" envDefault:"false"`
	Quiescence   time.Duration `env:"WATCHER_QUIESCENCE" envDefault:"2s"`
	PollInterval time.Duration `env:"WATCHER_POLL_INTERVAL" envDefault:"100ms"`
}

type TracingConfig struct {
	Endpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure     bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRatio  float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ResourceAttr string  `env:"OTEL_RESOURCE_ATTRIBUTES" envDefault:"service.namespace=mediavault"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
