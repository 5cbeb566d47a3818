package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// StorageDriver выбирает реализацию хранилища заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

const envPrefix = "beerorders"

// Config описывает настройки запуска приложения.
// Значения читаются из окружения с префиксом BEERORDERS_.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	StorageDriver       StorageDriver `envconfig:"STORAGE_DRIVER" default:"memory"`
	PostgresDSN         string        `envconfig:"POSTGRES_DSN"`
	PostgresAutoMigrate bool          `envconfig:"POSTGRES_AUTO_MIGRATE" default:"true"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	CallbackWorkers        int           `envconfig:"CALLBACK_WORKERS" default:"4"`
	CallbackQueueSize      int           `envconfig:"CALLBACK_QUEUE_SIZE" default:"256"`
	CallbackMaxAttempts    int           `envconfig:"CALLBACK_MAX_ATTEMPTS" default:"3"`
	CallbackRetryBaseDelay time.Duration `envconfig:"CALLBACK_RETRY_BASE_DELAY" default:"100ms"`
	CallbackMaxDelay       time.Duration `envconfig:"CALLBACK_MAX_DELAY" default:"5s"`

	DefaultPageSize int `envconfig:"DEFAULT_PAGE_SIZE" default:"25"`
	MaxPageSize     int `envconfig:"MAX_PAGE_SIZE" default:"100"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	IdempotencyTTL              time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
	IdempotencyCleanupInterval  time.Duration `envconfig:"IDEMPOTENCY_CLEANUP_INTERVAL" default:"10m"`
	IdempotencyCleanupBatchSize int           `envconfig:"IDEMPOTENCY_CLEANUP_BATCH_SIZE" default:"500"`
}

// DefaultConfig возвращает конфигурацию по умолчанию без чтения окружения.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                    ":8080",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		CallbackWorkers:             4,
		CallbackQueueSize:           256,
		CallbackMaxAttempts:         3,
		CallbackRetryBaseDelay:      100 * time.Millisecond,
		CallbackMaxDelay:            5 * time.Second,
		DefaultPageSize:             25,
		MaxPageSize:                 100,
		RequestTimeout:              60 * time.Second,
		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

// ReadConfig читает конфигурацию из переменных окружения.
func ReadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres storage requires BEERORDERS_POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.StorageDriver)
	}

	if c.DefaultPageSize <= 0 || c.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max %d", c.DefaultPageSize, c.MaxPageSize)
	}

	return nil
}
