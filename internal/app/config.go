package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sweetcart/internal/client"
	"github.com/vladislavdragonenkov/sweetcart/internal/persistence"
	"github.com/vladislavdragonenkov/sweetcart/internal/storage/redis"
)

// Драйверы хранилища корзины.
const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"
)

// Config описывает настройки клиента. Значения по умолчанию задаёт DefaultConfig,
// переменные окружения SWEETCART_* их переопределяют.
type Config struct {
	StorageDriver string `env:"SWEETCART_STORAGE_DRIVER"`
	SQLitePath    string `env:"SWEETCART_SQLITE_PATH"`
	PostgresDSN   string `env:"SWEETCART_POSTGRES_DSN"`
	// PostgresAutoMigrate применяет миграции при открытии хранилища.
	PostgresAutoMigrate bool `env:"SWEETCART_POSTGRES_AUTO_MIGRATE"`

	RedisAddr     string `env:"SWEETCART_REDIS_ADDR"`
	RedisPassword string `env:"SWEETCART_REDIS_PASSWORD"`
	RedisDB       int    `env:"SWEETCART_REDIS_DB"`
	RedisPrefix   string `env:"SWEETCART_REDIS_PREFIX"`

	CartKey string `env:"SWEETCART_CART_KEY"`

	APIBaseURL string        `env:"SWEETCART_API_BASE_URL"`
	APITimeout time.Duration `env:"SWEETCART_API_TIMEOUT"`

	KafkaBrokers []string `env:"SWEETCART_KAFKA_BROKERS" envSeparator:","`

	PushgatewayURL string `env:"SWEETCART_PUSHGATEWAY_URL"`

	LogLevel string `env:"SWEETCART_LOG_LEVEL"`
}

// DefaultConfig возвращает настройки для локального запуска.
func DefaultConfig() Config {
	return Config{
		StorageDriver:       StorageDriverSQLite,
		SQLitePath:          defaultSQLitePath(),
		PostgresAutoMigrate: true,
		RedisAddr:           "localhost:6379",
		RedisPrefix:         redis.DefaultPrefix,
		CartKey:             persistence.DefaultCartKey,
		APIBaseURL:          "http://localhost:8080",
		APITimeout:          client.DefaultTimeout,
		LogLevel:            "info",
	}
}

// LoadConfig применяет переменные окружения поверх DefaultConfig и проверяет результат.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.KafkaBrokers = cleanList(cfg.KafkaBrokers)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SWEETCART_SQLITE_PATH is required for %s storage", c.StorageDriver)
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("SWEETCART_POSTGRES_DSN is required for %s storage", c.StorageDriver)
		}
	case StorageDriverRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("SWEETCART_REDIS_ADDR is required for %s storage", c.StorageDriver)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("SWEETCART_API_BASE_URL is required")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("SWEETCART_API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("SWEETCART_LOG_LEVEL: %w", err)
	}
	return nil
}

func defaultSQLitePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".sweetcart.db"
	}
	return filepath.Join(dir, "sweetcart", "cart.db")
}

func cleanList(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
