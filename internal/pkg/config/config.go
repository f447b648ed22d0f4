package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// NetworkPath points at the JSON file holding the static warehouse and
	// carrier network.
	NetworkPath string `env:"NETWORK_CONFIG, default=network.json"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Providers ProviderConfig
	Optimizer OptimizerConfig
	Outbox    OutboxConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fulfillment"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// ProviderConfig holds the base URLs of the three supporting bounded contexts
// and the per-request client timeout. The optimizer additionally bounds all
// calls of one run with OptimizerConfig.Timeout.
type ProviderConfig struct {
	StockURL  string        `env:"PROVIDER_STOCK_URL,  default=http://localhost:8081"`
	QuoteURL  string        `env:"PROVIDER_QUOTE_URL,  default=http://localhost:8082"`
	CarbonURL string        `env:"PROVIDER_CARBON_URL, default=http://localhost:8083"`
	Timeout   time.Duration `env:"PROVIDER_TIMEOUT,    default=2s"`
}

type OptimizerConfig struct {
	// Timeout is the single aggregate deadline across all provider calls of
	// one optimization run.
	Timeout time.Duration `env:"OPTIMIZER_TIMEOUT, default=3s"`
}

type OutboxConfig struct {
	RelayInterval time.Duration `env:"OUTBOX_RELAY_INTERVAL, default=1s"`
	Workers       int           `env:"OUTBOX_WORKERS,        default=4"`
	BatchSize     int           `env:"OUTBOX_BATCH_SIZE,     default=64"`
	Stream        string        `env:"OUTBOX_STREAM,         default=fulfillment.decisions"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
