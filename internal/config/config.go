package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	DBHost            string `envconfig:"DB_HOST" default:"localhost"`
	DBPort            int    `envconfig:"DB_PORT" default:"5432"`
	DBUser            string `envconfig:"DB_USER" default:"postgres"`
	DBPassword        string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName            string `envconfig:"DB_NAME" default:"storefront"`
	MigrationsPath    string `envconfig:"MIGRATIONS_PATH" default:"./internal/repository/migrations"`
	CatalogDBPath     string `envconfig:"CATALOG_DB_PATH" default:"./catalog.db"`
	CatalogMigrations string `envconfig:"CATALOG_MIGRATIONS_PATH" default:"./internal/catalog/migrations"`

	RedisAddr    string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`

	// GatewayMode selects the payment gateway implementation: "sandbox" runs
	// the in-process deterministic gateway, "http" talks to a real endpoint.
	GatewayMode    string        `envconfig:"GATEWAY_MODE" default:"sandbox"`
	GatewayBaseURL string        `envconfig:"GATEWAY_BASE_URL" default:"http://localhost:9090"`
	GatewayTimeout time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`

	JWTSecret string `envconfig:"JWT_SECRET" default:"storefront-secret"`

	// StatusCancelledTerminal turns on the optional workflow guard that makes
	// CANCELLED a terminal status. Off by default: the admin UI relies on
	// any-to-any transitions.
	StatusCancelledTerminal bool `envconfig:"STATUS_CANCELLED_TERMINAL" default:"false"`

	Currency string `envconfig:"CURRENCY" default:"USD"`
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
