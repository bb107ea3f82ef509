package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage and telemetry backends.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config holds the settings shared by every energy-vault binary.
type Config struct {
	HTTPPort  string `mapstructure:"HTTP_PORT"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	StorageBackend   string `mapstructure:"STORAGE_BACKEND"`
	TelemetryBackend string `mapstructure:"TELEMETRY_BACKEND"`
	SeedSampleData   bool   `mapstructure:"SEED_SAMPLE_DATA"`

	// CreditTTLDays is how long an active credit lives before the sweep expires it. 0 disables expiry.
	CreditTTLDays int `mapstructure:"CREDIT_TTL_DAYS"`

	VaultsTable       string `mapstructure:"DYNAMODB_VAULTS_TABLE_NAME"`
	CreditsTable      string `mapstructure:"DYNAMODB_CREDITS_TABLE_NAME"`
	TransactionsTable string `mapstructure:"DYNAMODB_TRANSACTIONS_TABLE_NAME"`
	ConnectionsTable  string `mapstructure:"DYNAMODB_CONNECTIONS_TABLE_NAME"`

	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisUsername string        `mapstructure:"REDIS_USERNAME"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	BalanceTTL    time.Duration `mapstructure:"BALANCE_CACHE_TTL"`

	SQSQueueURL          string `mapstructure:"SQS_QUEUE_URL"`
	WebsocketAPIEndpoint string `mapstructure:"WEBSOCKET_API_ENDPOINT"`

	KafkaBrokers         []string `mapstructure:"KAFKA_BROKERS"`
	KafkaGenerationTopic string   `mapstructure:"KAFKA_GENERATION_TOPIC"`
	KafkaGroupID         string   `mapstructure:"KAFKA_GROUP_ID"`

	RabbitMQURL        string `mapstructure:"RABBITMQ_URL"`
	InvoiceQueue       string `mapstructure:"INVOICE_QUEUE"`
	InvoiceResultQueue string `mapstructure:"INVOICE_RESULT_QUEUE"`
	WorkerConcurrency  int    `mapstructure:"WORKER_CONCURRENCY"`

	ExpiryJobSchedule        string `mapstructure:"EXPIRY_JOB_SCHEDULE"`
	TelemetryRefreshSchedule string `mapstructure:"TELEMETRY_REFRESH_SCHEDULE"`
	AuditJobSchedule         string `mapstructure:"AUDIT_JOB_SCHEDULE"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

var defaults = map[string]any{
	"HTTP_PORT":                  "8080",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"STORAGE_BACKEND":            BackendMemory,
	"TELEMETRY_BACKEND":          BackendMemory,
	"SEED_SAMPLE_DATA":           true,
	"CREDIT_TTL_DAYS":            365,
	"MONGO_DATABASE":             "energy_vault",
	"BALANCE_CACHE_TTL":          "5m",
	"KAFKA_GENERATION_TOPIC":     "energy.generation",
	"KAFKA_GROUP_ID":             "energy-vault",
	"INVOICE_QUEUE":              "invoices.paid",
	"INVOICE_RESULT_QUEUE":       "invoices.credits",
	"WORKER_CONCURRENCY":         5,
	"EXPIRY_JOB_SCHEDULE":        "@hourly",
	"TELEMETRY_REFRESH_SCHEDULE": "@every 30s",
	"AUDIT_JOB_SCHEDULE":         "@daily",
	"CORS_ALLOWED_ORIGINS":       "*",
	"OTEL_SERVICE_NAME":          "energy-vault",
}

var bound = []string{
	"DYNAMODB_VAULTS_TABLE_NAME",
	"DYNAMODB_CREDITS_TABLE_NAME",
	"DYNAMODB_TRANSACTIONS_TABLE_NAME",
	"DYNAMODB_CONNECTIONS_TABLE_NAME",
	"DATABASE_URL",
	"MONGO_URI",
	"REDIS_ADDR",
	"REDIS_USERNAME",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"SQS_QUEUE_URL",
	"WEBSOCKET_API_ENDPOINT",
	"KAFKA_BROKERS",
	"RABBITMQ_URL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
}

// LoadConfig reads .env when present, then environment variables over the defaults.
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	for key, value := range defaults {
		viper.SetDefault(key, value)
		_ = viper.BindEnv(key)
	}
	for _, key := range bound {
		_ = viper.BindEnv(key)
	}
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.VaultsTable == "" || c.CreditsTable == "" || c.TransactionsTable == "" {
			errs = append(errs, errors.New("dynamodb storage requires DYNAMODB_VAULTS_TABLE_NAME, DYNAMODB_CREDITS_TABLE_NAME and DYNAMODB_TRANSACTIONS_TABLE_NAME"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("postgres storage requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.TelemetryBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("mongo telemetry requires MONGO_URI"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TELEMETRY_BACKEND %q", c.TelemetryBackend))
	}

	if c.CreditTTLDays < 0 {
		errs = append(errs, fmt.Errorf("CREDIT_TTL_DAYS must not be negative, got %d", c.CreditTTLDays))
	}
	if c.WorkerConcurrency < 1 {
		errs = append(errs, fmt.Errorf("WORKER_CONCURRENCY must be at least 1, got %d", c.WorkerConcurrency))
	}
	return errors.Join(errs...)
}

// CreditTTL is the credit lifetime; zero means credits never expire.
func (c *Config) CreditTTL() time.Duration {
	return time.Duration(c.CreditTTLDays) * 24 * time.Hour
}

// ExpiryCutoff returns the issue time before which active credits expire, and false when expiry is disabled.
func (c *Config) ExpiryCutoff(now time.Time) (time.Time, bool) {
	if c.CreditTTLDays == 0 {
		return time.Time{}, false
	}
	return now.Add(-c.CreditTTL()), true
}

// splitList normalises comma separated values that arrive as a single element.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
