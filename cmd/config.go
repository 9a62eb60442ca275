package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	Storage  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret     string
	JWTTTL        time.Duration
	AdminEmail    string
	AdminPassword string

	KafkaBrokers           []string
	KafkaOrderChangedTopic string

	FanoutRelayEnabled bool
	FanoutRelayChannel string
	FanoutBuffer       int

	StatsSchedule string

	LogLevel  slog.Level
	LogFormat string
}

// DSN returns the PostgreSQL connection string for GORM and the relay listener.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// LoadConfig reads configuration in order: .env (if present) → environment → flags.
func LoadConfig(args []string) (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load(".env")

	var parseErrs []error
	cfg := Config{
		HTTPPort: env("HTTP_PORT", "8080"),
		Storage:  env("STORAGE", StoragePostgres),

		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "fulfillment"),
		DBSslMode:  env("DB_SSLMODE", "disable"),

		JWTSecret:     env("JWT_SECRET", ""),
		JWTTTL:        parse(&parseErrs, "JWT_TTL", 24*time.Hour, time.ParseDuration),
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		KafkaBrokers:           list(env("KAFKA_BROKERS", "")),
		KafkaOrderChangedTopic: env("KAFKA_ORDER_CHANGED_TOPIC", "orders.changed"),

		FanoutRelayEnabled: parse(&parseErrs, "FANOUT_RELAY_ENABLED", false, strconv.ParseBool),
		FanoutRelayChannel: env("FANOUT_RELAY_CHANNEL", "fanout"),
		FanoutBuffer:       parse(&parseErrs, "FANOUT_BUFFER", 64, strconv.Atoi),

		StatsSchedule: env("STATS_SCHEDULE", "*/15 * * * * *"),

		LogLevel:  parse(&parseErrs, "LOG_LEVEL", slog.LevelInfo, parseLevel),
		LogFormat: env("LOG_FORMAT", "json"),
	}
	if err := errors.Join(parseErrs...); err != nil {
		return Config{}, err
	}

	flags := pflag.NewFlagSet("fulfillment", pflag.ContinueOnError)
	flags.StringVarP(&cfg.HTTPPort, "port", "p", cfg.HTTPPort, "port to listen on")
	flags.StringVar(&cfg.Storage, "storage", cfg.Storage, "order store: postgres or memory")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.HTTPPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT: %q", c.HTTPPort))
	}
	switch c.Storage {
	case StorageMemory:
		if c.FanoutRelayEnabled {
			errs = append(errs, errors.New("FANOUT_RELAY_ENABLED requires STORAGE=postgres"))
		}
	case StoragePostgres:
		if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
			errs = append(errs, errors.New("DB_HOST, DB_USER and DB_NAME are required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE: %q", c.Storage))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("invalid JWT_TTL: %s", c.JWTTTL))
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaOrderChangedTopic == "" {
		errs = append(errs, errors.New("KAFKA_ORDER_CHANGED_TOPIC is required with KAFKA_BROKERS"))
	}
	if c.FanoutBuffer <= 0 {
		errs = append(errs, fmt.Errorf("invalid FANOUT_BUFFER: %d", c.FanoutBuffer))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("invalid LOG_FORMAT: %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parse[T any](errs *[]error, key string, fallback T, parseFn func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := parseFn(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return parsed
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(s))
	return level, err
}

func list(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
