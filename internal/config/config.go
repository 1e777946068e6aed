package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/vytor/wordflow/internal/srs"
	"github.com/vytor/wordflow/internal/validation"
)

type Config struct {
	Addr                  string        `env:"ADDR" validate:"required"`
	DBPath                string        `env:"DB_PATH" validate:"required"`
	LogLevel              string        `env:"LOG_LEVEL" validate:"required,oneof=DEBUG INFO WARN WARNING ERROR debug info warn warning error"`
	Timezone              string        `env:"TIMEZONE" validate:"required,timezone"`
	SchedulerConfigPath   string        `env:"SCHEDULER_CONFIG" validate:"omitempty,file"`
	SessionMaxSoloRepeats int           `env:"SESSION_MAX_SOLO_REPEATS" validate:"gte=1,lte=100"`
	SessionTTL            time.Duration `env:"SESSION_TTL" validate:"gte=1s"`
	SessionSeed           uint64        `env:"SESSION_SEED"`
	StatsWorkerCount      int           `env:"STATS_WORKER_COUNT" validate:"gte=1,lte=64"`
	StatsQueueSize        int           `env:"STATS_QUEUE_SIZE" validate:"gte=1"`
	LeechThreshold        int           `env:"LEECH_THRESHOLD" validate:"gte=1"`
	LearnedEasyThreshold  int           `env:"LEARNED_EASY_THRESHOLD" validate:"gte=1"`
	StoreRetryAttempts    uint          `env:"STORE_RETRY_ATTEMPTS" validate:"gte=1,lte=10"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                  envOr("ADDR", ":8080"),
		DBPath:                envOr("DB_PATH", "file:wordflow.db"),
		LogLevel:              envOr("LOG_LEVEL", "INFO"),
		Timezone:              envOr("TIMEZONE", "UTC"),
		SchedulerConfigPath:   envOr("SCHEDULER_CONFIG", ""),
		SessionMaxSoloRepeats: envIntOr("SESSION_MAX_SOLO_REPEATS", 10),
		SessionTTL:            envDurationOr("SESSION_TTL", 2*time.Hour),
		SessionSeed:           uint64(envIntOr("SESSION_SEED", 0)),
		StatsWorkerCount:      envIntOr("STATS_WORKER_COUNT", 2),
		StatsQueueSize:        envIntOr("STATS_QUEUE_SIZE", 256),
		LeechThreshold:        envIntOr("LEECH_THRESHOLD", 8),
		LearnedEasyThreshold:  envIntOr("LEARNED_EASY_THRESHOLD", 3),
		StoreRetryAttempts:    uint(envIntOr("STORE_RETRY_ATTEMPTS", 3)),
	}
}

// Validate checks every field and reports all failures at once.
func (c Config) Validate() error {
	v, err := validation.New("env")
	if err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Location resolves Timezone, the zone used for every calendar-day boundary.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Scheduler returns the scheduling constants, read from SchedulerConfigPath
// when it is set.
func (c Config) Scheduler() (srs.Config, error) {
	if c.SchedulerConfigPath == "" {
		return srs.DefaultConfig(), nil
	}
	return srs.LoadConfig(c.SchedulerConfigPath)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
