package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the engine configuration.
type Config struct {
	LogLevel  string
	LogFormat string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// CatalogPath points at the JSON file describing cosmetics and
	// crate tiers.
	CatalogPath string

	MaxBalance     int
	WelcomeBalance int

	BalanceCacheSize int
	BalanceCacheTTL  time.Duration

	WorkerCount     int
	WorkerQueueSize int

	CacheEvictionInterval  time.Duration
	RentalSweepInterval    time.Duration
	OfflineCleanupInterval time.Duration
	StatsFlushInterval     time.Duration
}

// Load loads the configuration from environment variables.
func Load() (*Config, error) {
	// Load .env if present; real env vars are fine too.
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBName:      getEnv("DB_NAME", "cosmetics"),
		CatalogPath: getEnv("CATALOG_PATH", "config/catalog.json"),
	}

	var err error
	if cfg.MaxBalance, err = getEnvInt("MAX_BALANCE", DefaultMaxBalance); err != nil {
		return nil, err
	}
	if cfg.WelcomeBalance, err = getEnvInt("WELCOME_BALANCE", DefaultWelcomeBalance); err != nil {
		return nil, err
	}
	if cfg.BalanceCacheSize, err = getEnvInt("BALANCE_CACHE_SIZE", DefaultBalanceCacheSize); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", DefaultWorkerCount); err != nil {
		return nil, err
	}
	if cfg.WorkerQueueSize, err = getEnvInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize); err != nil {
		return nil, err
	}

	if cfg.BalanceCacheTTL, err = getEnvDuration("BALANCE_CACHE_TTL", DefaultBalanceCacheTTL); err != nil {
		return nil, err
	}
	if cfg.CacheEvictionInterval, err = getEnvDuration("CACHE_EVICTION_INTERVAL", DefaultCacheEvictionInterval); err != nil {
		return nil, err
	}
	if cfg.RentalSweepInterval, err = getEnvDuration("RENTAL_SWEEP_INTERVAL", DefaultRentalSweepInterval); err != nil {
		return nil, err
	}
	if cfg.OfflineCleanupInterval, err = getEnvDuration("OFFLINE_CLEANUP_INTERVAL", DefaultOfflineCleanupInterval); err != nil {
		return nil, err
	}
	if cfg.StatsFlushInterval, err = getEnvDuration("STATS_FLUSH_INTERVAL", DefaultStatsFlushInterval); err != nil {
		return nil, err
	}

	if cfg.MaxBalance <= 0 {
		return nil, fmt.Errorf("MAX_BALANCE must be positive, got %d", cfg.MaxBalance)
	}
	if cfg.WelcomeBalance < 0 || cfg.WelcomeBalance > cfg.MaxBalance {
		return nil, fmt.Errorf("WELCOME_BALANCE must be within [0, MAX_BALANCE], got %d", cfg.WelcomeBalance)
	}

	return cfg, nil
}

// DBConnString returns the PostgreSQL connection string.
func (c *Config) DBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return d, nil
}
