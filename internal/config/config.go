package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"troopstats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Cache    CacheConfig
	Calendar CalendarConfig
	LogLevel string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	UIPort          string
	GinMode         string
	ShutdownTimeout time.Duration
}

// CacheConfig holds leaderboard cache settings. An empty RedisURL disables the cache.
type CacheConfig struct {
	RedisURL       string
	LeaderboardTTL time.Duration
}

// CalendarConfig decides which zone "today" is taken in
type CalendarConfig struct {
	Timezone string
	Location *time.Location
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load database configuration")
	}

	calendarConfig, err := loadCalendarConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load calendar configuration")
	}

	config := &Config{
		Database: *dbConfig,
		Server:   *loadServerConfig(),
		Cache:    *loadCacheConfig(),
		Calendar: *calendarConfig,
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	return &DatabaseConfig{
		URL:             url,
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AutoMigrate:     getEnvBoolOrDefault("DB_AUTO_MIGRATE", true),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		UIPort:          getEnvOrDefault("UI_PORT", "8081"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		LeaderboardTTL: getEnvDurationOrDefault("LEADERBOARD_TTL", 10*time.Minute),
	}
}

func loadCalendarConfig() (*CalendarConfig, error) {
	tz := getEnvOrDefault("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return &CalendarConfig{Timezone: tz, Location: loc}, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.UIPort == config.Server.Port {
		return errors.ConfigInvalid("UI_PORT must differ from PORT")
	}
	if config.Cache.LeaderboardTTL <= 0 {
		return errors.ConfigInvalid("LEADERBOARD_TTL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
