package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Rebalance RebalanceConfig
	Broker    BrokerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// RebalanceConfig holds the rebalance engine defaults.
type RebalanceConfig struct {
	// MaxOverinvestmentPercent caps how far beyond target a sleeve may be
	// overinvested when a preview does not supply its own value.
	MaxOverinvestmentPercent float64

	// RestrictionSweepSpec is the cron spec of the expired-restriction
	// sweep.
	RestrictionSweepSpec string
}

// BrokerConfig holds settings for the broker credential store.
type BrokerConfig struct {
	// FernetKey is the base64-encoded key encrypting the stored API key.
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	maxOverPct, err := getEnvFloat("REBALANCE_MAX_OVERINVESTMENT_PCT", 5.0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/rebalancer.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Rebalance: RebalanceConfig{
			MaxOverinvestmentPercent: maxOverPct,
			RestrictionSweepSpec:     getEnv("RESTRICTION_SWEEP_SPEC", "0 5 * * *"),
		},
		Broker: BrokerConfig{
			FernetKey: getEnv("BROKER_FERNET_KEY", ""),
		},
	}

	if config.Rebalance.MaxOverinvestmentPercent < 0 || config.Rebalance.MaxOverinvestmentPercent > 100 {
		return nil, fmt.Errorf("REBALANCE_MAX_OVERINVESTMENT_PCT must be between 0 and 100")
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
