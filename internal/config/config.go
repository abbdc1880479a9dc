package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Connect  ConnectConfig

	// NetworksFile optionally points at a YAML file with extra
	// supported networks on top of the built-in table
	NetworksFile string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ProviderConfig holds wallet provider bridge configuration
type ProviderConfig struct {
	// Endpoint is the JSON-RPC endpoint of the wallet provider bridge.
	// Empty means no provider; connection attempts then fail with a
	// no-provider error until one is configured.
	Endpoint string

	// RequestTimeout bounds individual provider requests
	RequestTimeout time.Duration
}

// ConnectConfig holds the connection policy for the orchestrator
type ConnectConfig struct {
	// MaxRetries is the number of automatic retries after a failed
	// manual connect
	MaxRetries int

	// RetryBaseDelay scales the linear retry schedule:
	// delay = RetryBaseDelay * (retryCount + 1)
	RetryBaseDelay time.Duration

	// ProgressInterval is how often the cosmetic progress value ticks
	// toward 90 while a connect request is in flight
	ProgressInterval time.Duration

	// ProgressResetDelay is how long the final progress value lingers
	// before resetting to 0
	ProgressResetDelay time.Duration

	// AccountPollInterval is how often the orchestrator checks the
	// provider for wallet-side account loss
	AccountPollInterval time.Duration

	// ChainPollInterval is the reconciler's polling cadence on
	// transports without chain-change notifications
	ChainPollInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "walletbridge"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Provider: ProviderConfig{
			Endpoint:       getEnv("PROVIDER_ENDPOINT", ""),
			RequestTimeout: getEnvMillis("PROVIDER_REQUEST_TIMEOUT_MS", 30_000),
		},
		Connect: ConnectConfig{
			MaxRetries:          getEnvInt("CONNECT_MAX_RETRIES", 3),
			RetryBaseDelay:      getEnvMillis("CONNECT_RETRY_BASE_MS", 5_000),
			ProgressInterval:    getEnvMillis("CONNECT_PROGRESS_TICK_MS", 500),
			ProgressResetDelay:  getEnvMillis("CONNECT_PROGRESS_RESET_MS", 500),
			AccountPollInterval: getEnvMillis("CONNECT_ACCOUNT_POLL_MS", 5_000),
			ChainPollInterval:   getEnvMillis("NETWORK_CHAIN_POLL_MS", 10_000),
		},
		NetworksFile: getEnv("NETWORKS_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Connect.MaxRetries < 0 {
		return fmt.Errorf("invalid max retries: %d", c.Connect.MaxRetries)
	}

	if c.Connect.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}

	if c.Connect.ProgressInterval <= 0 || c.Connect.ProgressResetDelay <= 0 {
		return fmt.Errorf("progress intervals must be positive")
	}

	if c.Connect.AccountPollInterval <= 0 || c.Connect.ChainPollInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvInt(key, defaultValue)) * time.Millisecond
}
