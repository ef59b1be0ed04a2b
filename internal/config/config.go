package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Payment  PaymentConfig
	Store    StoreConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	StaticDir    string
}

// GatewayConfig holds Mercado Pago gateway configuration.
type GatewayConfig struct {
	AccessToken     string
	BaseURL         string
	Timeout         time.Duration
	NotificationURL string
	PayerEmail      string
	PayerFirstName  string
	PayerLastName   string
	Sandbox         bool
}

// PaymentConfig holds charge lifecycle configuration.
type PaymentConfig struct {
	// ExpirationWindow is how long a charge stays payable before the
	// service reclassifies it as expired.
	ExpirationWindow time.Duration
}

// StoreConfig selects and configures the payment store backend.
type StoreConfig struct {
	Backend  string
	Database DatabaseConfig
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			StaticDir:    getEnv("STATIC_DIR", ""),
		},
		Gateway: GatewayConfig{
			AccessToken:     getEnv("MP_ACCESS_TOKEN", ""),
			BaseURL:         getEnv("MP_BASE_URL", "https://api.mercadopago.com"),
			Timeout:         getDurationEnv("MP_TIMEOUT", 15*time.Second),
			NotificationURL: getEnv("MP_NOTIFICATION_URL", ""),
			PayerEmail:      getEnv("MP_PAYER_EMAIL", "teste@email.com"),
			PayerFirstName:  getEnv("MP_PAYER_FIRST_NAME", "Fulano"),
			PayerLastName:   getEnv("MP_PAYER_LAST_NAME", "da Silva"),
			Sandbox:         getBoolEnv("GATEWAY_SANDBOX", false),
		},
		Payment: PaymentConfig{
			ExpirationWindow: getDurationEnv("PAYMENT_EXPIRATION_WINDOW", 7*time.Minute),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", StoreMemory),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				DBName:   getEnv("DB_NAME", "pixcharge"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "pix-charge-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

// Validate enforces the startup policy: the service refuses to start without a
// gateway access token unless sandbox mode is explicitly enabled.
func (c *Config) Validate() error {
	if c.Gateway.AccessToken == "" && !c.Gateway.Sandbox {
		return errors.New("MP_ACCESS_TOKEN is required (set GATEWAY_SANDBOX=true to run without a gateway)")
	}
	if c.Store.Backend != StoreMemory && c.Store.Backend != StorePostgres {
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Payment.ExpirationWindow <= 0 {
		return errors.New("PAYMENT_EXPIRATION_WINDOW must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
