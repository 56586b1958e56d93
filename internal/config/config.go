package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/satonic/payperview-api/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `json:"server" envPrefix:"SERVER_"`
	Database DatabaseConfig `json:"database" envPrefix:"DB_"`
	Auth     AuthConfig     `json:"auth"`
	Oracle   OracleConfig   `json:"oracle" envPrefix:"ORACLE_"`
	Viewing  ViewingConfig  `json:"viewing" envPrefix:"VIEWING_"`
	Log      LogConfig      `json:"log" envPrefix:"LOG_"`
}

// ServerConfig contains server related configurations
type ServerConfig struct {
	Port           int      `json:"port" env:"PORT"`
	AllowedOrigins []string `json:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// DatabaseConfig contains database related configurations.
// With Enabled false the service keeps its state in memory only.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled" env:"ENABLED"`
	Driver   string `json:"driver" env:"DRIVER"`
	Host     string `json:"host" env:"HOST"`
	Port     int    `json:"port" env:"PORT"`
	User     string `json:"user" env:"USER"`
	Password string `json:"password" env:"PASSWORD"`
	Name     string `json:"name" env:"NAME"`
}

// AuthConfig contains authentication related configurations
type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiration int    `json:"jwt_expiration" env:"JWT_EXPIRATION"` // in hours
}

// OracleConfig contains the exchange-rate feed configuration.
// Without a URL the feed answers StaticPrice.
type OracleConfig struct {
	URL            string        `json:"url" env:"URL"`
	Timeout        time.Duration `json:"timeout" env:"TIMEOUT"`
	StaticPrice    int64         `json:"static_price" env:"STATIC_PRICE"`
	Decimals       int32         `json:"decimals" env:"DECIMALS"`
	NativeDecimals int32         `json:"native_decimals" env:"NATIVE_DECIMALS"`
	FiatDecimals   int32         `json:"fiat_decimals" env:"FIAT_DECIMALS"`
	MaxAge         time.Duration `json:"max_age" env:"MAX_AGE"` // zero disables the staleness check
}

// ViewingConfig contains the terms applied by mintWithDefaultParams
type ViewingConfig struct {
	DefaultDuration int64 `json:"default_duration" env:"DEFAULT_DURATION"` // in seconds
	DefaultPrice    int64 `json:"default_price" env:"DEFAULT_PRICE"`       // in fiat minor units
}

// LogConfig contains logging configurations
type LogConfig struct {
	Level  string `json:"level" env:"LEVEL"`
	Format string `json:"format" env:"FORMAT"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			Host:   "localhost",
			Port:   5432,
			Name:   "payperview",
		},
		Auth: AuthConfig{
			JWTExpiration: 24,
		},
		Oracle: OracleConfig{
			Timeout:        10 * time.Second,
			StaticPrice:    1669820789,
			Decimals:       8,
			NativeDecimals: 9,
			FiatDecimals:   2,
		},
		Viewing: ViewingConfig{
			DefaultDuration: 7 * 24 * 60 * 60,
			DefaultPrice:    100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads the configuration from file and environment
func Load() (*Config, error) {
	cfg := Default()

	// Look for config file
	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = filepath.Join("configs", "config.json")
	}

	if _, err := os.Stat(configFile); err == nil {
		file, err := os.Open(configFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", configFile, err)
		}
	}

	// Override with environment variables if present
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		// Generate a random JWT secret if not provided
		randomBytes := make([]byte, 32)
		if _, err := rand.Read(randomBytes); err != nil {
			return nil, err
		}
		cfg.Auth.JWTSecret = base64.StdEncoding.EncodeToString(randomBytes)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values the service cannot start without
func (c *Config) Validate() error {
	if c.Viewing.DefaultDuration <= 0 || c.Viewing.DefaultPrice <= 0 {
		return fmt.Errorf("viewing defaults must be positive")
	}
	if c.Viewing.DefaultDuration > models.MaxViewDuration {
		return fmt.Errorf("default view duration exceeds %d seconds", models.MaxViewDuration)
	}
	if c.Oracle.URL == "" && c.Oracle.StaticPrice <= 0 {
		return fmt.Errorf("oracle needs a url or a positive static price")
	}
	if c.Oracle.Decimals+c.Oracle.NativeDecimals < c.Oracle.FiatDecimals {
		return fmt.Errorf("oracle precision yields a fractional scale")
	}
	return nil
}

// DSN builds the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name,
	)
}
