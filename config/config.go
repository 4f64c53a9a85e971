package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/qtota/offer-service/internal/auth"
	"github.com/qtota/offer-service/internal/discovery"
	"github.com/qtota/offer-service/internal/snapshot"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxInFlight  int           `mapstructure:"max_in_flight"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AuthConfig holds token signing configuration
type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// DiscoveryConfig holds the discovery engine settings
type DiscoveryConfig struct {
	OfferDistanceMeters float64 `mapstructure:"offer_distance_meters"`
	StoreDistanceMeters float64 `mapstructure:"store_distance_meters"`
	DefaultPageSize     int     `mapstructure:"default_page_size"`
	MaxPageSize         int     `mapstructure:"max_page_size"`
	HomeProducts        int     `mapstructure:"home_products"`
	HomeStores          int     `mapstructure:"home_stores"`
	ReferenceScope      string  `mapstructure:"reference_scope"`
}

// CacheConfig holds the snapshot cache settings
type CacheConfig struct {
	LoadTimeout   time.Duration `mapstructure:"load_timeout"`
	TTL           time.Duration `mapstructure:"ttl"`
	RefreshJitter time.Duration `mapstructure:"refresh_jitter"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Load .env file
	if err := loadEnvFile(); err != nil {
		// .env is optional, log but don't fail
		log.Warn().Err(err).Msg("Warning: .env file not loaded")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvPrefix("OFFER_SERVICE")

	// Bind env keys for nested config
	bindEnvVars(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// loadEnvFile loads a .env file from the usual locations
func loadEnvFile() error {
	envPaths := []string{".", "./config"}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			value = strings.Trim(value, "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	// Auth
	v.BindEnv("auth.secret", "JWT_SECRET")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_in_flight", 64)

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 5)
	v.SetDefault("database.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)

	// Auth defaults
	v.SetDefault("auth.issuer", "offer-service")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 7*24*time.Hour)

	// Discovery defaults
	v.SetDefault("discovery.offer_distance_meters", 10000.0)
	v.SetDefault("discovery.store_distance_meters", 5000.0)
	v.SetDefault("discovery.default_page_size", 5)
	v.SetDefault("discovery.max_page_size", 25)
	v.SetDefault("discovery.home_products", 5)
	v.SetDefault("discovery.home_stores", 10)
	v.SetDefault("discovery.reference_scope", "global")

	// Cache defaults
	v.SetDefault("cache.load_timeout", 30*time.Second)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.refresh_jitter", 30*time.Second)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst_size", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// GetDatabaseURL returns the database URL from config or environment
func GetDatabaseURL() string {
	if cfg := Get(); cfg != nil && cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	return os.Getenv("DATABASE_URL")
}

// ToEngineConfig converts the discovery section to the engine configuration.
func (c DiscoveryConfig) ToEngineConfig() *discovery.Config {
	scope := discovery.ReferenceGlobal
	if c.ReferenceScope == string(discovery.ReferenceNearby) {
		scope = discovery.ReferenceNearby
	}
	return &discovery.Config{
		OfferDistanceMeters: c.OfferDistanceMeters,
		StoreDistanceMeters: c.StoreDistanceMeters,
		DefaultPageSize:     c.DefaultPageSize,
		MaxPageSize:         c.MaxPageSize,
		HomeProducts:        c.HomeProducts,
		HomeStores:          c.HomeStores,
		ReferenceScope:      scope,
	}
}

// ToCacheConfig converts the cache section to the snapshot cache configuration.
func (c CacheConfig) ToCacheConfig() *snapshot.Config {
	return &snapshot.Config{
		LoadTimeout:   c.LoadTimeout,
		TTL:           c.TTL,
		RefreshJitter: c.RefreshJitter,
	}
}

// ToTokenConfig converts the auth section to the token manager configuration.
func (c AuthConfig) ToTokenConfig() *auth.Config {
	return &auth.Config{
		Secret:     c.Secret,
		Issuer:     c.Issuer,
		AccessTTL:  c.AccessTTL,
		RefreshTTL: c.RefreshTTL,
	}
}
