package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Google   GoogleConfig
	Places   PlacesConfig
	Profiles ProfilesConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	AccessSecret string
	Issuer       string
}

type GoogleConfig struct {
	MapsAPIKey   string
	GeminiAPIKey string
	GeminiModel  string
}

type PlacesConfig struct {
	Timeout     time.Duration
	Concurrency int
	CacheTTL    time.Duration
}

type ProfilesConfig struct {
	RetentionDays int
	AdHocTTLDays  int
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("JWT_ISSUER", "location-insights")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("PLACES_TIMEOUT", "8s")
	viper.SetDefault("PLACES_CONCURRENCY", 4)
	viper.SetDefault("PLACES_CACHE_TTL", "24h")
	viper.SetDefault("PROFILE_RETENTION_DAYS", 90)
	viper.SetDefault("ADHOC_TTL_DAYS", 30)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),

			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetString("REDIS_HOST") != "",
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			PoolSize: viper.GetInt("REDIS_POOL_SIZE"),
		},
		JWT: JWTConfig{
			AccessSecret: viper.GetString("JWT_ACCESS_SECRET"),
			Issuer:       viper.GetString("JWT_ISSUER"),
		},
		Google: GoogleConfig{
			MapsAPIKey:   viper.GetString("GOOGLE_MAPS_API_KEY"),
			GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
			GeminiModel:  viper.GetString("GEMINI_MODEL"),
		},
		Places: PlacesConfig{
			Timeout:     viper.GetDuration("PLACES_TIMEOUT"),
			Concurrency: viper.GetInt("PLACES_CONCURRENCY"),
			CacheTTL:    viper.GetDuration("PLACES_CACHE_TTL"),
		},
		Profiles: ProfilesConfig{
			RetentionDays: viper.GetInt("PROFILE_RETENTION_DAYS"),
			AdHocTTLDays:  viper.GetInt("ADHOC_TTL_DAYS"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT access secret is required")
	}
	if len(c.JWT.AccessSecret) < 32 {
		return fmt.Errorf("JWT access secret must be at least 32 characters")
	}
	if c.Places.Timeout <= 0 {
		return fmt.Errorf("places timeout must be positive")
	}
	if c.Places.Concurrency < 1 {
		return fmt.Errorf("places concurrency must be at least 1")
	}
	if c.Profiles.RetentionDays < 1 {
		return fmt.Errorf("profile retention must be at least 1 day")
	}
	if c.Profiles.AdHocTTLDays < 1 {
		return fmt.Errorf("ad-hoc profile TTL must be at least 1 day")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Retention returns how long inactive profiles are kept.
func (c *ProfilesConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// AdHocTTL returns how long an ad-hoc profile stays active without updates.
func (c *ProfilesConfig) AdHocTTL() time.Duration {
	return time.Duration(c.AdHocTTLDays) * 24 * time.Hour
}
