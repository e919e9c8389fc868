// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Feed        FeedConfig
	Sync        SyncConfig
	Verifier    VerifierConfig
	Proxy       ProxyConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// FeedConfig points at the upstream deal feed.
type FeedConfig struct {
	URL            string
	TimeoutSeconds int
}

// SyncConfig carries the sync-deals tunables: the cron shared secret and the
// two-tier retention policy (always keep the newest RetentionFloor rows,
// age out the rest after RetentionDays).
type SyncConfig struct {
	Secret         string
	RetentionFloor int
	RetentionDays  int
}

type VerifierConfig struct {
	MaxRetries           int
	BatchSize            int
	ManualBatchSize      int
	HeadTimeoutSeconds   int
	ScrapeTimeoutSeconds int
	MinImageBytes        int64
}

type ProxyConfig struct {
	FetchTimeoutSeconds int
	MaxURLLength        int
	UserAgent           string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "relay_station"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Feed: FeedConfig{
			URL:            getEnv("DEAL_FEED_URL", "https://api.dealfeed.example.com/v1/deals"),
			TimeoutSeconds: getEnvAsInt("DEAL_FEED_TIMEOUT", 30),
		},
		Sync: SyncConfig{
			Secret:         getEnv("SYNC_SECRET", ""),
			RetentionFloor: getEnvAsInt("SYNC_RETENTION_FLOOR", 50),
			RetentionDays:  getEnvAsInt("SYNC_RETENTION_DAYS", 4),
		},
		Verifier: VerifierConfig{
			MaxRetries:           getEnvAsInt("IMAGE_MAX_RETRIES", 3),
			BatchSize:            getEnvAsInt("IMAGE_BATCH_SIZE", 10),
			ManualBatchSize:      getEnvAsInt("IMAGE_MANUAL_BATCH_SIZE", 20),
			HeadTimeoutSeconds:   getEnvAsInt("IMAGE_HEAD_TIMEOUT", 5),
			ScrapeTimeoutSeconds: getEnvAsInt("IMAGE_SCRAPE_TIMEOUT", 8),
			MinImageBytes:        int64(getEnvAsInt("IMAGE_MIN_BYTES", 1000)),
		},
		Proxy: ProxyConfig{
			FetchTimeoutSeconds: getEnvAsInt("PROXY_FETCH_TIMEOUT", 10),
			MaxURLLength:        getEnvAsInt("PROXY_MAX_URL_LENGTH", 2048),
			UserAgent: getEnv("PROXY_USER_AGENT",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Sync.Secret == "" && c.Environment == "production" {
		return fmt.Errorf("sync secret is required in production")
	}

	if c.Sync.RetentionFloor < 0 || c.Sync.RetentionDays < 1 {
		return fmt.Errorf("invalid retention policy: floor=%d days=%d", c.Sync.RetentionFloor, c.Sync.RetentionDays)
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

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
