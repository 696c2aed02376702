package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	// Record store
	DataDir      string
	StoreBackend string
	BadgerDir    string
	SQLitePath   string

	// Upstream gateways
	AIServiceURL    string
	IPFSAPIURL      string
	UpstreamTimeout time.Duration

	// Rate limiting
	RateLimitBackend       string
	RateLimitSweepInterval time.Duration
	RedisAddr              string
	RedisPort              string
	RedisPassword          string

	CORSAllowOrigins []string
	// Proxies whose X-Forwarded-For is believed. Empty means the socket peer
	// is the client.
	TrustedProxies []string

	// Log configuration
	LogLevel      string
	LogFilename   string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
	LogCompress   bool
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

// ModelsFile is the snapshot path used by the file backend for model records.
func (c *Config) ModelsFile() string {
	return filepath.Join(c.DataDir, "models.json")
}

// TransactionsFile is the snapshot path used by the file backend for transaction records.
func (c *Config) TransactionsFile() string {
	return filepath.Join(c.DataDir, "transactions.json")
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Port:    getEnv("PORT", "3001"),
		GinMode: getEnv("GIN_MODE", "release"),

		DataDir:      dataDir,
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "file")),
		BadgerDir:    getEnv("BADGER_DIR", filepath.Join(dataDir, "badger")),
		SQLitePath:   getEnv("SQLITE_PATH", filepath.Join(dataDir, "records.db")),

		AIServiceURL:    getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		IPFSAPIURL:      getEnv("IPFS_API_URL", "http://localhost:5001"),
		UpstreamTimeout: time.Duration(getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 120)) * time.Second,

		RateLimitBackend:       strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		RateLimitSweepInterval: getEnvAsDuration("RATE_LIMIT_SWEEP_INTERVAL", time.Minute),
		RedisAddr:              getEnv("REDIS_HOST", "localhost"),
		RedisPort:              getEnv("REDIS_PORT", "6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),

		CORSAllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		TrustedProxies:   getEnvAsList("TRUSTED_PROXIES", nil),

		LogLevel:      getEnv("LOG_LEVEL", "INFO"),
		LogFilename:   getEnv("LOG_FILENAME", "logs/app.log"),
		LogMaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvAsInt("LOG_MAX_AGE", 28),
		LogCompress:   getEnvAsBool("LOG_COMPRESS", true),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
