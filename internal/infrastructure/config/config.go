package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Storage StorageConfig
	OTLP    OTLPConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type APIConfig struct {
	Prefix     string
	CORSOrigin string
}

type StorageConfig struct {
	Driver string
	Mongo  MongoConfig
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type OTLPConfig struct {
	Endpoint    string
	ServiceName string
	Environment string
	Disabled    bool
}

type LogConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real env vars win.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		API: APIConfig{
			Prefix:     normalizePrefix(getEnv("API_PREFIX", "/api/v1")),
			CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:4321"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageMongo)),
			Mongo: MongoConfig{
				URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
				Database: getEnv("MONGODB_DATABASE", "product-catalog"),
				Timeout:  getDuration("MONGODB_TIMEOUT", 5*time.Second),
			},
		},
		OTLP: OTLPConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "products-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
			Disabled:    getBool("OTEL_SDK_DISABLED", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "debug"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// normalizePrefix turns "api/v1/" into "/api/v1". An empty or "/" prefix mounts at the root.
func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return "/" + prefix
}
