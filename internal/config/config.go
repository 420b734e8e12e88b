// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	Catalog     CatalogConfig
	Events      EventsConfig
	Admin       AdminConfig
	CORS        CORSConfig
	Log         LogConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver       string
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

// StorageConfig configures the remote image store. Empty credentials are
// allowed: uploads then fail cleanly instead of the process refusing to start.
type StorageConfig struct {
	Driver           string
	Region           string
	AccessKeyID      string
	SecretAccessKey  string
	Bucket           string
	CDNURL           string
	TransformBaseURL string
	UploadFolder     string
	NotificationURL  string
	Timeout          time.Duration
	MaxFileSize      int64
	MaxFiles         int
}

type CatalogConfig struct {
	TransformOnDetail bool
	TransformOnList   bool
	DefaultPageSize   int
}

type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

type AdminConfig struct {
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "clothing_store"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Storage: StorageConfig{
			Driver:           getEnv("STORAGE_DRIVER", "s3"),
			Region:           getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:           getEnv("AWS_S3_BUCKET", "clothing-store-assets"),
			CDNURL:           strings.TrimSuffix(getEnv("AWS_CLOUDFRONT_URL", ""), "/"),
			TransformBaseURL: strings.TrimSuffix(getEnv("IMAGE_TRANSFORM_BASE_URL", ""), "/"),
			UploadFolder:     getEnv("UPLOAD_FOLDER", "clothing-store"),
			NotificationURL:  getEnv("UPLOAD_NOTIFICATION_URL", ""),
			Timeout:          time.Duration(getEnvAsInt("STORAGE_TIMEOUT", 10)) * time.Second,
			MaxFileSize:      int64(getEnvAsInt("MAX_FILE_UPLOAD", 5*1024*1024)),
			MaxFiles:         getEnvAsInt("MAX_UPLOAD_FILES", 5),
		},
		Catalog: CatalogConfig{
			TransformOnDetail: getEnvAsBool("IMAGE_TRANSFORM_ON_DETAIL", true),
			TransformOnList:   getEnvAsBool("IMAGE_TRANSFORM_ON_LIST", false),
			DefaultPageSize:   getEnvAsInt("DEFAULT_PAGE_SIZE", 12),
		},
		Events: EventsConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "catalog.events"),
		},
		Admin: AdminConfig{
			JWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Database.Password == "" && c.Environment == "production" && c.Database.Driver == "postgres" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_UPLOAD must be positive, got %d", c.Storage.MaxFileSize)
	}

	if c.Storage.MaxFiles <= 0 {
		return fmt.Errorf("MAX_UPLOAD_FILES must be positive, got %d", c.Storage.MaxFiles)
	}

	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive")
	}

	if c.Catalog.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be positive, got %d", c.Catalog.DefaultPageSize)
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// HasStorageCredentials reports whether S3 credentials were supplied.
func (s StorageConfig) HasStorageCredentials() bool {
	return s.AccessKeyID != "" && s.SecretAccessKey != ""
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
