package config

import (
	"errors"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Server struct {
		Port        string
		GinMode     string
		LogLevel    string
		StorageType string
	}

	CORS struct {
		AllowOrigins string
		AllowMethods string
		AllowHeaders string
	}

	Auth struct {
		JWTSecret         string
		TokenTTL          time.Duration
		AdminPasswordHash string
		PublicBaseURL     string
	}

	// Redis is optional; without a URL party locks stay in-process
	Redis struct {
		URL     string
		LockTTL time.Duration
	}

	// MinIO is optional; without an endpoint seating charts are not published
	MinIO struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
	}
}

// Load loads configuration from environment variables
func Load() *Config {
	_ = godotenv.Load()

	config := &Config{}

	config.DB.Host = getEnv("DB_HOST", "localhost")
	config.DB.Port = getEnv("DB_PORT", "5432")
	config.DB.User = getEnv("DB_USER", "konkatsu")
	config.DB.Password = getEnv("DB_PASSWORD", "konkatsu_password")
	config.DB.Name = getEnv("DB_NAME", "konkatsu_db")
	config.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	config.Server.Port = getEnv("PORT", "8080")
	config.Server.GinMode = getEnv("GIN_MODE", "debug")
	config.Server.LogLevel = getEnv("LOG_LEVEL", "info")
	config.Server.StorageType = getEnv("STORAGE_TYPE", "postgres")

	config.CORS.AllowOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")
	config.CORS.AllowMethods = getEnv("CORS_ALLOW_METHODS", "GET,POST,PUT,PATCH,DELETE,HEAD,OPTIONS")
	config.CORS.AllowHeaders = getEnv("CORS_ALLOW_HEADERS", "Origin,Content-Length,Content-Type,Authorization")

	config.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	config.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", 12*time.Hour)
	config.Auth.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", "")
	config.Auth.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/")

	config.Redis.URL = getEnv("REDIS_URL", "")
	config.Redis.LockTTL = getEnvAsDuration("REDIS_LOCK_TTL", 30*time.Second)

	config.MinIO.Endpoint = getEnv("MINIO_ENDPOINT", "")
	config.MinIO.AccessKey = getEnv("MINIO_ACCESS_KEY", "")
	config.MinIO.SecretKey = getEnv("MINIO_SECRET_KEY", "")
	config.MinIO.Bucket = getEnv("MINIO_BUCKET", "seating")
	config.MinIO.UseSSL = getEnvAsBool("MINIO_USE_SSL", false)

	return config
}

// placeholderJWTSecrets are values copied from sample env files
var placeholderJWTSecrets = []string{"change-me", "changeme", "secret"}

// ErrInsecureJWTSecret is returned by Validate when JWT_SECRET is missing or a placeholder
var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set to a non-default value")

// Validate rejects settings the API must not start with
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || slices.Contains(placeholderJWTSecrets, strings.ToLower(secret)) {
		return ErrInsecureJWTSecret
	}
	return nil
}

// GetDatabaseURL returns the database connection URL
func (c *Config) GetDatabaseURL() string {
	return "postgres://" + c.DB.User + ":" + c.DB.Password + "@" + c.DB.Host + ":" + c.DB.Port + "/" + c.DB.Name + "?sslmode=" + c.DB.SSLMode
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
