package config

import (
	"os"
	"strconv"
	"time"

	"github.com/saransh1220/snaplabel/internal/shared/infrastructure/database"
)

// Config holds all configuration for the API server
type Config struct {
	Server      ServerConfig
	Database    database.PostgresConfig
	Redis       database.RedisConfig
	JWT         JWTConfig
	FileStorage FileStorageConfig
	Analyzer    AnalyzerConfig
	Store       StoreConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins string
	PublicURL      string
	MigrationsPath string
}

// JWTConfig holds JWT configuration. An empty secret leaves the API open.
type JWTConfig struct {
	Secret string
}

// FileStorageConfig holds file storage configuration
type FileStorageConfig struct {
	UseS3            bool
	S3Region         string
	S3Endpoint       string
	S3PublicEndpoint string
	S3AccessKey      string
	S3SecretKey      string
	S3BucketName     string
	S3UseSSL         bool
	LocalPath        string
	LocalSigningKey  string
	UploadURLExpiry  time.Duration
}

// AnalyzerConfig selects and tunes the label detector
type AnalyzerConfig struct {
	Provider      string
	Region        string
	MaxLabels     int32
	MinConfidence float32
	VisionBaseURL string
	VisionAPIKey  string
	VisionModel   string
}

// StoreConfig selects where analyses are persisted
type StoreConfig struct {
	Backend        string
	TableName      string
	DynamoEndpoint string
	Region         string
	CacheEnabled   bool
	CacheTTL       time.Duration
}

// Load reads configuration from environment variables
func Load() Config {
	port := getEnv("PORT", "8080")
	return Config{
		Server: ServerConfig{
			Port:           port,
			AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
			PublicURL:      getEnv("PUBLIC_URL", "http://localhost:"+port),
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""),
		},
		Database: database.PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "snaplabel"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: database.RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		FileStorage: FileStorageConfig{
			UseS3:            getEnv("USE_S3", "true") == "true",
			S3Region:         getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:       getEnv("S3_ENDPOINT", ""),
			S3PublicEndpoint: getEnv("S3_PUBLIC_ENDPOINT", getEnv("S3_ENDPOINT", "")),
			S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
			S3BucketName:     getEnv("UPLOAD_BUCKET", getEnv("S3_BUCKET", "")),
			S3UseSSL:         getEnv("S3_USE_SSL", "true") == "true",
			LocalPath:        getEnv("LOCAL_STORAGE_PATH", "./uploads"),
			LocalSigningKey:  getEnv("LOCAL_SIGNING_KEY", ""),
			UploadURLExpiry:  parseDuration(getEnv("UPLOAD_URL_EXPIRY", "5m"), 5*time.Minute),
		},
		Analyzer: AnalyzerConfig{
			Provider:      getEnv("ANALYZER_PROVIDER", "rekognition"),
			Region:        getEnv("AWS_REGION", getEnv("S3_REGION", "us-east-1")),
			MaxLabels:     int32(parseInt(getEnv("ANALYZER_MAX_LABELS", "10"), 10)),
			MinConfidence: float32(parseFloat(getEnv("ANALYZER_MIN_CONFIDENCE", "70"), 70)),
			VisionBaseURL: getEnv("VISION_BASE_URL", ""),
			VisionAPIKey:  getEnv("VISION_API_KEY", ""),
			VisionModel:   getEnv("VISION_MODEL", "gpt-4o-mini"),
		},
		Store: StoreConfig{
			Backend:        getEnv("ANALYSIS_STORE", "postgres"),
			TableName:      getEnv("TABLE_NAME", "snaplabel-analyses"),
			DynamoEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
			Region:         getEnv("AWS_REGION", getEnv("S3_REGION", "us-east-1")),
			CacheEnabled:   getEnv("RESULT_CACHE_ENABLED", "true") == "true",
			CacheTTL:       parseDuration(getEnv("RESULT_CACHE_TTL", "10m"), 10*time.Minute),
		},
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration string or returns a default value
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	return defaultValue
}

func parseFloat(value string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return defaultValue
}
