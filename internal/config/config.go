package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	dbUserEmptyError    = errors.New("DB User is Empty")
	dbNameEmptyError    = errors.New("DB Name is Empty")
	jwtSecretEmptyError = errors.New("JWT secret is Empty")
	invalidValueError   = errors.New("invalid config value")
)

const (
	StorageProviderMinio = "minio"
	StorageProviderAzure = "azure"
)

type AppConfig struct {
	Env            string
	Port           string
	CorsOrigins    []string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	Password string
	User     string
	URL      string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	GoogleClientID string
	GoogleJWKSURL  string
}

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Location        string
	UseSSL          bool
}

type AzureBlobConfig struct {
	Endpoint    string
	AccountName string
	AccountKey  string
	Container   string
}

type StorageConfig struct {
	Provider     string
	MaxImageSize int64
	BasePath     string
	Minio        MinioConfig
	Azure        AzureBlobConfig
}

type RateLimitConfig struct {
	Points int
	Window time.Duration
}

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

func LoadConfig() (*Config, error) {
	// .env не обязателен, в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	c := &Config{
		App: AppConfig{
			Env:            getEnv("APP_ENV", "dev"),
			Port:           getEnv("APP_PORT", "8080"),
			CorsOrigins:    splitList(getEnv("APP_CORS_ORIGINS", "*")),
			RequestTimeout: getDuration("APP_REQUEST_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DATABASE_HOST", "localhost"),
			Port:     getEnv("DATABASE_PORT", "5432"),
			Name:     getEnv("DATABASE_NAME", "postgres"),
			Password: getEnv("DATABASE_PASSWORD", "postgres"),
			User:     getEnv("DATABASE_USER", "postgres"),
			URL:      os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			TokenTTL:       getDuration("JWT_TTL", 24*time.Hour),
			GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleJWKSURL:  getEnv("GOOGLE_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),
		},
		Storage: StorageConfig{
			Provider:     strings.ToLower(getEnv("STORAGE_PROVIDER", StorageProviderMinio)),
			MaxImageSize: int64(getInt("STORAGE_MAX_IMAGE_SIZE", 5<<20)),
			BasePath:     getEnv("STORAGE_BASE_PATH", ""),
			Minio: MinioConfig{
				Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("MINIO_SECRET_ACCESS_KEY"),
				Bucket:          getEnv("MINIO_BUCKET", "ticketboard"),
				Location:        getEnv("MINIO_LOCATION", "us-east-1"),
				UseSSL:          getBool("MINIO_USE_SSL", false),
			},
			Azure: AzureBlobConfig{
				Endpoint:    os.Getenv("AZURE_BLOB_ENDPOINT"),
				AccountName: os.Getenv("AZURE_BLOB_ACCOUNT_NAME"),
				AccountKey:  os.Getenv("AZURE_BLOB_ACCOUNT_KEY"),
				Container:   getEnv("AZURE_BLOB_CONTAINER", "ticketboard"),
			},
		},
		RateLimit: RateLimitConfig{
			Points: getInt("RATE_LIMIT_POINTS", 60),
			Window: getDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if err := makeDbUrl(c); err != nil {
		return nil, err
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	return c, nil
}

func validate(c *Config) error {
	if c.Auth.JWTSecret == "" {
		return jwtSecretEmptyError
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: JWT_TTL must be positive", invalidValueError)
	}
	if c.RateLimit.Points <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("%w: rate limit must be positive", invalidValueError)
	}
	switch c.Storage.Provider {
	case StorageProviderMinio, StorageProviderAzure:
	default:
		return fmt.Errorf("%w: unsupported STORAGE_PROVIDER %q", invalidValueError, c.Storage.Provider)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func makeDbUrl(cfg *Config) error {
	if cfg.Database.URL == "" {
		if cfg.Database.User == "" {
			return dbUserEmptyError
		}
		if cfg.Database.Name == "" {
			return dbNameEmptyError
		}
		cfg.Database.URL = fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
		)
	}
	return nil
}
