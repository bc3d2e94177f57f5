package config

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"github.com/restoflow/websrm-adapter/internal/websrm"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	WebSRM    WebSRMConfig
	Signing   SigningConfig
	Retry     RetryConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

// WebSRMConfig identifies this point of sale to the reporting endpoint.
type WebSRMConfig struct {
	BaseURL           string
	VerifyBaseURL     string
	CertificationCode string
	DeviceID          string
	SoftwareVersion   string
	RequestTimeout    time.Duration
	ServiceDefault    string
}

type SigningConfig struct {
	Algorithm string
	Secret    string
	KeyPEM    string
}

type RetryConfig struct {
	MaxAttempts  int
	BackoffBase  time.Duration
	BackoffCap   time.Duration
	PollInterval time.Duration
	BatchSize    int
	DeviceRate   float64
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "websrm-adapter")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "websrm")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "America/Montreal")
	viper.SetDefault("WEBSRM_BASE_URL", "https://cnfr.api.rq-fo.ca")
	viper.SetDefault("WEBSRM_VERIFY_BASE_URL", "https://cnfr.tx.rq-fo.ca")
	viper.SetDefault("WEBSRM_CERTIFICATION_CODE", "")
	viper.SetDefault("WEBSRM_DEVICE_ID", "")
	viper.SetDefault("WEBSRM_SOFTWARE_VERSION", "1.0.0")
	viper.SetDefault("WEBSRM_REQUEST_TIMEOUT_SECONDS", 15)
	viper.SetDefault("WEBSRM_SERVICE_DEFAULT", "RES")
	viper.SetDefault("SIGNING_ALGORITHM", "placeholder")
	viper.SetDefault("SIGNING_SECRET", "")
	viper.SetDefault("SIGNING_KEY_PEM", "")
	viper.SetDefault("RETRY_MAX_ATTEMPTS", websrm.DefaultMaxAttempts)
	viper.SetDefault("RETRY_BACKOFF_BASE_SECONDS", 30)
	viper.SetDefault("RETRY_BACKOFF_CAP_SECONDS", 1800)
	viper.SetDefault("RETRY_POLL_INTERVAL_SECONDS", 5)
	viper.SetDefault("RETRY_BATCH_SIZE", 20)
	viper.SetDefault("RETRY_DEVICE_RATE", 2.0)
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		WebSRM: WebSRMConfig{
			BaseURL:           viper.GetString("WEBSRM_BASE_URL"),
			VerifyBaseURL:     viper.GetString("WEBSRM_VERIFY_BASE_URL"),
			CertificationCode: viper.GetString("WEBSRM_CERTIFICATION_CODE"),
			DeviceID:          viper.GetString("WEBSRM_DEVICE_ID"),
			SoftwareVersion:   viper.GetString("WEBSRM_SOFTWARE_VERSION"),
			RequestTimeout:    time.Duration(viper.GetInt("WEBSRM_REQUEST_TIMEOUT_SECONDS")) * time.Second,
			ServiceDefault:    viper.GetString("WEBSRM_SERVICE_DEFAULT"),
		},
		Signing: SigningConfig{
			Algorithm: viper.GetString("SIGNING_ALGORITHM"),
			Secret:    viper.GetString("SIGNING_SECRET"),
			KeyPEM:    viper.GetString("SIGNING_KEY_PEM"),
		},
		Retry: RetryConfig{
			MaxAttempts:  viper.GetInt("RETRY_MAX_ATTEMPTS"),
			BackoffBase:  time.Duration(viper.GetInt("RETRY_BACKOFF_BASE_SECONDS")) * time.Second,
			BackoffCap:   time.Duration(viper.GetInt("RETRY_BACKOFF_CAP_SECONDS")) * time.Second,
			PollInterval: time.Duration(viper.GetInt("RETRY_POLL_INTERVAL_SECONDS")) * time.Second,
			BatchSize:    viper.GetInt("RETRY_BATCH_SIZE"),
			DeviceRate:   viper.GetFloat64("RETRY_DEVICE_RATE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
