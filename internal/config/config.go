package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingTokenSecret is returned by Load when TOKEN_SECRET is unset.
var ErrMissingTokenSecret = errors.New("TOKEN_SECRET must be set")

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Mail         MailConfig
	WhatsApp     WhatsAppConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitMB           int
	Timezone              string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	TokenSecret        string
	TokenTTLHours      int
	BcryptCost         int
	DevSecret          string
	LoginMaxAttempts   int
	LoginWindowMinutes int
}

// StorageConfig points at an S3 compatible bucket.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	UseSSL          bool
	KeyPrefix       string
	PublicBaseURL   string
}

// MailConfig holds SMTP settings for outgoing email.
type MailConfig struct {
	Host       string
	Port       int
	TLS        bool
	Username   string
	Password   string
	FromName   string
	FromDomain string
}

// WhatsAppConfig holds Twilio credentials for WhatsApp templates.
type WhatsAppConfig struct {
	AccountSID         string
	AuthToken          string
	From               string
	CheckInTemplateSID string
}

// NotificationConfig toggles event driven notifications.
type NotificationConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "visitor-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitMB:           getEnvAsInt("HTTP_BODY_LIMIT_MB", 25),
			Timezone:              getEnv("APP_TIMEZONE", "UTC"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			TokenSecret:        os.Getenv("TOKEN_SECRET"),
			TokenTTLHours:      getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 7*24),
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 12),
			DevSecret:          os.Getenv("DEV_SECRET"),
			LoginMaxAttempts:   getEnvAsInt("AUTH_LOGIN_MAX_ATTEMPTS", 10),
			LoginWindowMinutes: getEnvAsInt("AUTH_LOGIN_WINDOW_MINUTES", 15),
		},
		Storage: StorageConfig{
			Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
			AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			Bucket:          os.Getenv("STORAGE_BUCKET"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", true),
			KeyPrefix:       getEnv("STORAGE_KEY_PREFIX", "visitor"),
			PublicBaseURL:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		},
		Mail: MailConfig{
			Host:       os.Getenv("SMTP_HOST"),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			TLS:        getEnvAsBool("SMTP_TLS", true),
			Username:   os.Getenv("SMTP_USERNAME"),
			Password:   os.Getenv("SMTP_PASSWORD"),
			FromName:   getEnv("MAIL_FROM_NAME", "no-reply"),
			FromDomain: getEnv("MAIL_FROM_DOMAIN", "example.com"),
		},
		WhatsApp: WhatsAppConfig{
			AccountSID:         os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:          os.Getenv("TWILIO_AUTH_TOKEN"),
			From:               os.Getenv("TWILIO_WHATSAPP_FROM"),
			CheckInTemplateSID: os.Getenv("WHATSAPP_CHECKIN_TEMPLATE_SID"),
		},
		Notification: NotificationConfig{
			Enabled: getEnvAsBool("NOTIFY_ENABLED", true),
		},
	}

	if cfg.Auth.TokenSecret == "" {
		return nil, ErrMissingTokenSecret
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (a AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TokenTTL returns the lifetime of issued access tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// LoginWindow returns the window login attempts are counted over.
func (a AuthConfig) LoginWindow() time.Duration {
	if a.LoginWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.LoginWindowMinutes) * time.Minute
}

// Configured reports whether enough settings exist to reach a bucket.
func (s StorageConfig) Configured() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// Configured reports whether an SMTP relay is set.
func (m MailConfig) Configured() bool {
	return m.Host != ""
}

// From returns the sender address.
func (m MailConfig) From() string {
	return fmt.Sprintf("%s@%s", m.FromName, m.FromDomain)
}

// Configured reports whether Twilio credentials are present.
func (w WhatsAppConfig) Configured() bool {
	return w.AccountSID != "" && w.AuthToken != "" && w.From != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
