package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Mess      MessConfig
	Dashboard DashboardConfig
	SMTP      SMTPConfig
	Images    ImagesConfig
	Exports   ExportsConfig
	Mailer    MailerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MessConfig carries mess-wide behaviour shared by reporting components.
type MessConfig struct {
	// Timezone is the IANA zone used for calendar-day and calendar-month
	// bucketing of order timestamps.
	Timezone string
}

// DashboardConfig tunes dashboard exposure and cache behaviour.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// SMTPConfig configures the transactional mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// MailerConfig tunes the async email dispatch queue.
type MailerConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	TokenTTL   time.Duration
}

// ImagesConfig controls attachment storage and signed download URLs.
type ImagesConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
}

// ExportsConfig toggles admin CSV/PDF downloads.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Mess = MessConfig{
		Timezone: v.GetString("MESS_TIMEZONE"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		BaseURL:  v.GetString("APP_BASE_URL"),
	}

	cfg.Mailer = MailerConfig{
		Workers:    v.GetInt("MAILER_WORKERS"),
		MaxRetries: v.GetInt("MAILER_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("MAILER_RETRY_DELAY"), 5*time.Second),
		TokenTTL:   parseDuration(v.GetString("EMAIL_TOKEN_TTL"), time.Hour),
	}

	maxImageSize := v.GetInt64("IMAGES_MAX_FILE_SIZE")
	if maxImageSize <= 0 {
		maxImageSize = 5 * 1024 * 1024
	}
	cfg.Images = ImagesConfig{
		StorageDir:       v.GetString("IMAGES_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("IMAGES_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("IMAGES_SIGNED_URL_TTL"), 24*time.Hour),
		MaxFileSizeBytes: maxImageSize,
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hostel_mess")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("MESS_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "mess@hostelhub.local")
	v.SetDefault("APP_BASE_URL", "http://localhost:3000")

	v.SetDefault("MAILER_WORKERS", 1)
	v.SetDefault("MAILER_MAX_RETRIES", 3)
	v.SetDefault("MAILER_RETRY_DELAY", "5s")
	v.SetDefault("EMAIL_TOKEN_TTL", "1h")

	v.SetDefault("IMAGES_STORAGE_DIR", "./uploads")
	v.SetDefault("IMAGES_SIGNED_URL_SECRET", "dev_images_secret")
	v.SetDefault("IMAGES_SIGNED_URL_TTL", "24h")
	v.SetDefault("IMAGES_MAX_FILE_SIZE", 5*1024*1024)

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
