package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration values.
type Config struct {
	Env      string
	LogLevel string
	HTTPPort string

	Secret   string
	TokenTTL time.Duration

	DatabaseDriver string
	DatabaseDSN    string
	SeedCSV        string

	AdminUsername  string
	AdminPassword  string
	AllowedOrigins []string

	Mail   MailConfig
	Notify NotifyConfig
}

// MailConfig describes the SMTP relay used for alert mails.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AlertTo  string
}

// NotifyConfig sizes the notification worker pool and its retry policy.
type NotifyConfig struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	RetryDelay     time.Duration
	DigestSchedule string
}

// Load reads configuration from environment variables with reasonable defaults.
// A .env file in the working directory is applied first when present.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: unable to read .env file: %v\n", err)
	}

	port := getEnv("HTTP_PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		fmt.Fprintf(os.Stderr, "invalid HTTP_PORT value %q, defaulting to 8080\n", port)
		port = "8080"
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", "sqlite"))
	dsn := getEnv("DATABASE_DSN", "")
	if dsn == "" {
		switch driver {
		case "pgx", "postgres":
			driver = "pgx"
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				getEnv("DB_USER", "postgres"),
				getEnv("DB_PASSWORD", ""),
				getEnv("DB_HOST", "localhost"),
				getEnv("DB_PORT", "5432"),
				getEnv("DB_NAME", "pharmacy"))
		default:
			dsn = "file:pharmacy.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
		}
	}

	return Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPPort:       port,
		Secret:         getEnv("SECRET", "dev_secret"),
		TokenTTL:       getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		SeedCSV:        getEnv("SEED_CSV", ""),
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin123"),
		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		Mail: MailConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "pharmacy@localhost"),
			AlertTo:  getEnv("ALERT_EMAIL", ""),
		},
		Notify: NotifyConfig{
			Workers:        getEnvAsInt("NOTIFY_WORKERS", 2),
			QueueSize:      getEnvAsInt("NOTIFY_QUEUE", 64),
			MaxAttempts:    getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
			RetryDelay:     getEnvAsDuration("NOTIFY_RETRY_DELAY", 5*time.Second),
			DigestSchedule: getEnv("DIGEST_SCHEDULE", "0 9 * * *"),
		},
	}
}

// MailEnabled reports whether enough SMTP settings are present to send mail.
func (c Config) MailEnabled() bool {
	return c.Mail.Host != "" && c.Mail.AlertTo != ""
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
