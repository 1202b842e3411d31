package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"wayfarer/internal/database"
	"wayfarer/internal/messaging"
	"wayfarer/internal/notify"
	"wayfarer/internal/settings"
)

// Config holds the application configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	MetricsEnabled bool
	MetricsPath    string

	RedisAddr     string
	RedisPassword string

	Database database.Config
	NATS     messaging.Config

	// Separate transports for the two booking kinds
	TourSMTP       notify.SMTPConfig
	ExperienceSMTP notify.SMTPConfig

	Site settings.Settings
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",
		MetricsPath:    getEnv("METRICS_PATH", "/metrics"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 3306),
			User:               getEnv("DB_USER", "wayfarer"),
			Password:           getEnv("DB_PASSWORD", "wayfarer123"),
			DBName:             getEnv("DB_NAME", "wayfarer"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "wayfarer"),
			ClientID:  getEnv("NATS_CLIENT_ID", "wayfarer-api"),
		},

		TourSMTP: notify.SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			FromName: getEnv("SMTP_FROM_NAME", "Wayfarer Tours"),
		},

		ExperienceSMTP: notify.SMTPConfig{
			Host:     getEnv("EXP_SMTP_HOST", getEnv("SMTP_HOST", "")),
			Port:     getEnv("EXP_SMTP_PORT", getEnv("SMTP_PORT", "587")),
			Username: getEnv("EXP_SMTP_USERNAME", getEnv("SMTP_USERNAME", "")),
			Password: getEnv("EXP_SMTP_PASSWORD", getEnv("SMTP_PASSWORD", "")),
			FromName: getEnv("EXP_SMTP_FROM_NAME", "Wayfarer Experiences"),
		},

		Site: settings.Settings{
			SiteName:        getEnv("SITE_NAME", "Wayfarer"),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
			AdminBaseURL:    getEnv("ADMIN_BASE_URL", "http://localhost:3001"),
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
			AdminWhatsApp:   getEnv("ADMIN_WHATSAPP_NUMBER", ""),
			WhatsAppBaseURL: getEnv("WHATSAPP_API_URL", "https://wa.me"),
		},
	}
}

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable value or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
