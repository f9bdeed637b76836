package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	Environment string

	StoreDriver string
	DatabaseURL string

	RedisURL string
	LockTTL  time.Duration

	JWTSecret string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	CORSOrigins string

	ResendAPIKey              string
	FromEmail                 string
	Domain                    string
	EmailNotificationsEnabled bool

	Timezone                 string
	Location                 *time.Location
	SchedulerEnabled         bool
	SchedulerInterval        time.Duration
	JobWorkers               int
	JobBatchSize             int
	NotificationLookbackDays int
	RenewalWindowDays        int
	CardValidityYears        int

	Locale      string
	LocalesPath string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),
		LockTTL:  getDurationEnv("LOCK_TTL", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "pdao-documents"),
		MinIOUseSSL:    getBoolEnv("MINIO_USE_SSL", false),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		ResendAPIKey:              getEnv("RESEND_API_KEY", ""),
		FromEmail:                 getEnv("FROM_EMAIL", "noreply@example.com"),
		Domain:                    getEnv("DOMAIN", "localhost:5173"),
		EmailNotificationsEnabled: getBoolEnv("EMAIL_NOTIFICATIONS_ENABLED", false),

		Timezone:                 getEnv("TIMEZONE", "Asia/Manila"),
		SchedulerEnabled:         getBoolEnv("SCHEDULER_ENABLED", true),
		SchedulerInterval:        getDurationEnv("SCHEDULER_INTERVAL", time.Hour),
		JobWorkers:               getIntEnv("JOB_WORKERS", 4),
		JobBatchSize:             getIntEnv("JOB_BATCH_SIZE", 200),
		NotificationLookbackDays: getIntEnv("NOTIFICATION_LOOKBACK_DAYS", 7),
		RenewalWindowDays:        getIntEnv("RENEWAL_WINDOW_DAYS", 30),
		CardValidityYears:        getIntEnv("CARD_VALIDITY_YEARS", 3),

		Locale:      getEnv("LOCALE", "en"),
		LocalesPath: getEnv("LOCALES_PATH", "locales"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warnf("Unknown TIMEZONE %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}
	cfg.Location = loc

	return cfg
}

// Now is the wall clock in the office's timezone. It is only read at the
// edges (cmd, handlers); jobs and the resolver receive it as a parameter.
func (c *Config) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
