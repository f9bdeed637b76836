package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TIMEZONE", "")
	t.Setenv("NOTIFICATION_LOOKBACK_DAYS", "")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 7, cfg.NotificationLookbackDays)
	assert.Equal(t, 30, cfg.RenewalWindowDays)
	assert.Equal(t, 3, cfg.CardValidityYears)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, "Asia/Manila", cfg.Location.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JOB_WORKERS", "8")
	t.Setenv("JOB_BATCH_SIZE", "not-a-number")
	t.Setenv("SCHEDULER_INTERVAL", "15m")
	t.Setenv("TIMEZONE", "Not/AZone")
	t.Setenv("EMAIL_NOTIFICATIONS_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 8, cfg.JobWorkers)
	assert.Equal(t, 200, cfg.JobBatchSize)
	assert.Equal(t, 15*time.Minute, cfg.SchedulerInterval)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, cfg.EmailNotificationsEnabled)
}
