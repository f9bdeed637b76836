// Package app wires configuration, storage and services into the runnable
// pieces shared by the API server and the jobs CLI.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/config"
	"pdao-records/internal/job"
	"pdao-records/internal/pkg/lock"
	"pdao-records/internal/pkg/i18n"
	"pdao-records/internal/repository"
	"pdao-records/internal/repository/memory"
	"pdao-records/internal/service"
)

type App struct {
	Config   *config.Config
	Repos    *repository.Repositories
	Services *service.Services

	Metrics     *job.Metrics
	Reminder    *job.Reminder
	Archival    *job.Archival
	QRMigration *job.QRMigration

	db    *sqlx.DB
	redis *redis.Client
}

// New connects to the configured stores. A store that cannot be reached is a
// fatal error; optional ones (redis, minio) are skipped when unset.
func New(cfg *config.Config) (*App, error) {
	if err := i18n.LoadTranslations(cfg.LocalesPath); err != nil {
		log.WithError(err).WithField("path", cfg.LocalesPath).Warn("failed to load translations, using built-in English")
	}

	a := &App{Config: cfg}

	switch cfg.StoreDriver {
	case "memory":
		a.Repos = memory.NewRepositories()
	case "postgres":
		db, err := config.NewPostgresDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.db = db
		a.Repos = repository.NewRepositories(db)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.redis = redisClient

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	if minioClient == nil {
		log.Warn("MINIO_ENDPOINT not set, renewal documents are not verified")
	}

	a.wire(a.locker(), minioClient, nil)

	return a, nil
}

// NewWithRepositories builds an App over the given repositories without any
// external stores. Job metrics register on reg.
func NewWithRepositories(cfg *config.Config, repos *repository.Repositories, reg prometheus.Registerer) *App {
	a := &App{Config: cfg, Repos: repos}
	a.wire(nil, nil, reg)
	return a
}

// locker picks the notification gate lock shared by every process using the
// same store: redis when configured, otherwise postgres advisory locks.
func (a *App) locker() lock.Locker {
	switch {
	case a.redis != nil:
		return lock.NewRedisLocker(a.redis, a.Config.LockTTL)
	case a.db != nil:
		log.Info("REDIS_URL not set, notification locks use postgres advisory locks")
		return lock.NewPostgresLocker(a.db, a.Config.LockTTL)
	default:
		log.Info("REDIS_URL not set, notification locks are process-local")
		return lock.NewLocalLocker()
	}
}

func (a *App) wire(locker lock.Locker, minioClient *minio.Client, reg prometheus.Registerer) {
	cfg := a.Config
	a.Services = service.NewServices(a.Repos, locker, minioClient, cfg)
	a.Metrics = job.NewMetrics(reg)

	opts := job.Options{
		Workers:           cfg.JobWorkers,
		BatchSize:         cfg.JobBatchSize,
		RenewalWindowDays: cfg.RenewalWindowDays,
	}
	a.Reminder = job.NewReminder(a.Repos.Card, a.Repos.Member, a.Services.Notification, a.Metrics, opts)
	a.Archival = job.NewArchival(a.Repos.Card, a.Metrics, opts)
	a.QRMigration = job.NewQRMigration(a.Repos.Card, a.Services.Card, a.Metrics, opts)
}

func (a *App) Scheduler() *job.Scheduler {
	return job.NewScheduler(a.Reminder, a.Archival, a.Config.SchedulerInterval, a.Config.Now)
}

// Close waits for queued notification emails and then releases the stores.
func (a *App) Close() {
	if a.Services != nil && a.Services.Notification != nil {
		a.Services.Notification.Wait()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
