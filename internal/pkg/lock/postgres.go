package lock

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// PostgresLocker holds a session-level advisory lock on a dedicated
// connection, so processes sharing one database serialise on the same key.
type PostgresLocker struct {
	db      *sqlx.DB
	retry   time.Duration
	maxWait time.Duration
}

func NewPostgresLocker(db *sqlx.DB, maxWait time.Duration) *PostgresLocker {
	if maxWait <= 0 {
		maxWait = 30 * time.Second
	}
	return &PostgresLocker{db: db, retry: 50 * time.Millisecond, maxWait: maxWait}
}

func (l *PostgresLocker) Acquire(ctx context.Context, key string) (func(), error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(l.maxWait)
	for {
		var ok bool
		if err := conn.GetContext(ctx, &ok, `SELECT pg_try_advisory_lock(hashtext($1))`, key); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			_ = conn.Close()
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			_ = conn.Close()
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(releaseCtx, `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			// Discard the session; the server drops its locks with it.
			log.WithError(err).WithField("key", key).Warn("failed to release advisory lock")
			_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
		}
		_ = conn.Close()
	}, nil
}
