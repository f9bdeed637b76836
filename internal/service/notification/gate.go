package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/pkg/lock"
	"pdao-records/internal/repository"
)

// Gate decides whether a notification may be created for (user, type) given
// a lookback window, and serialises check-and-create per key.
type Gate struct {
	notifRepo repository.NotificationRepository
	locker    lock.Locker
}

func NewGate(notifRepo repository.NotificationRepository, locker lock.Locker) *Gate {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &Gate{notifRepo: notifRepo, locker: locker}
}

// ShouldCreate reports false when the user already has an unread
// notification of this type created on or after today minus lookbackDays.
// It has no side effects.
func (g *Gate) ShouldCreate(ctx context.Context, userID uuid.UUID, notifType domain.NotificationType, lookbackDays int, now time.Time) (bool, error) {
	exists, err := g.notifRepo.ExistsUnreadSince(ctx, userID, notifType, WindowStart(now, lookbackDays))
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// CreateIfAbsent runs ShouldCreate and the insert while holding the lock for
// (notif.UserID, notif.Type). It reports whether a row was written.
func (g *Gate) CreateIfAbsent(ctx context.Context, notif *domain.Notification, lookbackDays int, now time.Time) (bool, error) {
	release, err := g.locker.Acquire(ctx, lockKey(notif.UserID, notif.Type))
	if err != nil {
		return false, fmt.Errorf("acquire notification lock: %w", err)
	}
	defer release()

	ok, err := g.ShouldCreate(ctx, notif.UserID, notif.Type, lookbackDays, now)
	if err != nil || !ok {
		return false, err
	}

	if err := g.insert(ctx, notif, now); err != nil {
		return false, err
	}
	return true, nil
}

// Record writes notif under the (notif.UserID, notif.Type) lock without a
// window check. It is for event types that are unique by construction, such
// as the single decision on a renewal request.
func (g *Gate) Record(ctx context.Context, notif *domain.Notification, now time.Time) error {
	release, err := g.locker.Acquire(ctx, lockKey(notif.UserID, notif.Type))
	if err != nil {
		return fmt.Errorf("acquire notification lock: %w", err)
	}
	defer release()

	return g.insert(ctx, notif, now)
}

func (g *Gate) insert(ctx context.Context, notif *domain.Notification, now time.Time) error {
	if notif.ID == uuid.Nil {
		notif.ID = uuid.New()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = now
	}
	return g.notifRepo.Create(ctx, notif)
}

// WindowStart is midnight of the calendar day lookbackDays before now, in
// now's location.
func WindowStart(now time.Time, lookbackDays int) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -lookbackDays)
}

func lockKey(userID uuid.UUID, notifType domain.NotificationType) string {
	return "notification:" + userID.String() + ":" + string(notifType)
}
