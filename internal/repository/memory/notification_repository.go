package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

type NotificationRepository struct {
	mu            sync.RWMutex
	notifications []domain.Notification
	now           func() time.Time
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{now: time.Now}
}

func (r *NotificationRepository) Create(_ context.Context, notif *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = r.now()
	}
	r.notifications = append(r.notifications, *notif)
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.notifications {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *NotificationRepository) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	r.mu.RLock()
	var matched []domain.Notification
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		matched = append(matched, n)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, params), int64(len(matched)), nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, id, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.ID == id && n.UserID == userID {
			r.markRead(n)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].UserID == userID && !r.notifications[i].IsRead {
			r.markRead(&r.notifications[i])
		}
	}
	return nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) ExistsUnreadSince(_ context.Context, userID uuid.UUID, notifType domain.NotificationType, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.notifications {
		if n.UserID == userID && n.Type == notifType && !n.IsRead && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// All returns a copy of every stored notification in insertion order.
func (r *NotificationRepository) All() []domain.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

func (r *NotificationRepository) markRead(n *domain.Notification) {
	readAt := r.now()
	n.IsRead = true
	n.ReadAt = &readAt
}
