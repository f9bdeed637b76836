package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pdao-records/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	args := m.Called(ctx, userID, unreadOnly, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Notification]), args.Error(1)
}

func (m *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationService) NotifyRenewalDue(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error) {
	args := m.Called(ctx, member, card, now)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationService) NotifyReadyToClaim(ctx context.Context, member *domain.Member, card *domain.Card, now time.Time) (bool, error) {
	args := m.Called(ctx, member, card, now)
	return args.Bool(0), args.Error(1)
}

func (m *NotificationService) NotifyRenewalDecision(ctx context.Context, member *domain.Member, req *domain.RenewalRequest, card *domain.Card) error {
	args := m.Called(ctx, member, req, card)
	return args.Error(0)
}

func (m *NotificationService) Wait() {
	m.Called()
}
