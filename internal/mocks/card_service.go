package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pdao-records/internal/domain"
	"pdao-records/internal/service/card"
)

type CardService struct {
	mock.Mock
}

func (m *CardService) GetStatus(ctx context.Context, memberID uuid.UUID, now time.Time) (*card.StatusView, error) {
	args := m.Called(ctx, memberID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.StatusView), args.Error(1)
}

func (m *CardService) Issue(ctx context.Context, memberID uuid.UUID, now time.Time) (*domain.Card, error) {
	args := m.Called(ctx, memberID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *CardService) Claim(ctx context.Context, memberID uuid.UUID, claimDate time.Time) (*domain.Card, error) {
	args := m.Called(ctx, memberID, claimDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Card), args.Error(1)
}

func (m *CardService) RegenerateQR(ctx context.Context, memberID uuid.UUID) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}
