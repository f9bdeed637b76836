package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"pdao-records/internal/domain"
)

type RenewalRequestRepository struct {
	mock.Mock
}

func (m *RenewalRequestRepository) Create(ctx context.Context, req *domain.RenewalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RenewalRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalRequest), args.Error(1)
}

func (m *RenewalRequestRepository) List(ctx context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) ([]domain.RenewalRequest, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]domain.RenewalRequest), args.Get(1).(int64), args.Error(2)
}

func (m *RenewalRequestRepository) HasPending(ctx context.Context, memberID uuid.UUID) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *RenewalRequestRepository) UpdateReview(ctx context.Context, req *domain.RenewalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RenewalRequestRepository) RevertApproval(ctx context.Context, req *domain.RenewalRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
