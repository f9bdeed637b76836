package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type DocumentStore struct {
	mock.Mock
}

func (m *DocumentStore) Exists(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *DocumentStore) PresignedURL(ctx context.Context, ref string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, ref, expiry)
	return args.String(0), args.Error(1)
}
