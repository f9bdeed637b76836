package memory

import (
	"context"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
)

func (r *MemberRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &member, nil
}
