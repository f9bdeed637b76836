// Package memory holds in-process repository implementations used for local
// runs (STORE_DRIVER=memory) and tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Member:         NewMemberRepository(),
		Card:           NewCardRepository(),
		Notification:   NewNotificationRepository(),
		RenewalRequest: NewRenewalRequestRepository(),
	}
}

type MemberRepository struct {
	mu      sync.RWMutex
	members map[uuid.UUID]domain.Member
}

var _ repository.MemberRepository = (*MemberRepository)(nil)

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{members: make(map[uuid.UUID]domain.Member)}
}

func (r *MemberRepository) Put(member domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	r.members[member.ID] = member
}

func paginate[T any](items []T, params domain.PaginationParams) []T {
	params.Validate()
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func afterCursor(cards []domain.Card, after uuid.UUID, limit int) []domain.Card {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].MemberID.String() < cards[j].MemberID.String()
	})
	out := make([]domain.Card, 0, len(cards))
	for _, c := range cards {
		if after != uuid.Nil && c.MemberID.String() <= after.String() {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
