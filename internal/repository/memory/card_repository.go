package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

type CardRepository struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]domain.Card
}

var _ repository.CardRepository = (*CardRepository)(nil)

func NewCardRepository() *CardRepository {
	return &CardRepository{cards: make(map[uuid.UUID]domain.Card)}
}

// Put stores card as-is, replacing any existing record.
func (r *CardRepository) Put(card domain.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[card.MemberID] = card
}

func (r *CardRepository) Create(_ context.Context, card *domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[card.MemberID]; ok {
		return nil
	}
	now := time.Now()
	card.CreatedAt, card.UpdatedAt = now, now
	r.cards[card.MemberID] = *card
	return nil
}

func (r *CardRepository) GetByMemberID(_ context.Context, memberID uuid.UUID) (*domain.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.cards[memberID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &card, nil
}

func (r *CardRepository) SetGenerated(_ context.Context, memberID uuid.UUID, generatedID string, generatedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[memberID]
	if !ok || card.GeneratedID != nil {
		return false, nil
	}
	card.GeneratedID = &generatedID
	card.GeneratedAt = &generatedAt
	card.UpdatedAt = time.Now()
	r.cards[memberID] = card
	return true, nil
}

func (r *CardRepository) Claim(_ context.Context, memberID uuid.UUID, issueDate, expirationDate time.Time, qrPayload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[memberID]
	if !ok || card.GeneratedID == nil {
		return domain.ErrNotFound
	}
	issue, expiration := domain.Date(issueDate), domain.Date(expirationDate)
	card.Claimed = true
	card.IssueDate = &issue
	card.ExpirationDate = &expiration
	card.ArchivedAt = nil
	card.QRPayload = &qrPayload
	card.UpdatedAt = time.Now()
	r.cards[memberID] = card
	return nil
}

func (r *CardRepository) UpdateQRPayload(_ context.Context, memberID uuid.UUID, qrPayload string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[memberID]
	if !ok {
		return domain.ErrNotFound
	}
	card.QRPayload = &qrPayload
	card.UpdatedAt = time.Now()
	r.cards[memberID] = card
	return nil
}

func (r *CardRepository) Archive(_ context.Context, memberID uuid.UUID, archivedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	card, ok := r.cards[memberID]
	if !ok || !isExpiredBefore(card, archivedAt) {
		return false, nil
	}
	card.ArchivedAt = &archivedAt
	card.UpdatedAt = time.Now()
	r.cards[memberID] = card
	return true, nil
}

func (r *CardRepository) ListExpiringBetween(_ context.Context, from, to time.Time, after uuid.UUID, limit int) ([]domain.Card, error) {
	from, to = domain.Date(from), domain.Date(to)
	return r.filter(after, limit, func(c domain.Card) bool {
		if !c.Claimed || c.ArchivedAt != nil || c.ExpirationDate == nil {
			return false
		}
		exp := domain.Date(*c.ExpirationDate)
		return !exp.Before(from) && !exp.After(to)
	}), nil
}

func (r *CardRepository) ListReadyToClaim(_ context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
	return r.filter(after, limit, func(c domain.Card) bool {
		return !c.Claimed && c.ArchivedAt == nil && c.GeneratedID != nil && c.GeneratedAt != nil
	}), nil
}

func (r *CardRepository) ListExpiredBefore(_ context.Context, day time.Time, after uuid.UUID, limit int) ([]domain.Card, error) {
	return r.filter(after, limit, func(c domain.Card) bool {
		return isExpiredBefore(c, day)
	}), nil
}

func (r *CardRepository) ListAll(_ context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
	return r.filter(after, limit, func(domain.Card) bool { return true }), nil
}

func (r *CardRepository) filter(after uuid.UUID, limit int, keep func(domain.Card) bool) []domain.Card {
	r.mu.RLock()
	matched := make([]domain.Card, 0, len(r.cards))
	for _, c := range r.cards {
		if keep(c) {
			matched = append(matched, c)
		}
	}
	r.mu.RUnlock()
	return afterCursor(matched, after, limit)
}

func isExpiredBefore(c domain.Card, day time.Time) bool {
	return c.Claimed &&
		c.ArchivedAt == nil &&
		c.ExpirationDate != nil &&
		domain.Date(*c.ExpirationDate).Before(domain.Date(day))
}
