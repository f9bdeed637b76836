package renewal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
	"pdao-records/internal/repository/memory"
	"pdao-records/internal/service/card"
	"pdao-records/internal/service/renewal"
)

// failingReviewRepo fails every review write with a store error.
type failingReviewRepo struct {
	*memory.RenewalRequestRepository
}

func (r failingReviewRepo) UpdateReview(context.Context, *domain.RenewalRequest) error {
	return domain.StoreError("update renewal review", errors.New("connection reset"))
}

// racingReviewRepo lets another reviewer reject the request right after it
// has been loaded for approval.
type racingReviewRepo struct {
	*memory.RenewalRequestRepository
	otherReviewer uuid.UUID
	now           time.Time
}

func (r racingReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error) {
	req, err := r.RenewalRequestRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rejected := *req
	if err := rejected.Reject(r.otherReviewer, "certificate unreadable", r.now); err != nil {
		return nil, err
	}
	if err := r.RenewalRequestRepository.UpdateReview(ctx, &rejected); err != nil {
		return nil, err
	}
	return req, nil
}

// failingClaimCards fails every card claim with a store error.
type failingClaimCards struct {
	*memory.CardRepository
}

func (r failingClaimCards) Claim(context.Context, uuid.UUID, time.Time, time.Time, string) error {
	return domain.StoreError("claim card", errors.New("connection reset"))
}

type storeEnv struct {
	members    *memory.MemberRepository
	cards      *memory.CardRepository
	renewals   *memory.RenewalRequestRepository
	cardSvc    card.Service
	member     domain.Member
	expiration time.Time
	request    *domain.RenewalRequest
	now        time.Time
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	userID := uuid.New()
	e := &storeEnv{
		members:    memory.NewMemberRepository(),
		cards:      memory.NewCardRepository(),
		renewals:   memory.NewRenewalRequestRepository(),
		member:     domain.Member{ID: uuid.New(), UserID: &userID, FullName: "Ana Villanueva"},
		expiration: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		now:        time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC),
	}
	e.members.Put(e.member)
	e.cardSvc = card.NewService(e.cards, e.members, card.Options{})

	generated := "PWD-2023-1A2B3C4D"
	issue := e.expiration.AddDate(-3, 0, 0)
	e.cards.Put(domain.Card{
		MemberID:       e.member.ID,
		GeneratedID:    &generated,
		GeneratedAt:    &issue,
		Claimed:        true,
		IssueDate:      &issue,
		ExpirationDate: &e.expiration,
	})

	e.request = pendingRequest(e.member.ID)
	require.NoError(t, e.renewals.Create(context.Background(), e.request))
	return e
}

func (e *storeEnv) service(repo repository.RenewalRequestRepository) renewal.Service {
	return renewal.NewService(repo, e.members, e.cardSvc, nil, nil, func() time.Time { return e.now })
}

func (e *storeEnv) assertCardUnchanged(t *testing.T) {
	t.Helper()
	stored, err := e.cards.GetByMemberID(context.Background(), e.member.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ExpirationDate)
	assert.Equal(t, e.expiration.Format("2006-01-02"), stored.ExpirationDate.Format("2006-01-02"))
}

func TestRenewalService_ApproveAgainstStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success Renews Card", func(t *testing.T) {
		e := newStoreEnv(t)

		got, err := e.service(e.renewals).Approve(ctx, e.request.ID, uuid.New(), nil)

		require.NoError(t, err)
		assert.Equal(t, domain.RenewalApproved, got.Status)
		stored, err := e.cards.GetByMemberID(ctx, e.member.ID)
		require.NoError(t, err)
		assert.Equal(t, "2028-12-20", stored.ExpirationDate.Format("2006-01-02"))
	})

	t.Run("Status Write Failure Leaves Card Unchanged", func(t *testing.T) {
		e := newStoreEnv(t)

		_, err := e.service(failingReviewRepo{e.renewals}).Approve(ctx, e.request.ID, uuid.New(), nil)

		assert.ErrorIs(t, err, domain.ErrStoreFailure)
		stored, err := e.renewals.GetByID(ctx, e.request.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RenewalPending, stored.Status)
		e.assertCardUnchanged(t)
	})

	t.Run("Concurrent Reject Wins", func(t *testing.T) {
		e := newStoreEnv(t)
		repo := racingReviewRepo{RenewalRequestRepository: e.renewals, otherReviewer: uuid.New(), now: e.now}

		_, err := e.service(repo).Approve(ctx, e.request.ID, uuid.New(), nil)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
		stored, err := e.renewals.GetByID(ctx, e.request.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RenewalRejected, stored.Status)
		e.assertCardUnchanged(t)
	})

	t.Run("Card Renewal Failure Reverts To Pending", func(t *testing.T) {
		e := newStoreEnv(t)
		e.cardSvc = card.NewService(failingClaimCards{e.cards}, e.members, card.Options{})

		_, err := e.service(e.renewals).Approve(ctx, e.request.ID, uuid.New(), strPtr("looks fine"))

		assert.ErrorIs(t, err, domain.ErrStoreFailure)
		stored, err := e.renewals.GetByID(ctx, e.request.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RenewalPending, stored.Status)
		assert.Nil(t, stored.ReviewerID)
		assert.Nil(t, stored.ReviewedAt)
		assert.Nil(t, stored.Notes)
		e.assertCardUnchanged(t)

		pending, err := e.renewals.HasPending(ctx, e.member.ID)
		require.NoError(t, err)
		assert.True(t, pending)
	})
}
