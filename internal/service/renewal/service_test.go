package renewal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pdao-records/internal/domain"
	"pdao-records/internal/mocks"
	"pdao-records/internal/service/renewal"
)

type fixture struct {
	renewals *mocks.RenewalRequestRepository
	members  *mocks.MemberRepository
	cards    *mocks.CardService
	notifs   *mocks.NotificationService
	docs     *mocks.DocumentStore
	svc      renewal.Service
	now      time.Time
	member   *domain.Member
}

func newFixture() *fixture {
	userID := uuid.New()
	f := &fixture{
		renewals: new(mocks.RenewalRequestRepository),
		members:  new(mocks.MemberRepository),
		cards:    new(mocks.CardService),
		notifs:   new(mocks.NotificationService),
		docs:     new(mocks.DocumentStore),
		now:      time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC),
		member:   &domain.Member{ID: uuid.New(), UserID: &userID, FullName: "Jose Reyes"},
	}
	f.svc = renewal.NewService(f.renewals, f.members, f.cards, f.notifs, f.docs, func() time.Time { return f.now })
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.renewals.AssertExpectations(t)
	f.members.AssertExpectations(t)
	f.cards.AssertExpectations(t)
	f.notifs.AssertExpectations(t)
	f.docs.AssertExpectations(t)
}

func pendingRequest(memberID uuid.UUID) *domain.RenewalRequest {
	return &domain.RenewalRequest{
		ID:             uuid.New(),
		MemberID:       memberID,
		OldCardRef:     "renewals/old.jpg",
		MedicalCertRef: "renewals/cert.pdf",
		Status:         domain.RenewalPending,
	}
}

func strPtr(s string) *string { return &s }

func TestRenewalService_Submit(t *testing.T) {
	ctx := context.Background()
	input := domain.SubmitRenewalInput{OldCardRef: "renewals/old.jpg", MedicalCertRef: "renewals/cert.pdf"}

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		input.MemberID = f.member.ID
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.docs.On("Exists", ctx, "renewals/old.jpg").Return(true, nil).Once()
		f.docs.On("Exists", ctx, "renewals/cert.pdf").Return(true, nil).Once()
		f.renewals.On("HasPending", ctx, f.member.ID).Return(false, nil).Once()
		f.renewals.On("Create", ctx, mock.MatchedBy(func(r *domain.RenewalRequest) bool {
			return r.MemberID == f.member.ID && r.Status == domain.RenewalPending
		})).Return(nil).Once()

		req, err := f.svc.Submit(ctx, input)

		require.NoError(t, err)
		assert.Equal(t, domain.RenewalPending, req.Status)
		assert.Equal(t, f.now, req.SubmittedAt)
		f.assertExpectations(t)
	})

	t.Run("Missing Document", func(t *testing.T) {
		f := newFixture()
		input.MemberID = f.member.ID
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.docs.On("Exists", ctx, "renewals/old.jpg").Return(false, nil).Once()

		_, err := f.svc.Submit(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.renewals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Already Pending", func(t *testing.T) {
		f := newFixture()
		input.MemberID = f.member.ID
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.docs.On("Exists", ctx, mock.Anything).Return(true, nil).Twice()
		f.renewals.On("HasPending", ctx, f.member.ID).Return(true, nil).Once()

		_, err := f.svc.Submit(ctx, input)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
		f.renewals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Blank References", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Submit(ctx, domain.SubmitRenewalInput{MemberID: f.member.ID, OldCardRef: " "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		f.members.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestRenewalService_Approve(t *testing.T) {
	ctx := context.Background()
	reviewerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		exp := time.Date(2028, 12, 20, 0, 0, 0, 0, time.UTC)
		renewed := &domain.Card{MemberID: f.member.ID, Claimed: true, ExpirationDate: &exp}

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.cards.On("Issue", ctx, f.member.ID, f.now).Return(renewed, nil).Once()
		f.cards.On("Claim", ctx, f.member.ID, f.now).Return(renewed, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.MatchedBy(func(r *domain.RenewalRequest) bool {
			return r.Status == domain.RenewalApproved && *r.ReviewerID == reviewerID
		})).Return(nil).Once()
		f.notifs.On("NotifyRenewalDecision", ctx, f.member, req, renewed).Return(nil).Once()

		got, err := f.svc.Approve(ctx, req.ID, reviewerID, strPtr("documents verified"))

		require.NoError(t, err)
		assert.Equal(t, domain.RenewalApproved, got.Status)
		assert.Equal(t, f.now, *got.ReviewedAt)
		assert.Equal(t, "documents verified", *got.Notes)
		f.assertExpectations(t)
	})

	t.Run("Rejected Request Is Invalid State", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		req.Status = domain.RenewalRejected

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()

		_, err := f.svc.Approve(ctx, req.ID, reviewerID, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
		f.cards.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
		f.renewals.AssertNotCalled(t, "UpdateReview", mock.Anything, mock.Anything)
	})

	t.Run("Lost Race Leaves Card Untouched", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.Anything).Return(domain.ErrInvalidState).Once()

		_, err := f.svc.Approve(ctx, req.ID, reviewerID, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
		f.cards.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything, mock.Anything)
		f.cards.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
		f.notifs.AssertNotCalled(t, "NotifyRenewalDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Claim Failure Reverts Approval", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		storeErr := domain.StoreError("claim card", errors.New("connection reset"))

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.Anything).Return(nil).Once()
		f.cards.On("Issue", ctx, f.member.ID, f.now).Return(&domain.Card{}, nil).Once()
		f.cards.On("Claim", ctx, f.member.ID, f.now).Return(nil, storeErr).Once()
		f.renewals.On("RevertApproval", mock.Anything, mock.MatchedBy(func(r *domain.RenewalRequest) bool {
			return r.ID == req.ID && r.Status == domain.RenewalPending && r.ReviewerID == nil
		})).Return(nil).Once()

		_, err := f.svc.Approve(ctx, req.ID, reviewerID, nil)

		assert.ErrorIs(t, err, domain.ErrStoreFailure)
		f.notifs.AssertNotCalled(t, "NotifyRenewalDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.assertExpectations(t)
	})

	t.Run("Failed Revert Surfaces Both Errors", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		claimErr := domain.StoreError("claim card", errors.New("connection reset"))
		revertErr := domain.StoreError("revert renewal approval", errors.New("connection reset"))

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.Anything).Return(nil).Once()
		f.cards.On("Issue", ctx, f.member.ID, f.now).Return(nil, claimErr).Once()
		f.renewals.On("RevertApproval", mock.Anything, mock.Anything).Return(revertErr).Once()

		_, err := f.svc.Approve(ctx, req.ID, reviewerID, nil)

		assert.ErrorIs(t, err, claimErr)
		assert.ErrorIs(t, err, revertErr)
		f.cards.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Notification Failure Does Not Fail Review", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		renewed := &domain.Card{MemberID: f.member.ID, Claimed: true}

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.cards.On("Issue", ctx, f.member.ID, f.now).Return(renewed, nil).Once()
		f.cards.On("Claim", ctx, f.member.ID, f.now).Return(renewed, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.Anything).Return(nil).Once()
		f.notifs.On("NotifyRenewalDecision", ctx, f.member, mock.Anything, renewed).Return(errors.New("boom")).Once()

		got, err := f.svc.Approve(ctx, req.ID, reviewerID, nil)

		require.NoError(t, err)
		assert.Equal(t, domain.RenewalApproved, got.Status)
	})

	t.Run("Own Request Is Forbidden", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()

		_, err := f.svc.Approve(ctx, req.ID, *f.member.UserID, nil)

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Not Found", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.renewals.On("GetByID", ctx, id).Return(nil, domain.ErrNotFound).Once()

		_, err := f.svc.Approve(ctx, id, reviewerID, nil)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRenewalService_Reject(t *testing.T) {
	ctx := context.Background()
	reviewerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()
		f.renewals.On("UpdateReview", ctx, mock.MatchedBy(func(r *domain.RenewalRequest) bool {
			return r.Status == domain.RenewalRejected
		})).Return(nil).Once()
		f.notifs.On("NotifyRenewalDecision", ctx, f.member, req, (*domain.Card)(nil)).Return(nil).Once()

		got, err := f.svc.Reject(ctx, req.ID, reviewerID, strPtr("certificate expired"))

		require.NoError(t, err)
		assert.Equal(t, domain.RenewalRejected, got.Status)
		assert.Equal(t, "certificate expired", *got.Notes)
		f.assertExpectations(t)
	})

	t.Run("Blank Notes Is Missing Reason", func(t *testing.T) {
		f := newFixture()

		for _, notes := range []*string{nil, strPtr(""), strPtr("   ")} {
			_, err := f.svc.Reject(ctx, uuid.New(), reviewerID, notes)
			assert.ErrorIs(t, err, domain.ErrMissingReason)
		}
		f.renewals.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Approved Request Is Invalid State", func(t *testing.T) {
		f := newFixture()
		req := pendingRequest(f.member.ID)
		req.Status = domain.RenewalApproved

		f.renewals.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		f.members.On("GetByID", ctx, f.member.ID).Return(f.member, nil).Once()

		_, err := f.svc.Reject(ctx, req.ID, reviewerID, strPtr("too late"))

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRenewalService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Filters By Status", func(t *testing.T) {
		f := newFixture()
		status := domain.RenewalPending
		params := domain.PaginationParams{Page: 1, PageSize: 10}
		rows := []domain.RenewalRequest{*pendingRequest(f.member.ID)}
		f.renewals.On("List", ctx, &status, params).Return(rows, int64(1), nil).Once()

		resp, err := f.svc.List(ctx, &status, params)

		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, int64(1), resp.TotalItems)
	})

	t.Run("Unknown Status", func(t *testing.T) {
		f := newFixture()
		status := domain.RenewalRequestStatus("archived")

		_, err := f.svc.List(ctx, &status, domain.DefaultPagination())

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
