package renewal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
	"pdao-records/internal/service/card"
	"pdao-records/internal/service/document"
	"pdao-records/internal/service/notification"
)

type Service interface {
	Submit(ctx context.Context, input domain.SubmitRenewalInput) (*domain.RenewalRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error)
	List(ctx context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.RenewalRequest], error)
	Approve(ctx context.Context, id, reviewerID uuid.UUID, notes *string) (*domain.RenewalRequest, error)
	Reject(ctx context.Context, id, reviewerID uuid.UUID, notes *string) (*domain.RenewalRequest, error)
}

type service struct {
	renewalRepo repository.RenewalRequestRepository
	memberRepo  repository.MemberRepository
	cardSvc     card.Service
	notifSvc    notification.Service
	documents   document.Store
	clock       func() time.Time
}

func NewService(
	renewalRepo repository.RenewalRequestRepository,
	memberRepo repository.MemberRepository,
	cardSvc card.Service,
	notifSvc notification.Service,
	documents document.Store,
	clock func() time.Time,
) Service {
	if clock == nil {
		clock = time.Now
	}
	if documents == nil {
		documents = document.StaticStore{}
	}
	return &service{
		renewalRepo: renewalRepo,
		memberRepo:  memberRepo,
		cardSvc:     cardSvc,
		notifSvc:    notifSvc,
		documents:   documents,
		clock:       clock,
	}
}

func (s *service) Submit(ctx context.Context, input domain.SubmitRenewalInput) (*domain.RenewalRequest, error) {
	oldCardRef := strings.TrimSpace(input.OldCardRef)
	certRef := strings.TrimSpace(input.MedicalCertRef)
	if input.MemberID == uuid.Nil || oldCardRef == "" || certRef == "" {
		return nil, fmt.Errorf("%w: member_id, old_card_ref and medical_certificate_ref are required", domain.ErrInvalidInput)
	}

	if _, err := s.memberRepo.GetByID(ctx, input.MemberID); err != nil {
		return nil, err
	}

	for _, ref := range []string{oldCardRef, certRef} {
		ok, err := s.documents.Exists(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: document %q not found", domain.ErrInvalidInput, ref)
		}
	}

	pending, err := s.renewalRepo.HasPending(ctx, input.MemberID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: member already has a pending renewal request", domain.ErrInvalidState)
	}

	req := &domain.RenewalRequest{
		ID:             uuid.New(),
		MemberID:       input.MemberID,
		OldCardRef:     oldCardRef,
		MedicalCertRef: certRef,
		Status:         domain.RenewalPending,
		SubmittedAt:    s.clock(),
	}
	if input.Notes != nil && strings.TrimSpace(*input.Notes) != "" {
		notes := strings.TrimSpace(*input.Notes)
		req.Notes = &notes
	}

	if err := s.renewalRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error) {
	return s.renewalRepo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.RenewalRequest], error) {
	if status != nil && !status.IsValid() {
		return domain.PaginatedResponse[domain.RenewalRequest]{}, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *status)
	}

	requests, total, err := s.renewalRepo.List(ctx, status, params)
	if err != nil {
		return domain.PaginatedResponse[domain.RenewalRequest]{}, err
	}
	return domain.NewPaginatedResponse(requests, params, total), nil
}

// Approve records the decision and then renews the member's card. The
// guarded status update is the commit point: a request that lost the update
// to another reviewer never touches the card, and an approval whose card
// renewal fails is reverted to pending.
func (s *service) Approve(ctx context.Context, id, reviewerID uuid.UUID, notes *string) (*domain.RenewalRequest, error) {
	req, member, err := s.loadForReview(ctx, id, reviewerID)
	if err != nil {
		return nil, err
	}

	original := *req
	now := s.clock()
	if err := req.Approve(reviewerID, deref(notes), now); err != nil {
		return nil, err
	}

	if err := s.renewalRepo.UpdateReview(ctx, req); err != nil {
		return nil, err
	}

	renewed, err := s.renewCard(ctx, member.ID, now)
	if err != nil {
		if rerr := s.renewalRepo.RevertApproval(context.WithoutCancel(ctx), &original); rerr != nil {
			log.WithError(rerr).WithFields(log.Fields{
				"renewal_request_id": req.ID,
				"member_id":          member.ID,
			}).Error("failed to revert approval after card renewal failed")
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}

	s.notifyMember(ctx, member, req, renewed)
	return req, nil
}

func (s *service) renewCard(ctx context.Context, memberID uuid.UUID, now time.Time) (*domain.Card, error) {
	if _, err := s.cardSvc.Issue(ctx, memberID, now); err != nil {
		return nil, err
	}
	return s.cardSvc.Claim(ctx, memberID, now)
}

func (s *service) Reject(ctx context.Context, id, reviewerID uuid.UUID, notes *string) (*domain.RenewalRequest, error) {
	if strings.TrimSpace(deref(notes)) == "" {
		return nil, domain.ErrMissingReason
	}

	req, member, err := s.loadForReview(ctx, id, reviewerID)
	if err != nil {
		return nil, err
	}

	if err := req.Reject(reviewerID, deref(notes), s.clock()); err != nil {
		return nil, err
	}

	if err := s.renewalRepo.UpdateReview(ctx, req); err != nil {
		return nil, err
	}

	s.notifyMember(ctx, member, req, nil)
	return req, nil
}

func (s *service) loadForReview(ctx context.Context, id, reviewerID uuid.UUID) (*domain.RenewalRequest, *domain.Member, error) {
	if reviewerID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: reviewer is required", domain.ErrInvalidInput)
	}

	req, err := s.renewalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, nil, err
	}
	if member.UserID != nil && *member.UserID == reviewerID {
		return nil, nil, fmt.Errorf("%w: cannot review own renewal request", domain.ErrForbidden)
	}
	return req, member, nil
}

func (s *service) notifyMember(ctx context.Context, member *domain.Member, req *domain.RenewalRequest, renewed *domain.Card) {
	if s.notifSvc == nil {
		return
	}
	if err := s.notifSvc.NotifyRenewalDecision(ctx, member, req, renewed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"renewal_request_id": req.ID,
			"member_id":          member.ID,
		}).Warn("failed to notify member of renewal decision")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
