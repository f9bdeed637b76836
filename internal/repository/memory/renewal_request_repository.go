package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdao-records/internal/domain"
	"pdao-records/internal/repository"
)

type RenewalRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]domain.RenewalRequest
}

var _ repository.RenewalRequestRepository = (*RenewalRequestRepository)(nil)

func NewRenewalRequestRepository() *RenewalRequestRepository {
	return &RenewalRequestRepository{requests: make(map[uuid.UUID]domain.RenewalRequest)}
}

func (r *RenewalRequestRepository) Create(_ context.Context, req *domain.RenewalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.Status == domain.RenewalPending {
		for _, existing := range r.requests {
			if existing.MemberID == req.MemberID && existing.Status == domain.RenewalPending {
				return domain.ErrInvalidState
			}
		}
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now()
	}
	r.requests[req.ID] = *req
	return nil
}

func (r *RenewalRequestRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.RenewalRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &req, nil
}

func (r *RenewalRequestRepository) List(_ context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) ([]domain.RenewalRequest, int64, error) {
	r.mu.RLock()
	var matched []domain.RenewalRequest
	for _, req := range r.requests {
		if status != nil && req.Status != *status {
			continue
		}
		matched = append(matched, req)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
	})
	return paginate(matched, params), int64(len(matched)), nil
}

func (r *RenewalRequestRepository) HasPending(_ context.Context, memberID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if req.MemberID == memberID && req.Status == domain.RenewalPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *RenewalRequestRepository) UpdateReview(_ context.Context, req *domain.RenewalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != domain.RenewalPending {
		return domain.ErrInvalidState
	}
	stored.Status = req.Status
	stored.ReviewerID = req.ReviewerID
	stored.ReviewedAt = req.ReviewedAt
	stored.Notes = req.Notes
	r.requests[req.ID] = stored
	return nil
}

func (r *RenewalRequestRepository) RevertApproval(_ context.Context, req *domain.RenewalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.requests[req.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Status != domain.RenewalApproved {
		return domain.ErrInvalidState
	}
	stored.Status = domain.RenewalPending
	stored.ReviewerID = req.ReviewerID
	stored.ReviewedAt = req.ReviewedAt
	stored.Notes = req.Notes
	r.requests[req.ID] = stored
	return nil
}
