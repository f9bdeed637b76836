package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pdao-records/internal/domain"
)

type RenewalRequestRepository interface {
	Create(ctx context.Context, req *domain.RenewalRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error)
	List(ctx context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) ([]domain.RenewalRequest, int64, error)
	HasPending(ctx context.Context, memberID uuid.UUID) (bool, error)
	// UpdateReview persists a reviewed request. It only applies to a request
	// that is still pending in storage and returns ErrInvalidState otherwise.
	UpdateReview(ctx context.Context, req *domain.RenewalRequest) error
	// RevertApproval puts an approved request back to the pending snapshot
	// req. It returns ErrInvalidState when the stored request is not approved.
	RevertApproval(ctx context.Context, req *domain.RenewalRequest) error
}

const uniqueViolation = "23505"

type renewalRequestRepository struct {
	db *sqlx.DB
}

func NewRenewalRequestRepository(db *sqlx.DB) RenewalRequestRepository {
	return &renewalRequestRepository{db: db}
}

func (r *renewalRequestRepository) Create(ctx context.Context, req *domain.RenewalRequest) error {
	query := `
		INSERT INTO renewal_requests (id, member_id, old_card_ref, medical_certificate_ref, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING submitted_at`

	err := r.db.QueryRowxContext(ctx, query,
		req.ID, req.MemberID, req.OldCardRef, req.MedicalCertRef, req.Status, req.Notes,
	).Scan(&req.SubmittedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: member already has a pending renewal request", domain.ErrInvalidState)
	}
	return translate("create renewal request", err)
}

func (r *renewalRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RenewalRequest, error) {
	var req domain.RenewalRequest
	query := `SELECT * FROM renewal_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, translate("get renewal request", err)
	}
	return &req, nil
}

func (r *renewalRequestRepository) List(ctx context.Context, status *domain.RenewalRequestStatus, params domain.PaginationParams) ([]domain.RenewalRequest, int64, error) {
	params.Validate()

	var total int64
	var requests []domain.RenewalRequest

	if status != nil {
		countQuery := `SELECT COUNT(*) FROM renewal_requests WHERE status = $1`
		if err := r.db.GetContext(ctx, &total, countQuery, *status); err != nil {
			return nil, 0, translate("count renewal requests", err)
		}

		query := `
			SELECT * FROM renewal_requests
			WHERE status = $1
			ORDER BY submitted_at DESC
			LIMIT $2 OFFSET $3`
		if err := r.db.SelectContext(ctx, &requests, query, *status, params.PageSize, params.Offset()); err != nil {
			return nil, 0, translate("list renewal requests", err)
		}
		return requests, total, nil
	}

	countQuery := `SELECT COUNT(*) FROM renewal_requests`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, translate("count renewal requests", err)
	}

	query := `
		SELECT * FROM renewal_requests
		ORDER BY submitted_at DESC
		LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &requests, query, params.PageSize, params.Offset()); err != nil {
		return nil, 0, translate("list renewal requests", err)
	}
	return requests, total, nil
}

func (r *renewalRequestRepository) HasPending(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM renewal_requests WHERE member_id = $1 AND status = 'pending')`
	err := r.db.GetContext(ctx, &exists, query, memberID)
	return exists, translate("check pending renewal", err)
}

func (r *renewalRequestRepository) UpdateReview(ctx context.Context, req *domain.RenewalRequest) error {
	query := `
		UPDATE renewal_requests
		SET status = $2, reviewer_id = $3, reviewed_at = $4, notes = $5
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, req.ID, req.Status, req.ReviewerID, req.ReviewedAt, req.Notes)
	if err != nil {
		return translate("update renewal review", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("update renewal review", err)
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

func (r *renewalRequestRepository) RevertApproval(ctx context.Context, req *domain.RenewalRequest) error {
	query := `
		UPDATE renewal_requests
		SET status = 'pending', reviewer_id = $2, reviewed_at = $3, notes = $4
		WHERE id = $1 AND status = 'approved'`
	res, err := r.db.ExecContext(ctx, query, req.ID, req.ReviewerID, req.ReviewedAt, req.Notes)
	if err != nil {
		return translate("revert renewal approval", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("revert renewal approval", err)
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}
