package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RenewalRequest struct {
	ID             uuid.UUID            `json:"id" db:"id"`
	MemberID       uuid.UUID            `json:"member_id" db:"member_id"`
	OldCardRef     string               `json:"old_card_ref" db:"old_card_ref"`
	MedicalCertRef string               `json:"medical_certificate_ref" db:"medical_certificate_ref"`
	Status         RenewalRequestStatus `json:"status" db:"status"`
	Notes          *string              `json:"notes,omitempty" db:"notes"`
	ReviewerID     *uuid.UUID           `json:"reviewer_id,omitempty" db:"reviewer_id"`
	SubmittedAt    time.Time            `json:"submitted_at" db:"submitted_at"`
	ReviewedAt     *time.Time           `json:"reviewed_at,omitempty" db:"reviewed_at"`
}

type RenewalRequestStatus string

const (
	RenewalPending  RenewalRequestStatus = "pending"
	RenewalApproved RenewalRequestStatus = "approved"
	RenewalRejected RenewalRequestStatus = "rejected"
)

func (s RenewalRequestStatus) IsValid() bool {
	switch s {
	case RenewalPending, RenewalApproved, RenewalRejected:
		return true
	default:
		return false
	}
}

func (s RenewalRequestStatus) IsTerminal() bool {
	return s == RenewalApproved || s == RenewalRejected
}

type SubmitRenewalInput struct {
	MemberID       uuid.UUID `json:"member_id" validate:"required"`
	OldCardRef     string    `json:"old_card_ref" validate:"required"`
	MedicalCertRef string    `json:"medical_certificate_ref" validate:"required"`
	Notes          *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ReviewRenewalInput struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Approve moves a pending request to approved. Reviewer notes, when given,
// are appended to any notes already on the request.
func (r *RenewalRequest) Approve(reviewerID uuid.UUID, notes string, now time.Time) error {
	if r.Status != RenewalPending {
		return ErrInvalidState
	}
	r.review(RenewalApproved, reviewerID, notes, now)
	return nil
}

// Reject moves a pending request to rejected. A non-blank reason is required.
func (r *RenewalRequest) Reject(reviewerID uuid.UUID, notes string, now time.Time) error {
	if strings.TrimSpace(notes) == "" {
		return ErrMissingReason
	}
	if r.Status != RenewalPending {
		return ErrInvalidState
	}
	r.review(RenewalRejected, reviewerID, notes, now)
	return nil
}

func (r *RenewalRequest) review(status RenewalRequestStatus, reviewerID uuid.UUID, notes string, now time.Time) {
	r.Status = status
	r.ReviewerID = &reviewerID
	reviewedAt := now
	r.ReviewedAt = &reviewedAt
	r.Notes = appendNotes(r.Notes, notes)
}

func appendNotes(existing *string, notes string) *string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return existing
	}
	if existing == nil || *existing == "" {
		return &notes
	}
	joined := *existing + "\n" + notes
	return &joined
}
