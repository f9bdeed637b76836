package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

// Renewal-due and ready-to-claim notifications are suppressed within the
// lookback window. Decision notifications are written once per reviewed
// request and skip the window check.
const (
	NotifCardRenewalDue      NotificationType = "card_renewal_due"
	NotifCardReadyToClaim    NotificationType = "card_ready_to_claim"
	NotifCardRenewalApproved NotificationType = "card_renewal_approved"
	NotifCardRenewalRejected NotificationType = "card_renewal_rejected"
)

const DefaultNotificationLookbackDays = 7

type RenewalDueData struct {
	MemberID       uuid.UUID `json:"member_id"`
	ExpirationDate string    `json:"expiration_date"`
	DaysRemaining  int       `json:"days_remaining"`
}

type ReadyToClaimData struct {
	MemberID    uuid.UUID `json:"member_id"`
	GeneratedID string    `json:"generated_id"`
}

type RenewalDecisionData struct {
	RenewalRequestID uuid.UUID `json:"renewal_request_id"`
	MemberID         uuid.UUID `json:"member_id"`
	Status           string    `json:"status"`
}
