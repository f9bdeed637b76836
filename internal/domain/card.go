package domain

import (
	"time"

	"github.com/google/uuid"
)

type Card struct {
	MemberID       uuid.UUID  `json:"member_id" db:"member_id"`
	GeneratedID    *string    `json:"generated_id,omitempty" db:"generated_id"`
	GeneratedAt    *time.Time `json:"generated_at,omitempty" db:"generated_at"`
	Claimed        bool       `json:"claimed" db:"claimed"`
	IssueDate      *time.Time `json:"issue_date,omitempty" db:"issue_date"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty" db:"expiration_date"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	QRPayload      *string    `json:"-" db:"qr_payload"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// CardStatus is the single lifecycle enumeration shared by the API and the
// scheduled jobs.
type CardStatus string

const (
	CardNotIssued     CardStatus = "NOT_ISSUED"
	CardReadyToClaim  CardStatus = "READY_TO_CLAIM"
	CardClaimed       CardStatus = "CLAIMED"
	CardRenewalWindow CardStatus = "RENEWAL_WINDOW"
	CardExpired       CardStatus = "EXPIRED"
)

const (
	DefaultRenewalWindowDays = 30
	DefaultValidityYears     = 3
)

// ResolveCardStatus computes the lifecycle state of a card at now using the
// default renewal window.
func ResolveCardStatus(card *Card, now time.Time) CardStatus {
	return ResolveCardStatusWithin(card, now, DefaultRenewalWindowDays)
}

// ResolveCardStatusWithin is ResolveCardStatus with an explicit window.
// Both window bounds (0 and windowDays days left) are inside the window.
func ResolveCardStatusWithin(card *Card, now time.Time, windowDays int) CardStatus {
	if card == nil || card.GeneratedID == nil {
		return CardNotIssued
	}
	if !card.Claimed {
		return CardReadyToClaim
	}
	if card.ExpirationDate == nil {
		return CardClaimed
	}

	days := DaysBetween(now, *card.ExpirationDate)
	switch {
	case days >= 0 && days <= windowDays:
		return CardRenewalWindow
	case days < 0:
		return CardExpired
	default:
		return CardClaimed
	}
}

// DaysUntilExpiry returns the calendar days left before the card expires, or
// false when the card carries no expiration date.
func (c *Card) DaysUntilExpiry(now time.Time) (int, bool) {
	if c.ExpirationDate == nil {
		return 0, false
	}
	return DaysBetween(now, *c.ExpirationDate), true
}

func (c *Card) IsArchived() bool {
	return c.ArchivedAt != nil
}

// Date truncates t to midnight UTC of the calendar day t falls on in its own
// location. DATE columns come back from the driver as UTC midnight, so this
// keeps both sides of a comparison on the same footing.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from the day of from to the day of to,
// ignoring time of day.
func DaysBetween(from, to time.Time) int {
	return int(Date(to).Sub(Date(from)).Hours() / 24)
}

// ExpirationFor is the expiration date of a card issued on issueDate.
func ExpirationFor(issueDate time.Time, validityYears int) time.Time {
	return Date(issueDate).AddDate(validityYears, 0, 0)
}
