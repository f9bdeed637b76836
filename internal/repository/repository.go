package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pdao-records/internal/domain"
)

type Repositories struct {
	Member         MemberRepository
	Card           CardRepository
	Notification   NotificationRepository
	RenewalRequest RenewalRequestRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Member:         NewMemberRepository(db),
		Card:           NewCardRepository(db),
		Notification:   NewNotificationRepository(db),
		RenewalRequest: NewRenewalRequestRepository(db),
	}
}

const dateLayout = "2006-01-02"

func sqlDate(t time.Time) string {
	return domain.Date(t).Format(dateLayout)
}

func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return domain.StoreError(op, err)
}
