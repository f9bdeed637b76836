package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pdao-records/internal/domain"
)

// CardRepository persists one card record per member. The List* methods page
// by member_id: pass uuid.Nil to start and the last member_id seen to continue.
type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByMemberID(ctx context.Context, memberID uuid.UUID) (*domain.Card, error)
	SetGenerated(ctx context.Context, memberID uuid.UUID, generatedID string, generatedAt time.Time) (bool, error)
	Claim(ctx context.Context, memberID uuid.UUID, issueDate, expirationDate time.Time, qrPayload string) error
	UpdateQRPayload(ctx context.Context, memberID uuid.UUID, qrPayload string) error
	Archive(ctx context.Context, memberID uuid.UUID, archivedAt time.Time) (bool, error)

	ListExpiringBetween(ctx context.Context, from, to time.Time, after uuid.UUID, limit int) ([]domain.Card, error)
	ListReadyToClaim(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error)
	ListExpiredBefore(ctx context.Context, day time.Time, after uuid.UUID, limit int) ([]domain.Card, error)
	ListAll(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error)
}

type cardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `member_id, generated_id, generated_at, claimed, issue_date, expiration_date,
	archived_at, qr_payload, created_at, updated_at`

func (r *cardRepository) Create(ctx context.Context, card *domain.Card) error {
	query := `
		INSERT INTO cards (member_id, generated_id, generated_at, claimed, issue_date, expiration_date, qr_payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (member_id) DO NOTHING
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		card.MemberID, card.GeneratedID, card.GeneratedAt, card.Claimed,
		card.IssueDate, card.ExpirationDate, card.QRPayload,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row for an existing record.
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return translate("create card", err)
	}
	return nil
}

func (r *cardRepository) GetByMemberID(ctx context.Context, memberID uuid.UUID) (*domain.Card, error) {
	var card domain.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE member_id = $1`
	if err := r.db.GetContext(ctx, &card, query, memberID); err != nil {
		return nil, translate("get card", err)
	}
	return &card, nil
}

func (r *cardRepository) SetGenerated(ctx context.Context, memberID uuid.UUID, generatedID string, generatedAt time.Time) (bool, error) {
	query := `
		UPDATE cards
		SET generated_id = $2, generated_at = $3, updated_at = NOW()
		WHERE member_id = $1 AND generated_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, memberID, generatedID, generatedAt)
	if err != nil {
		return false, translate("set generated card id", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate("set generated card id", err)
	}
	return n == 1, nil
}

func (r *cardRepository) Claim(ctx context.Context, memberID uuid.UUID, issueDate, expirationDate time.Time, qrPayload string) error {
	query := `
		UPDATE cards
		SET claimed = true, issue_date = $2::date, expiration_date = $3::date,
			archived_at = NULL, qr_payload = $4, updated_at = NOW()
		WHERE member_id = $1 AND generated_id IS NOT NULL`
	res, err := r.db.ExecContext(ctx, query, memberID, sqlDate(issueDate), sqlDate(expirationDate), qrPayload)
	if err != nil {
		return translate("claim card", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return translate("claim card", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cardRepository) UpdateQRPayload(ctx context.Context, memberID uuid.UUID, qrPayload string) error {
	query := `UPDATE cards SET qr_payload = $2, updated_at = NOW() WHERE member_id = $1`
	res, err := r.db.ExecContext(ctx, query, memberID, qrPayload)
	if err != nil {
		return translate("update qr payload", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Archive stamps archived_at once. It reports false when the record was
// already archived or no longer qualifies.
func (r *cardRepository) Archive(ctx context.Context, memberID uuid.UUID, archivedAt time.Time) (bool, error) {
	query := `
		UPDATE cards
		SET archived_at = $2, updated_at = NOW()
		WHERE member_id = $1
			AND archived_at IS NULL
			AND claimed = true
			AND expiration_date < $3::date`
	res, err := r.db.ExecContext(ctx, query, memberID, archivedAt, sqlDate(archivedAt))
	if err != nil {
		return false, translate("archive card", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, translate("archive card", err)
	}
	return n == 1, nil
}

func (r *cardRepository) ListExpiringBetween(ctx context.Context, from, to time.Time, after uuid.UUID, limit int) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE claimed = true
			AND archived_at IS NULL
			AND expiration_date IS NOT NULL
			AND expiration_date BETWEEN $1::date AND $2::date
			AND member_id > $3
		ORDER BY member_id
		LIMIT $4`
	return r.list(ctx, "list expiring cards", query, sqlDate(from), sqlDate(to), after, limit)
}

func (r *cardRepository) ListReadyToClaim(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE claimed = false
			AND archived_at IS NULL
			AND generated_id IS NOT NULL
			AND generated_at IS NOT NULL
			AND member_id > $1
		ORDER BY member_id
		LIMIT $2`
	return r.list(ctx, "list ready to claim cards", query, after, limit)
}

func (r *cardRepository) ListExpiredBefore(ctx context.Context, day time.Time, after uuid.UUID, limit int) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE claimed = true
			AND archived_at IS NULL
			AND expiration_date IS NOT NULL
			AND expiration_date < $1::date
			AND member_id > $2
		ORDER BY member_id
		LIMIT $3`
	return r.list(ctx, "list expired cards", query, sqlDate(day), after, limit)
}

func (r *cardRepository) ListAll(ctx context.Context, after uuid.UUID, limit int) ([]domain.Card, error) {
	query := `
		SELECT ` + cardColumns + ` FROM cards
		WHERE member_id > $1
		ORDER BY member_id
		LIMIT $2`
	return r.list(ctx, "list cards", query, after, limit)
}

func (r *cardRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]domain.Card, error) {
	var cards []domain.Card
	if err := r.db.SelectContext(ctx, &cards, query, args...); err != nil {
		return nil, domain.StoreError(op, err)
	}
	return cards, nil
}
