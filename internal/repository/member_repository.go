package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"pdao-records/internal/domain"
)

// MemberRepository is the read side of the member directory.
type MemberRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

type memberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var member domain.Member
	query := `SELECT id, user_id, full_name, email, created_at FROM members WHERE id = $1`
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, translate("get member", err)
	}
	return &member, nil
}
