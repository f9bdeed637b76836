package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is the directory view of a registered member. UserID is nil until
// the member has a login account to receive notifications on.
type Member struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	FullName  string     `json:"full_name" db:"full_name"`
	Email     *string    `json:"email,omitempty" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type UserRole string

const (
	RoleMember   UserRole = "member"
	RoleStaff    UserRole = "staff"
	RoleReviewer UserRole = "reviewer"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleReviewer, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether r grants at least the required role.
func (r UserRole) Satisfies(required UserRole) bool {
	return r.rank() >= required.rank() && required.rank() > 0
}

func (r UserRole) rank() int {
	switch r {
	case RoleMember:
		return 1
	case RoleStaff:
		return 2
	case RoleReviewer:
		return 3
	case RoleAdmin:
		return 4
	default:
		return 0
	}
}
