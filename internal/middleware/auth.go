package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pdao-records/internal/domain"
)

const ClaimsContextKey = "claims"

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are issued by the office's identity provider. MemberID is set for
// accounts that belong to a registered member.
type Claims struct {
	UserID   uuid.UUID       `json:"user_id"`
	Role     domain.UserRole `json:"role"`
	MemberID *uuid.UUID      `json:"member_id,omitempty"`
	jwt.RegisteredClaims
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil || !claims.Role.IsValid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SignToken is used by tooling and tests to mint tokens the API accepts.
func SignToken(claims Claims, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return Unauthorized("Invalid authorization header format")
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			return Unauthorized("Invalid or expired token")
		}

		c.Locals(ClaimsContextKey, claims)
		return c.Next()
	}
}

func RequireRole(required domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := GetClaims(c)
		if claims == nil {
			return Unauthorized("User not found")
		}
		if !claims.Role.Satisfies(required) {
			return Forbidden("Insufficient permissions for this operation")
		}
		return c.Next()
	}
}

func GetClaims(c *fiber.Ctx) *Claims {
	claims, ok := c.Locals(ClaimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, Unauthorized("User not found")
	}
	return claims.UserID, nil
}

// CanAccessMember reports whether the caller may act on memberID: staff and
// above for any member, a member only for their own record.
func CanAccessMember(c *fiber.Ctx, memberID uuid.UUID) bool {
	claims := GetClaims(c)
	if claims == nil {
		return false
	}
	if claims.Role.Satisfies(domain.RoleStaff) {
		return true
	}
	return claims.MemberID != nil && *claims.MemberID == memberID
}
